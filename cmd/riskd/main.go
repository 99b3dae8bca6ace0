package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/usecase"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/port"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/config"
	infrakafka "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/kafka"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/ml"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/postgres"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/report"
	grpcpresentation "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/presentation/grpc"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/presentation/rest"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/auth"
	pkgkafka "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/kafka"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/observability"
	pgutil "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/postgres"
)

const serviceName = "risk-engine"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     serviceName,
		Environment: cfg.Environment,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("risk-engine exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("risk-engine stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting risk-engine",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
	)

	// Tracing is optional.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Environment: cfg.Environment,
			Insecure:    !cfg.IsProduction(),
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(shutdownCtx)
			}()
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()
	metrics := observability.NewScoringMetrics()

	// Scoring configuration and domain services.
	scoring, err := config.LoadScoring(cfg.ScoringConfigPath)
	if err != nil {
		return err
	}
	services, err := scoring.BuildServices()
	if err != nil {
		return fmt.Errorf("build scoring services: %w", err)
	}

	provider, closeProvider, err := ml.NewProvider(cfg.MLProvider, cfg.ONNXModelPath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()
	aggregator := service.NewAggregator(services.Evaluator, provider, scoring.BlendWeights(), logger)

	// Database connection and schema.
	dbCtx, dbCancel := context.WithTimeout(ctx, time.Minute)
	defer dbCancel()

	pool, err := pgutil.NewPool(dbCtx, pgutil.Config{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		ConnectAttempts: cfg.DBConnectAttempts,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pgutil.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if version, dirty, err := pgutil.SchemaVersion(cfg.DatabaseURL, cfg.MigrationsDir); err == nil {
		logger.Info("database schema ready", "version", version, "dirty", dirty)
	}
	assessmentRepo := postgres.NewAssessmentRepository(pool)

	// Kafka is optional: without brokers nothing is published or consumed.
	var publisher port.EventPublisher
	var producer *pkgkafka.Producer
	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.KafkaBrokers,
		ClientID:      serviceName,
		ConsumerGroup: cfg.KafkaConsumerGroup,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer func() { _ = producer.Close() }()
		publisher = infrakafka.NewPublisher(producer, cfg.KafkaEventsTopic, logger)
	} else {
		logger.Warn("no kafka brokers configured, domain events will not be published")
	}

	// Use cases.
	scoreProfileUC := usecase.NewScoreProfile(assessmentRepo, publisher, aggregator, metrics, logger)
	scoreEventsUC := usecase.NewScoreEvents(services.Detector, services.EventScorer, publisher, metrics, logger)
	analyzeDatasetUC := usecase.NewAnalyzeDataset(services.KRI, metrics, logger)
	getAssessmentUC := usecase.NewGetAssessment(assessmentRepo)
	listAssessmentsUC := usecase.NewListAssessments(assessmentRepo)

	// Authentication.
	var jwtService *auth.JWTService
	if cfg.JWTSecret != "" {
		jwtService, err = auth.NewJWTService(auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: serviceName})
		if err != nil {
			return fmt.Errorf("create jwt service: %w", err)
		}
	} else if cfg.IsProduction() {
		return errors.New("JWT_SECRET is required in production")
	}

	renderer := report.NewRenderer()

	// gRPC server.
	grpcHandler := grpcpresentation.NewRiskServiceHandler(
		scoreProfileUC, scoreEventsUC, analyzeDatasetUC, getAssessmentUC, listAssessmentsUC,
		renderer, logger,
	)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:      cfg.GRPCAddress(),
		CertFile:     cfg.TLSCertFile,
		KeyFile:      cfg.TLSKeyFile,
		ClientCAFile: cfg.TLSClientCAFile,
	}, logger, jwtService)
	if err != nil {
		return err
	}

	// HTTP server.
	httpServer := &http.Server{
		Addr: cfg.HTTPAddress(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Health:  rest.NewHealthHandler(pool, logger),
			Dataset: rest.NewDatasetHandler(analyzeDatasetUC, renderer, logger),
			Metrics: metricsHandler,
			JWT:     jwtService,
			Limiter: rest.NewRateLimiter(cfg.RateLimitRPS),
			Logger:  logger,
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Start(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		consumerOpts := []pkgkafka.ConsumerOption{pkgkafka.WithRetry(3, 500*time.Millisecond)}
		if cfg.KafkaDLQTopic != "" {
			consumerOpts = append(consumerOpts, pkgkafka.WithDeadLetter(pkgkafka.DeadLetterTo(producer, cfg.KafkaDLQTopic)))
		}
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.KafkaLogsTopic,
			infrakafka.NewLogHandler(scoreEventsUC, logger), logger, consumerOpts...)
		if err != nil {
			return fmt.Errorf("create kafka consumer: %w", err)
		}
		defer func() { _ = consumer.Close() }()

		g.Go(func() error {
			if err := consumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("log consumer error: %w", err)
			}
			return nil
		})
	}

	logger.Info("risk-engine started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
	)

	// Graceful shutdown once the signal arrives or any component fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down risk-engine")

		grpcServer.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}
