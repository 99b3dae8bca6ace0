package grpc

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/auth"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/tlsutil"
)

// HealthServiceName is the name reported by the gRPC health service.
const HealthServiceName = "risk-engine"

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Address  string
	CertFile string
	KeyFile  string
	// ClientCAFile turns on mutual TLS.
	ClientCAFile string
}

// Server wraps the gRPC server with risk service handlers.
type Server struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// scoringMethods mutate state or burn compute and need a scoring role.
var scoringMethods = []string{
	MethodScoreProfile,
	MethodScoreProfiles,
	MethodScoreEvents,
	MethodAnalyzeDataset,
}

// readMethods only read stored assessments.
var readMethods = []string{
	MethodGetAssessment,
	MethodListAssessments,
}

// NewServer creates a new gRPC server for the risk engine. A nil jwtService
// disables authentication.
func NewServer(handler *RiskServiceHandler, cfg ServerConfig, logger *slog.Logger, jwtService *auth.JWTService) (*Server, error) {
	var interceptors []grpc.UnaryServerInterceptor
	if jwtService != nil {
		policy := auth.Policy{Public: []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		}}.
			Grant(scoringMethods, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleService).
			Grant(readMethods, auth.RoleAdmin, auth.RoleAnalyst)
		interceptors = append(interceptors, auth.UnaryServerInterceptor(jwtService, policy))
	} else {
		logger.Warn("gRPC authentication disabled")
	}

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		creds, err := tlsutil.ServerCredentials(cfg.CertFile, cfg.KeyFile, cfg.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.CertFile, "mutual", cfg.ClientCAFile != "")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	// Register health check service.
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterRiskServiceServer(grpcServer, handler)

	// Only enable reflection when GRPC_REFLECTION=true.
	if os.Getenv("GRPC_REFLECTION") == "true" {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    cfg.Address,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server starting",
		slog.String("address", lis.Addr().String()),
	)
	return s.grpcServer.Serve(lis)
}

// Stop marks the service as not serving and gracefully stops the server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
