package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/usecase"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/config"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/ml"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/observability"
)

type rootOptions struct {
	scoringPath string
	mlProvider  string
	modelPath   string
	logLevel    string
}

// engine holds the use cases a riskctl run needs. Nothing is persisted or
// published.
type engine struct {
	scoreProfile   *usecase.ScoreProfile
	scoreEvents    *usecase.ScoreEvents
	analyzeDataset *usecase.AnalyzeDataset
	close          func() error
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "riskctl",
		Short: "Enterprise Risk Intelligence Engine command-line runner",
		Long: `riskctl scores applicant profiles, flags and scores suspicious log
events, and derives key risk indicators from tabular datasets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.scoringPath, "config", envOr("SCORING_CONFIG", "configs/scoring.yaml"), "scoring configuration file")
	flags.StringVar(&opts.mlProvider, "ml-provider", envOr("ML_PROVIDER", ml.KindNone), "ML score provider: none, constant or onnx")
	flags.StringVar(&opts.modelPath, "model", os.Getenv("ONNX_MODEL_PATH"), "ONNX model path for --ml-provider=onnx")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	cmd.AddCommand(
		newProfileCmd(opts),
		newEventsCmd(opts),
		newDatasetCmd(opts),
		newTokenCmd(),
		newCertsCmd(),
	)
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return observability.InitLogger(observability.LogConfig{
		Output: cmd.ErrOrStderr(),
		Level:  o.logLevel,
		Format: "text",
	})
}

func (o *rootOptions) buildEngine(logger *slog.Logger) (*engine, error) {
	scoring, err := config.LoadScoring(o.scoringPath)
	if err != nil {
		return nil, err
	}
	services, err := scoring.BuildServices()
	if err != nil {
		return nil, fmt.Errorf("build scoring services: %w", err)
	}

	provider, closeProvider, err := ml.NewProvider(o.mlProvider, o.modelPath, logger)
	if err != nil {
		return nil, err
	}
	aggregator := service.NewAggregator(services.Evaluator, provider, scoring.BlendWeights(), logger)

	return &engine{
		scoreProfile:   usecase.NewScoreProfile(nil, nil, aggregator, nil, logger),
		scoreEvents:    usecase.NewScoreEvents(services.Detector, services.EventScorer, nil, nil, logger),
		analyzeDataset: usecase.NewAnalyzeDataset(services.KRI, nil, logger),
		close:          closeProvider,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func writeIndentedJSON(w io.Writer, v any, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	return enc.Encode(v)
}

// writeOutput writes body to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, body func(io.Writer) error) error {
	if path == "" {
		return body(w)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := body(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
