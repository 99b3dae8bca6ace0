package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/observability"
)

// AnalyzeDataset runs the KRI pipeline over a parsed dataset.
type AnalyzeDataset struct {
	analyzer service.DatasetAnalyzer
	metrics  *observability.ScoringMetrics
	logger   *slog.Logger
}

// NewAnalyzeDataset creates a new AnalyzeDataset use case.
func NewAnalyzeDataset(analyzer service.DatasetAnalyzer, metrics *observability.ScoringMetrics, logger *slog.Logger) *AnalyzeDataset {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeDataset{analyzer: analyzer, metrics: metrics, logger: logger}
}

// Execute analyses req.Dataset. It fails only when ctx is already done.
func (uc *AnalyzeDataset) Execute(ctx context.Context, req dto.AnalyzeDatasetRequest) (analysis model.DatasetAnalysis, err error) {
	ctx, span := startSpan(ctx, "AnalyzeDataset.Execute")
	defer func() { endSpan(span, err) }()

	if err := ctx.Err(); err != nil {
		return model.DatasetAnalysis{}, err
	}

	started := time.Now()
	analysis = uc.analyzer.Analyze(req.Dataset)
	observe(ctx, uc.metrics, "analyze_dataset", started)
	uc.metrics.DatasetAnalyzed(ctx)

	span.SetAttributes(
		attribute.Int("dataset.rows", analysis.Meta.Shape[0]),
		attribute.Int("dataset.columns", analysis.Meta.Shape[1]),
		attribute.Float64("dataset.risk_score", analysis.RiskScore),
	)
	uc.logger.DebugContext(ctx, "dataset analysed",
		"rows", analysis.Meta.Shape[0],
		"risk_score", analysis.RiskScore,
		"anomaly_rate", analysis.AnomalyRate,
	)

	return analysis, nil
}
