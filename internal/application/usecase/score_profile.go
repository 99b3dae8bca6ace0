package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/port"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/observability"
)

// DefaultBatchConcurrency bounds ExecuteBatch when no limit is configured.
const DefaultBatchConcurrency = 8

// ScoreProfile is the use case for scoring a profile and recording the
// assessment. The repository and publisher are optional.
type ScoreProfile struct {
	repo        port.AssessmentRepository
	publisher   port.EventPublisher
	scorer      service.ProfileScorer
	metrics     *observability.ScoringMetrics
	logger      *slog.Logger
	concurrency int
}

// NewScoreProfile creates a new ScoreProfile use case.
func NewScoreProfile(
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	scorer service.ProfileScorer,
	metrics *observability.ScoringMetrics,
	logger *slog.Logger,
) *ScoreProfile {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreProfile{
		repo:        repo,
		publisher:   publisher,
		scorer:      scorer,
		metrics:     metrics,
		logger:      logger,
		concurrency: DefaultBatchConcurrency,
	}
}

// WithConcurrency sets the ExecuteBatch limit; n <= 0 keeps the default.
func (uc *ScoreProfile) WithConcurrency(n int) *ScoreProfile {
	if n > 0 {
		uc.concurrency = n
	}
	return uc
}

// Execute scores one profile, persists the assessment and publishes its events.
func (uc *ScoreProfile) Execute(ctx context.Context, req dto.ScoreProfileRequest) (resp dto.AssessmentResponse, err error) {
	ctx, span := startSpan(ctx, "ScoreProfile.Execute")
	defer func() { endSpan(span, err) }()
	defer observe(ctx, uc.metrics, "score_profile", time.Now())

	// 1. Run the scoring pipeline.
	result := uc.scorer.ScoreProfile(ctx, req.Profile)

	// 2. Wrap the result in an assessment aggregate.
	assessment, err := model.NewProfileAssessment(req.Profile.SubjectID, result)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to create assessment: %w", err)
	}
	span.SetAttributes(
		attribute.String("assessment.id", assessment.ID().String()),
		attribute.String("risk.band", result.RiskBand.String()),
		attribute.Float64("risk.final_score", result.FinalRiskScore),
	)

	// 3. Persist the assessment.
	if uc.repo != nil {
		if err := uc.repo.Save(ctx, assessment); err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to save assessment: %w", err)
		}
	}

	// 4. Publish domain events.
	events := assessment.DomainEvents()
	if uc.publisher != nil && len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}

	uc.metrics.ProfileScored(ctx, result.RiskBand.String())
	uc.logger.DebugContext(ctx, "profile scored",
		"assessment_id", assessment.ID(),
		"subject_id", assessment.SubjectID(),
		"final_risk_score", result.FinalRiskScore,
		"risk_band", result.RiskBand.String(),
	)

	return dto.FromModel(assessment), nil
}

// ExecuteBatch scores profiles concurrently. Responses keep the request
// order; the first failure cancels the remaining work.
func (uc *ScoreProfile) ExecuteBatch(ctx context.Context, reqs []dto.ScoreProfileRequest) ([]dto.AssessmentResponse, error) {
	out := make([]dto.AssessmentResponse, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resp, err := uc.Execute(gctx, req)
			if err != nil {
				return fmt.Errorf("profile %d: %w", i, err)
			}
			out[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
