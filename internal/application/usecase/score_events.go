package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/event"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/port"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/events"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/observability"
)

// ScoreEvents flags suspicious log records, scores them and publishes a
// CriticalEventDetected event for every Critical result.
type ScoreEvents struct {
	detector  service.EventDetector
	scorer    service.EventsScorer
	publisher port.EventPublisher
	metrics   *observability.ScoringMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewScoreEvents creates a new ScoreEvents use case. The publisher is optional.
func NewScoreEvents(
	detector service.EventDetector,
	scorer service.EventsScorer,
	publisher port.EventPublisher,
	metrics *observability.ScoringMetrics,
	logger *slog.Logger,
) *ScoreEvents {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreEvents{
		detector:  detector,
		scorer:    scorer,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs detection and scoring over req.Records.
func (uc *ScoreEvents) Execute(ctx context.Context, req dto.ScoreEventsRequest) (resp dto.ScoreEventsResponse, err error) {
	ctx, span := startSpan(ctx, "ScoreEvents.Execute")
	defer func() { endSpan(span, err) }()
	defer observe(ctx, uc.metrics, "score_events", time.Now())

	// 1. Flag suspicious records.
	flagged := uc.detector.Detect(req.Records)

	// 2. Score the flagged events.
	scored := uc.scorer.ScoreEvents(flagged)

	// 3. Collect Critical events for publication.
	detectedAt := uc.now()
	var critical []events.DomainEvent
	for _, e := range scored {
		uc.metrics.EventScored(ctx, e.RiskLevel.String())
		if !e.RiskLevel.Equal(valueobject.EventRiskCritical) {
			continue
		}
		critical = append(critical, event.NewCriticalEventDetected(
			e.Timestamp, e.User, e.EventType, e.SourceIP, e.Status, e.Reason,
			e.Score, e.RiskLevel.String(), detectedAt,
		))
	}

	span.SetAttributes(
		attribute.Int("events.examined", len(req.Records)),
		attribute.Int("events.flagged", len(scored)),
		attribute.Int("events.critical", len(critical)),
	)

	// 4. Publish.
	if uc.publisher != nil && len(critical) > 0 {
		if err := uc.publisher.Publish(ctx, critical...); err != nil {
			return dto.ScoreEventsResponse{}, fmt.Errorf("failed to publish critical events: %w", err)
		}
	}

	if len(critical) > 0 {
		uc.logger.InfoContext(ctx, "critical events detected", "count", len(critical))
	}

	return dto.ScoreEventsResponse{
		Events:        scored,
		Examined:      len(req.Records),
		CriticalCount: len(critical),
	}, nil
}
