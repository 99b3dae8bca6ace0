package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/observability"
)

const tracerName = "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/usecase"

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func observe(ctx context.Context, m *observability.ScoringMetrics, operation string, started time.Time) {
	m.ObserveDuration(ctx, operation, float64(time.Since(started).Microseconds())/1000)
}
