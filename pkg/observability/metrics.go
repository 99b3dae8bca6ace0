package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration. A nil Registerer uses the
// Prometheus default registry.
type MetricsConfig struct {
	Registerer  prometheus.Registerer
	Gatherer    prometheus.Gatherer
	ServiceName string
}

// InitMetrics installs a global MeterProvider backed by a Prometheus
// exporter and returns it with the /metrics handler.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	var exporterOpts []promexporter.Option
	if cfg.Registerer != nil {
		exporterOpts = append(exporterOpts, promexporter.WithRegisterer(cfg.Registerer))
	}

	exporter, err := promexporter.New(exporterOpts...)
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	handler := promhttp.Handler()
	if cfg.Gatherer != nil {
		handler = promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})
	}

	return provider, handler, nil
}

// ScoringMetrics records scoring outcomes.
type ScoringMetrics struct {
	profiles metric.Int64Counter
	events   metric.Int64Counter
	datasets metric.Int64Counter
	duration metric.Float64Histogram
}

// NewScoringMetrics creates the scoring instruments on the global meter
// provider. Instruments that fail to register fall back to no-ops.
func NewScoringMetrics() *ScoringMetrics {
	meter := otel.Meter("risk-engine")

	m := &ScoringMetrics{}
	m.profiles, _ = meter.Int64Counter("risk_profiles_scored_total",
		metric.WithDescription("Profiles scored, by risk band."))
	m.events, _ = meter.Int64Counter("risk_events_scored_total",
		metric.WithDescription("Log events scored, by risk level."))
	m.datasets, _ = meter.Int64Counter("risk_datasets_analyzed_total",
		metric.WithDescription("Datasets run through the KRI pipeline."))
	m.duration, _ = meter.Float64Histogram("risk_scoring_duration_ms",
		metric.WithDescription("Scoring latency per operation."),
		metric.WithUnit("ms"))
	return m
}

// ProfileScored counts one profile in band.
func (m *ScoringMetrics) ProfileScored(ctx context.Context, band string) {
	if m == nil || m.profiles == nil {
		return
	}
	m.profiles.Add(ctx, 1, metric.WithAttributes(attribute.String("band", band)))
}

// EventScored counts one scored log event at level.
func (m *ScoringMetrics) EventScored(ctx context.Context, level string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.Add(ctx, 1, metric.WithAttributes(attribute.String("level", level)))
}

// DatasetAnalyzed counts one analysed dataset.
func (m *ScoringMetrics) DatasetAnalyzed(ctx context.Context) {
	if m == nil || m.datasets == nil {
		return
	}
	m.datasets.Add(ctx, 1)
}

// ObserveDuration records the latency of operation in milliseconds.
func (m *ScoringMetrics) ObserveDuration(ctx context.Context, operation string, ms float64) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Record(ctx, ms, metric.WithAttributes(attribute.String("operation", operation)))
}
