package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	// Output defaults to os.Stdout.
	Output io.Writer
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "text"

	// Service and Environment, when set, are attached to every record.
	Service     string
	Environment string
}

// InitLogger builds a slog.Logger from cfg and installs it as the default.
// Records logged with a context that carries a sampled span get trace_id and
// span_id attributes.
func InitLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	var static []slog.Attr
	if cfg.Service != "" {
		static = append(static, slog.String("service", cfg.Service))
	}
	if cfg.Environment != "" {
		static = append(static, slog.String("env", cfg.Environment))
	}
	if len(static) > 0 {
		handler = handler.WithAttrs(static)
	}

	logger := slog.New(traceHandler{Handler: handler})
	slog.SetDefault(logger)
	return logger
}

// traceHandler decorates records with the active span's identifiers.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err == nil {
		return l
	}
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
