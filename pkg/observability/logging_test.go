package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "info", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "warning", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "DEBUG", expected: slog.LevelDebug},
		{input: "Info", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: "xyzzy", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "debug", Format: "json", Output: &buf})
	require.NotNil(t, logger)

	logger.Info("profile scored", "band", "High")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "profile scored", line["msg"])
	assert.Equal(t, "High", line["band"])
}

func TestInitLogger_TextFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "warn", Format: "", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestInitLogger_SetsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestInitLogger_StaticAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Format: "json", Output: &buf, Service: "risk-engine", Environment: "staging"})

	logger.Info("started")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "risk-engine", line["service"])
	assert.Equal(t, "staging", line["env"])
}

func TestInitLogger_TraceCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Format: "json", Output: &buf}).With("component", "scorer")

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "scored")
	logger.Info("no span")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var withSpan, withoutSpan map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &withSpan))
	require.NoError(t, json.Unmarshal(lines[1], &withoutSpan))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", withSpan["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", withSpan["span_id"])
	assert.Equal(t, "scorer", withSpan["component"])
	assert.NotContains(t, withoutSpan, "trace_id")
}
