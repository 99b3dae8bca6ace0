package ml

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/port"
)

// DefaultConstantScore is the placeholder score reported by ConstantProvider.
const DefaultConstantScore = 0.5

// NullProvider never reports a score.
type NullProvider struct{}

func (NullProvider) Predict(context.Context, model.Profile) (float64, bool, error) {
	return 0, false, nil
}

// ConstantProvider reports the same score for every profile. It stands in for
// a trained model during development.
type ConstantProvider struct {
	logger *slog.Logger
	score  float64
}

// NewConstantProvider creates a ConstantProvider returning DefaultConstantScore.
func NewConstantProvider(logger *slog.Logger) *ConstantProvider {
	return &ConstantProvider{logger: logger, score: DefaultConstantScore}
}

// Predict returns the configured constant.
func (p *ConstantProvider) Predict(_ context.Context, profile model.Profile) (float64, bool, error) {
	p.logger.Debug("constant score provider prediction requested",
		slog.String("subject_id", profile.SubjectID),
		slog.Int("feature_count", len(model.FeatureNames)),
	)
	return p.score, true, nil
}

// Kinds accepted by NewProvider.
const (
	KindNone     = "none"
	KindConstant = "constant"
	KindONNX     = "onnx"
)

// NewProvider builds the provider named by kind. The returned close function
// releases any runtime resources and is never nil.
func NewProvider(kind, modelPath string, logger *slog.Logger) (port.ScoreProvider, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case KindNone, "":
		return NullProvider{}, noop, nil
	case KindConstant:
		return NewConstantProvider(logger), noop, nil
	case KindONNX:
		p, err := LoadONNXProvider(modelPath, ONNXOptions{}, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to load onnx provider: %w", err)
		}
		return p, p.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown score provider %q", kind)
	}
}
