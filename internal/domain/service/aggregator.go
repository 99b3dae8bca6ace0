package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/port"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"
)

// BlendWeights controls how the rule-derived risk and the model score mix
// when a model score is present.
type BlendWeights struct {
	Rule float64
	ML   float64
}

// DefaultBlendWeights returns the 0.6 rule / 0.4 model split.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{Rule: 0.6, ML: 0.4}
}

// Aggregator combines category scores into a single banded risk score,
// blending in the provider's score when one is available.
type Aggregator struct {
	evaluator *RuleEvaluator
	provider  port.ScoreProvider
	logger    *slog.Logger
	weights   map[string]float64
	order     []string
	blend     BlendWeights
}

// NewAggregator creates an Aggregator. Category weights come from the
// evaluator's rules. A nil provider means no model score is ever present.
func NewAggregator(evaluator *RuleEvaluator, provider port.ScoreProvider, blend BlendWeights, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	rules := evaluator.Rules()
	weights := make(map[string]float64, len(rules))
	order := make([]string, 0, len(rules))
	for _, r := range rules {
		weights[r.ID] = r.Weight
		order = append(order, r.ID)
	}
	return &Aggregator{
		evaluator: evaluator,
		provider:  provider,
		logger:    logger,
		weights:   weights,
		order:     order,
		blend:     blend,
	}
}

// ComputeRuleBasedScore returns the weighted mean of the category scores.
// Categories without a configured weight contribute nothing; a zero weight
// total yields 0.
func (a *Aggregator) ComputeRuleBasedScore(scores map[string]int) float64 {
	var weighted, total float64
	for _, id := range a.order {
		s, ok := scores[id]
		if !ok {
			continue
		}
		w := a.weights[id]
		weighted += w * float64(s)
		total += w
	}
	if total == 0 {
		return 0.0
	}
	return weighted / total
}

// ComputeMLScore asks the provider for a score. Provider failures are logged
// and reported as absent.
func (a *Aggregator) ComputeMLScore(ctx context.Context, profile model.Profile) *float64 {
	if a.provider == nil {
		return nil
	}
	score, present, err := a.provider.Predict(ctx, profile)
	if err != nil {
		a.logger.Warn("score provider failed, using rules-only scoring", "error", err)
		return nil
	}
	if !present {
		return nil
	}
	return &score
}

// CombineScores converts the rule score (higher is better) into risk and
// blends it with the model score. The result is on a 0-100 scale, rounded
// to two decimals.
func (a *Aggregator) CombineScores(ruleScore float64, mlScore *float64) float64 {
	ruleRisk := 1.0 - ruleScore/100.0

	combined := ruleRisk
	if mlScore != nil {
		combined = a.blend.Rule*ruleRisk + a.blend.ML*(*mlScore)
	}

	return roundHalfEven(combined*100, 2)
}

// BandFromScore maps a final risk score to its band.
func (a *Aggregator) BandFromScore(score float64) valueobject.RiskBand {
	return valueobject.RiskBandFromScore(score)
}

// ScoreProfile runs the full profile pipeline.
func (a *Aggregator) ScoreProfile(ctx context.Context, profile model.Profile) model.AggregateResult {
	scores, _, ordered := a.evaluator.Evaluate(profile)

	ruleBased := a.ComputeRuleBasedScore(scores)
	ml := a.ComputeMLScore(ctx, profile)
	final := a.CombineScores(ruleBased, ml)

	notes := make([]string, 0)
	for _, cs := range ordered {
		for _, n := range cs.Notes {
			notes = append(notes, fmt.Sprintf("[%s] %s", cs.Name, n))
		}
	}

	return model.AggregateResult{
		RuleScores:     scores,
		RuleBasedScore: roundHalfEven(ruleBased, 2),
		MLScore:        ml,
		FinalRiskScore: final,
		RiskBand:       a.BandFromScore(final),
		Notes:          notes,
	}
}
