package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"
)

type mockProvider struct {
	err     error
	score   float64
	present bool
	calls   int
}

func (m *mockProvider) Predict(_ context.Context, _ model.Profile) (float64, bool, error) {
	m.calls++
	return m.score, m.present, m.err
}

func newAggregator(provider *mockProvider) *service.Aggregator {
	if provider == nil {
		return service.NewAggregator(newEvaluator(), nil, service.DefaultBlendWeights(), slog.Default())
	}
	return service.NewAggregator(newEvaluator(), provider, service.DefaultBlendWeights(), slog.Default())
}

func TestComputeRuleBasedScore(t *testing.T) {
	a := newAggregator(nil)

	tests := []struct {
		name     string
		scores   map[string]int
		expected float64
	}{
		{name: "empty input", scores: map[string]int{}, expected: 0.0},
		{name: "nil input", scores: nil, expected: 0.0},
		{name: "only unknown categories", scores: map[string]int{"travel": 90}, expected: 0.0},
		{name: "single category", scores: map[string]int{"financial": 80}, expected: 80},
		{name: "unknown category ignored", scores: map[string]int{"financial": 80, "travel": 0}, expected: 80},
		{name: "two categories", scores: map[string]int{"financial": 100, "behaviour": 0}, expected: 75},
		{
			name: "all categories",
			scores: map[string]int{
				"financial": 35, "documentation": 40, "eligibility": 30, "compliance": 100, "behaviour": 60,
			},
			expected: 50.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, a.ComputeRuleBasedScore(tt.scores), 1e-9)
		})
	}
}

func TestCombineScores(t *testing.T) {
	a := newAggregator(nil)
	half := 0.5

	assert.Equal(t, 0.0, a.CombineScores(100, nil))
	assert.Equal(t, 100.0, a.CombineScores(0, nil))
	assert.Equal(t, 49.5, a.CombineScores(50.5, nil))
	assert.Equal(t, 32.0, a.CombineScores(80, &half))
	assert.Equal(t, 20.0, a.CombineScores(100, &half))
	assert.Equal(t, 33.33, a.CombineScores(66.666666, nil))
}

func TestBandFromScore(t *testing.T) {
	a := newAggregator(nil)

	assert.Equal(t, valueobject.RiskBandHigh, a.BandFromScore(70))
	assert.Equal(t, valueobject.RiskBandMedium, a.BandFromScore(69.99))
	assert.Equal(t, valueobject.RiskBandMedium, a.BandFromScore(40))
	assert.Equal(t, valueobject.RiskBandLow, a.BandFromScore(39.99))
}

func TestComputeMLScore(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, newAggregator(nil).ComputeMLScore(ctx, model.Profile{}))

	absent := &mockProvider{present: false}
	assert.Nil(t, newAggregator(absent).ComputeMLScore(ctx, model.Profile{}))
	assert.Equal(t, 1, absent.calls)

	failing := &mockProvider{err: fmt.Errorf("model unavailable"), present: true, score: 0.9}
	assert.Nil(t, newAggregator(failing).ComputeMLScore(ctx, model.Profile{}))

	constant := &mockProvider{present: true, score: 0.5}
	got := newAggregator(constant).ComputeMLScore(ctx, model.Profile{})
	require.NotNil(t, got)
	assert.Equal(t, 0.5, *got)
}

func TestScoreProfile_EmptyProfileRulesOnly(t *testing.T) {
	result := newAggregator(nil).ScoreProfile(context.Background(), model.Profile{})

	assert.Equal(t, 50.5, result.RuleBasedScore)
	assert.Nil(t, result.MLScore)
	assert.Equal(t, 49.5, result.FinalRiskScore)
	assert.Equal(t, valueobject.RiskBandMedium, result.RiskBand)
	assert.Equal(t, []string{
		"[financial] Bank balance is significantly below the required minimum.",
		"[financial] No regular income detected.",
		"[documentation] Missing required documents.",
		"[documentation] Documents not fully verified.",
		"[eligibility] Does not meet minimum eligibility requirements.",
		"[compliance] No compliance issues detected.",
	}, result.Notes)
}

func TestScoreProfile_BlendsProviderScore(t *testing.T) {
	provider := &mockProvider{present: true, score: 0.5}
	result := newAggregator(provider).ScoreProfile(context.Background(), model.Profile{})

	require.NotNil(t, result.MLScore)
	assert.Equal(t, 0.5, *result.MLScore)
	// 0.6 * 0.495 + 0.4 * 0.5 = 0.497
	assert.Equal(t, 49.7, result.FinalRiskScore)
	assert.Equal(t, valueobject.RiskBandMedium, result.RiskBand)
}

func TestScoreProfile_FallbackOnProviderError(t *testing.T) {
	provider := &mockProvider{err: fmt.Errorf("boom")}
	result := newAggregator(provider).ScoreProfile(context.Background(), model.Profile{})

	assert.Nil(t, result.MLScore)
	assert.Equal(t, 49.5, result.FinalRiskScore)
}

func TestScoreProfile_LowRiskApplicant(t *testing.T) {
	p := model.Profile{
		Financial:     model.FinancialSection{BankBalance: 5000, MinimumRequired: 1000, HasRegularIncome: true},
		Documentation: model.DocumentationSection{AllRequiredDocumentsProvided: true, DocumentsVerified: true},
		Eligibility:   model.EligibilitySection{MeetsMinimumCriteria: true, GPA: 3.8, RequiredGPA: 3.0},
		Behaviour:     model.BehaviourSection{ResponseConsistencyScore: floatPtr(1.0)},
	}

	result := newAggregator(nil).ScoreProfile(context.Background(), p)

	// financial 90, documentation 95, eligibility 90, compliance 100, behaviour 80
	assert.Equal(t, map[string]int{
		"financial": 90, "documentation": 95, "eligibility": 90, "compliance": 100, "behaviour": 80,
	}, result.RuleScores)
	assert.Equal(t, 92, int(result.RuleBasedScore))
	assert.Equal(t, 8.0, result.FinalRiskScore)
	assert.Equal(t, valueobject.RiskBandLow, result.RiskBand)
}

func TestScoreProfile_HighRiskApplicant(t *testing.T) {
	p := model.Profile{
		Financial:  model.FinancialSection{BankBalance: 100, MinimumRequired: 1000, RecentLargeUnexplainedDeposits: true},
		Compliance: model.ComplianceSection{PreviousVisaRefusals: 2, SanctionsOrWatchlists: true},
		Behaviour:  model.BehaviourSection{ResponseConsistencyScore: floatPtr(0), MissedDeadlines: 4, SuspiciousCommunication: true},
	}

	result := newAggregator(nil).ScoreProfile(context.Background(), p)

	assert.Equal(t, valueobject.RiskBandHigh, result.RiskBand)
	assert.GreaterOrEqual(t, result.FinalRiskScore, 70.0)
	assert.LessOrEqual(t, result.FinalRiskScore, 100.0)
}

func TestScoreProfile_Idempotent(t *testing.T) {
	a := newAggregator(&mockProvider{present: true, score: 0.5})
	p := model.Profile{Financial: model.FinancialSection{BankBalance: 1100, MinimumRequired: 1000}}

	first := a.ScoreProfile(context.Background(), p)
	second := a.ScoreProfile(context.Background(), p)
	assert.Equal(t, first, second)
}
