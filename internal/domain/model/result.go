package model

import "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"

// Category identifiers, in evaluation order.
const (
	CategoryFinancial     = "financial"
	CategoryDocumentation = "documentation"
	CategoryEligibility   = "eligibility"
	CategoryCompliance    = "compliance"
	CategoryBehaviour     = "behaviour"
)

// CategoryScore is the outcome of one category's rules.
type CategoryScore struct {
	Name  string   `json:"name"`
	Notes []string `json:"notes"`
	Score int      `json:"score"`
}

// AggregateResult is the full scoring outcome for a profile.
type AggregateResult struct {
	RuleScores     map[string]int       `json:"rule_scores"`
	MLScore        *float64             `json:"ml_score"`
	RiskBand       valueobject.RiskBand `json:"risk_band"`
	Notes          []string             `json:"notes"`
	RuleBasedScore float64              `json:"rule_based_score"`
	FinalRiskScore float64              `json:"final_risk_score"`
}
