package service

import (
	"math"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

// RuleFunc applies one category's adjustments to its baseline and returns the
// unclamped score together with the notes of every rule that fired.
type RuleFunc func(profile model.Profile, baseline float64) (float64, []string)

// CategoryRule binds a category to its baseline, aggregation weight and rules.
type CategoryRule struct {
	Evaluate RuleFunc
	ID       string
	Baseline float64
	Weight   float64
}

// DefaultCategoryRules returns the standard five-category configuration in
// evaluation order.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{ID: model.CategoryFinancial, Baseline: 60, Weight: 0.30, Evaluate: financialRules},
		{ID: model.CategoryDocumentation, Baseline: 70, Weight: 0.20, Evaluate: documentationRules},
		{ID: model.CategoryEligibility, Baseline: 60, Weight: 0.20, Evaluate: eligibilityRules},
		{ID: model.CategoryCompliance, Baseline: 100, Weight: 0.20, Evaluate: complianceRules},
		{ID: model.CategoryBehaviour, Baseline: 60, Weight: 0.10, Evaluate: behaviourRules},
	}
}

// RuleFuncFor returns the built-in rule function for a category ID.
func RuleFuncFor(id string) (RuleFunc, bool) {
	switch id {
	case model.CategoryFinancial:
		return financialRules, true
	case model.CategoryDocumentation:
		return documentationRules, true
	case model.CategoryEligibility:
		return eligibilityRules, true
	case model.CategoryCompliance:
		return complianceRules, true
	case model.CategoryBehaviour:
		return behaviourRules, true
	default:
		return nil, false
	}
}

// RuleEvaluator scores a profile category by category.
type RuleEvaluator struct {
	byID  map[string]CategoryRule
	rules []CategoryRule
}

// NewRuleEvaluator creates a RuleEvaluator over the given ordered rules.
func NewRuleEvaluator(rules []CategoryRule) *RuleEvaluator {
	byID := make(map[string]CategoryRule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}
	return &RuleEvaluator{rules: rules, byID: byID}
}

// Rules returns the evaluator's rule configuration in order.
func (e *RuleEvaluator) Rules() []CategoryRule {
	return e.rules
}

// Evaluate runs every configured category against the profile. ordered holds
// the category scores in configuration order.
func (e *RuleEvaluator) Evaluate(profile model.Profile) (scores map[string]int, notes map[string][]string, ordered []model.CategoryScore) {
	scores = make(map[string]int, len(e.rules))
	notes = make(map[string][]string, len(e.rules))
	ordered = make([]model.CategoryScore, 0, len(e.rules))

	for _, r := range e.rules {
		cs := scoreCategory(r, profile)
		scores[cs.Name] = cs.Score
		notes[cs.Name] = cs.Notes
		ordered = append(ordered, cs)
	}
	return scores, notes, ordered
}

// ScoreFinancial scores the financial section alone, using the configured
// financial rule.
func (e *RuleEvaluator) ScoreFinancial(s model.FinancialSection) model.CategoryScore {
	return e.scoreOne(model.CategoryFinancial, model.Profile{Financial: s})
}

// ScoreDocumentation scores the documentation section alone.
func (e *RuleEvaluator) ScoreDocumentation(s model.DocumentationSection) model.CategoryScore {
	return e.scoreOne(model.CategoryDocumentation, model.Profile{Documentation: s})
}

// ScoreEligibility scores the eligibility section alone.
func (e *RuleEvaluator) ScoreEligibility(s model.EligibilitySection) model.CategoryScore {
	return e.scoreOne(model.CategoryEligibility, model.Profile{Eligibility: s})
}

// ScoreCompliance scores the compliance section alone.
func (e *RuleEvaluator) ScoreCompliance(s model.ComplianceSection) model.CategoryScore {
	return e.scoreOne(model.CategoryCompliance, model.Profile{Compliance: s})
}

// ScoreBehaviour scores the behaviour section alone.
func (e *RuleEvaluator) ScoreBehaviour(s model.BehaviourSection) model.CategoryScore {
	return e.scoreOne(model.CategoryBehaviour, model.Profile{Behaviour: s})
}

// scoreOne falls back to the default rule when the category is not configured.
func (e *RuleEvaluator) scoreOne(id string, p model.Profile) model.CategoryScore {
	r, ok := e.byID[id]
	if !ok {
		for _, d := range DefaultCategoryRules() {
			if d.ID == id {
				r = d
				break
			}
		}
	}
	return scoreCategory(r, p)
}

func scoreCategory(r CategoryRule, p model.Profile) model.CategoryScore {
	raw, notes := r.Evaluate(p, r.Baseline)
	if notes == nil {
		notes = []string{}
	}
	return model.CategoryScore{Name: r.ID, Score: Clamp(raw), Notes: notes}
}

// Clamp rounds half to even and bounds the result to [0,100].
func Clamp(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.RoundToEven(v)
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return int(r)
}

func financialRules(p model.Profile, score float64) (float64, []string) {
	s := p.Financial
	var notes []string

	ratio := 0.0
	if s.MinimumRequired > 0 {
		ratio = s.BankBalance / s.MinimumRequired
	}

	switch {
	case ratio >= 1.2:
		score += 20
		notes = append(notes, "Bank balance is comfortably above the required minimum.")
	case ratio >= 1.0:
		score += 10
		notes = append(notes, "Bank balance meets the required minimum.")
	case ratio >= 0.8:
		score -= 10
		notes = append(notes, "Bank balance is slightly below the required minimum.")
	default:
		score -= 25
		notes = append(notes, "Bank balance is significantly below the required minimum.")
	}

	if s.HasRegularIncome {
		score += 10
		notes = append(notes, "Applicant has regular income.")
	} else {
		notes = append(notes, "No regular income detected.")
	}

	if s.RecentLargeUnexplainedDeposits {
		score -= 25
		notes = append(notes, "Large unexplained deposits detected.")
	}

	return score, notes
}

func documentationRules(p model.Profile, score float64) (float64, []string) {
	s := p.Documentation
	var notes []string

	if s.AllRequiredDocumentsProvided {
		score += 15
		notes = append(notes, "All required documents are provided.")
	} else {
		score -= 30
		notes = append(notes, "Missing required documents.")
	}

	if s.DocumentsVerified {
		score += 10
		notes = append(notes, "Documents successfully verified.")
	} else {
		notes = append(notes, "Documents not fully verified.")
	}

	switch {
	case s.InconsistenciesFound > 2:
		score -= 20
		notes = append(notes, "Multiple inconsistencies found.")
	case s.InconsistenciesFound > 0:
		score -= 10
		notes = append(notes, "Some inconsistencies detected.")
	}

	return score, notes
}

func eligibilityRules(p model.Profile, score float64) (float64, []string) {
	s := p.Eligibility
	var notes []string

	if s.MeetsMinimumCriteria {
		score += 10
		notes = append(notes, "Meets minimum eligibility requirements.")
	} else {
		score -= 30
		notes = append(notes, "Does not meet minimum eligibility requirements.")
	}

	if s.RequiredGPA > 0 {
		ratio := s.GPA / s.RequiredGPA
		switch {
		case ratio >= 1.2:
			score += 20
			notes = append(notes, "Academic performance significantly above requirement.")
		case ratio >= 1.0:
			score += 10
			notes = append(notes, "Academic performance meets requirement.")
		default:
			score -= 10
			notes = append(notes, "Academic performance below requirement.")
		}
	}

	switch {
	case s.GapYears > 3:
		score -= 20
		notes = append(notes, "Large gap in study/work history.")
	case s.GapYears > 1:
		score -= 10
		notes = append(notes, "Moderate gap in study/work history.")
	}

	return score, notes
}

func complianceRules(p model.Profile, baseline float64) (float64, []string) {
	s := p.Compliance
	var notes []string
	score := baseline

	switch {
	case s.PreviousVisaRefusals > 1:
		score -= 40
		notes = append(notes, "Multiple previous refusals recorded.")
	case s.PreviousVisaRefusals == 1:
		score -= 20
		notes = append(notes, "Single previous refusal recorded.")
	}

	if s.AdverseImmigrationHistory {
		score -= 40
		notes = append(notes, "Adverse immigration history detected.")
	}

	if s.SanctionsOrWatchlists {
		score -= 50
		notes = append(notes, "Applicant appears on sanctions or watchlists.")
	}

	if score == baseline {
		notes = append(notes, "No compliance issues detected.")
	}

	return score, notes
}

func behaviourRules(p model.Profile, score float64) (float64, []string) {
	s := p.Behaviour
	var notes []string

	score += (s.Consistency() - 0.5) * 40

	switch {
	case s.MissedDeadlines > 3:
		score -= 20
		notes = append(notes, "Multiple missed deadlines.")
	case s.MissedDeadlines > 0:
		score -= 10
		notes = append(notes, "Some deadlines missed.")
	}

	if s.SuspiciousCommunication {
		score -= 25
		notes = append(notes, "Suspicious communication patterns detected.")
	}

	return score, notes
}
