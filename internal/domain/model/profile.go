package model

// DefaultResponseConsistency is used when a profile omits the behaviour
// response consistency score.
const DefaultResponseConsistency = 0.5

// Profile describes one applicant or entity under evaluation. Sections and
// fields that are absent from the input keep their zero values.
type Profile struct {
	SubjectID     string               `json:"subject_id,omitempty"`
	Financial     FinancialSection     `json:"financial"`
	Documentation DocumentationSection `json:"documentation"`
	Eligibility   EligibilitySection   `json:"eligibility"`
	Compliance    ComplianceSection    `json:"compliance"`
	Behaviour     BehaviourSection     `json:"behaviour"`
}

// FinancialSection describes funds against the required minimum.
type FinancialSection struct {
	BankBalance                    float64 `json:"bank_balance"`
	MinimumRequired                float64 `json:"minimum_required"`
	HasRegularIncome               bool    `json:"has_regular_income"`
	RecentLargeUnexplainedDeposits bool    `json:"recent_large_unexplained_deposits"`
}

// DocumentationSection describes submitted documents.
type DocumentationSection struct {
	AllRequiredDocumentsProvided bool `json:"all_required_documents_provided"`
	DocumentsVerified            bool `json:"documents_verified"`
	InconsistenciesFound         int  `json:"inconsistencies_found"`
}

// EligibilitySection describes academic eligibility.
type EligibilitySection struct {
	MeetsMinimumCriteria bool    `json:"meets_minimum_criteria"`
	GPA                  float64 `json:"gpa"`
	RequiredGPA          float64 `json:"required_gpa"`
	GapYears             float64 `json:"gap_years"`
}

// ComplianceSection describes immigration and sanctions history.
type ComplianceSection struct {
	PreviousVisaRefusals      int  `json:"previous_visa_refusals"`
	AdverseImmigrationHistory bool `json:"adverse_immigration_history"`
	SanctionsOrWatchlists     bool `json:"sanctions_or_watchlists"`
}

// BehaviourSection describes how the applicant has engaged with the process.
type BehaviourSection struct {
	// ResponseConsistencyScore is nil when the input omits it.
	ResponseConsistencyScore *float64 `json:"response_consistency_score,omitempty"`
	MissedDeadlines          int      `json:"missed_deadlines"`
	SuspiciousCommunication  bool     `json:"suspicious_communication"`
}

// Consistency returns the response consistency score, defaulting to 0.5.
func (b BehaviourSection) Consistency() float64 {
	if b.ResponseConsistencyScore == nil {
		return DefaultResponseConsistency
	}
	return *b.ResponseConsistencyScore
}

// FeatureNames lists the columns of Profile.Features in order.
var FeatureNames = []string{
	"bank_balance",
	"minimum_required",
	"has_regular_income",
	"recent_large_unexplained_deposits",
	"all_required_documents_provided",
	"documents_verified",
	"inconsistencies_found",
	"meets_minimum_criteria",
	"gpa",
	"required_gpa",
	"gap_years",
	"previous_visa_refusals",
	"adverse_immigration_history",
	"sanctions_or_watchlists",
	"response_consistency_score",
	"missed_deadlines",
	"suspicious_communication",
}

// Features flattens the profile into a numeric vector aligned with FeatureNames.
func (p Profile) Features() []float32 {
	return []float32{
		float32(p.Financial.BankBalance),
		float32(p.Financial.MinimumRequired),
		boolFeature(p.Financial.HasRegularIncome),
		boolFeature(p.Financial.RecentLargeUnexplainedDeposits),
		boolFeature(p.Documentation.AllRequiredDocumentsProvided),
		boolFeature(p.Documentation.DocumentsVerified),
		float32(p.Documentation.InconsistenciesFound),
		boolFeature(p.Eligibility.MeetsMinimumCriteria),
		float32(p.Eligibility.GPA),
		float32(p.Eligibility.RequiredGPA),
		float32(p.Eligibility.GapYears),
		float32(p.Compliance.PreviousVisaRefusals),
		boolFeature(p.Compliance.AdverseImmigrationHistory),
		boolFeature(p.Compliance.SanctionsOrWatchlists),
		float32(p.Behaviour.Consistency()),
		float32(p.Behaviour.MissedDeadlines),
		boolFeature(p.Behaviour.SuspiciousCommunication),
	}
}

func boolFeature(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
