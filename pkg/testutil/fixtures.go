package testutil

import (
	"github.com/google/uuid"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

// Fixed identifiers for deterministic testing.
var (
	TestAssessmentID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestSubjectID    = "applicant-001"
)

// LowRiskProfile returns a profile with rule-based score 91.6 and, without
// a model score, final risk 8.4 (Low band).
func LowRiskProfile() model.Profile {
	consistency := 0.9
	return model.Profile{
		SubjectID: TestSubjectID,
		Financial: model.FinancialSection{
			BankBalance:      5000,
			MinimumRequired:  1000,
			HasRegularIncome: true,
		},
		Documentation: model.DocumentationSection{
			AllRequiredDocumentsProvided: true,
			DocumentsVerified:            true,
		},
		Eligibility: model.EligibilitySection{
			MeetsMinimumCriteria: true,
			GPA:                  3.9,
			RequiredGPA:          3.0,
		},
		Behaviour: model.BehaviourSection{
			ResponseConsistencyScore: &consistency,
		},
	}
}

// HighRiskProfile returns a profile with rule-based score 8.5 and, without
// a model score, final risk 91.5 (High band).
func HighRiskProfile() model.Profile {
	return model.Profile{
		SubjectID: "applicant-002",
		Financial: model.FinancialSection{
			BankBalance:                    200,
			MinimumRequired:                1000,
			RecentLargeUnexplainedDeposits: true,
		},
		Documentation: model.DocumentationSection{
			InconsistenciesFound: 3,
		},
		Eligibility: model.EligibilitySection{
			GPA:         2.0,
			RequiredGPA: 3.0,
			GapYears:    4,
		},
		Compliance: model.ComplianceSection{
			PreviousVisaRefusals:      2,
			AdverseImmigrationHistory: true,
			SanctionsOrWatchlists:     true,
		},
		Behaviour: model.BehaviourSection{
			MissedDeadlines:         4,
			SuspiciousCommunication: true,
		},
	}
}
