package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/event"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/events"
)

// ProfileAssessment is the aggregate root for a persisted profile score.
type ProfileAssessment struct {
	events.Recorder
	assessedAt time.Time
	createdAt  time.Time
	subjectID  string
	result     AggregateResult
	version    int
	id         uuid.UUID
}

// NewProfileAssessment records a freshly computed result for a subject and
// emits AssessmentCompleted, plus HighRiskDetected for the High band.
func NewProfileAssessment(subjectID string, result AggregateResult) (*ProfileAssessment, error) {
	if result.FinalRiskScore < 0 || result.FinalRiskScore > 100 {
		return nil, fmt.Errorf("final risk score must be between 0 and 100, got %v", result.FinalRiskScore)
	}
	if result.RiskBand.IsZero() {
		return nil, fmt.Errorf("risk band is required")
	}

	now := time.Now().UTC()
	a := &ProfileAssessment{
		id:         uuid.New(),
		subjectID:  subjectID,
		result:     result,
		assessedAt: now,
		createdAt:  now,
		version:    1,
	}

	a.Record(event.NewAssessmentCompleted(
		a.id, a.subjectID,
		result.RuleBasedScore, result.MLScore, result.FinalRiskScore,
		result.RiskBand.String(), a.assessedAt,
	))

	if result.RiskBand.Equal(valueobject.RiskBandHigh) {
		a.Record(event.NewHighRiskDetected(
			a.id, a.subjectID, result.FinalRiskScore, result.Notes, a.assessedAt,
		))
	}

	return a, nil
}

// ReconstructAssessment rebuilds a ProfileAssessment from persisted data (no validation, no events).
func ReconstructAssessment(
	id uuid.UUID,
	subjectID string,
	result AggregateResult,
	assessedAt time.Time,
	version int,
	createdAt time.Time,
) *ProfileAssessment {
	return &ProfileAssessment{
		id:         id,
		subjectID:  subjectID,
		result:     result,
		assessedAt: assessedAt,
		version:    version,
		createdAt:  createdAt,
	}
}

func (a *ProfileAssessment) ID() uuid.UUID           { return a.id }
func (a *ProfileAssessment) SubjectID() string       { return a.subjectID }
func (a *ProfileAssessment) Result() AggregateResult { return a.result }
func (a *ProfileAssessment) AssessedAt() time.Time   { return a.assessedAt }
func (a *ProfileAssessment) Version() int            { return a.version }
func (a *ProfileAssessment) CreatedAt() time.Time    { return a.createdAt }

// DomainEvents returns all accumulated domain events and clears them.
func (a *ProfileAssessment) DomainEvents() []events.DomainEvent {
	return a.Drain()
}
