package event

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/events"
)

const (
	// EventTypeAssessmentCompleted is emitted when a profile assessment finishes.
	EventTypeAssessmentCompleted = "risk.assessment.completed"

	// EventTypeHighRiskDetected is emitted when a profile lands in the High band.
	EventTypeHighRiskDetected = "risk.high_risk.detected"

	// EventTypeCriticalEventDetected is emitted for every log event scored Critical.
	EventTypeCriticalEventDetected = "risk.critical_event.detected"
)

const (
	AggregateTypeProfileAssessment = "ProfileAssessment"
	AggregateTypeLogEvent          = "LogEvent"
)

// AssessmentCompleted is published when a profile has been scored.
type AssessmentCompleted struct {
	events.BaseEvent `json:"-"`
	AssessedAt       time.Time `json:"assessed_at"`
	MLScore          *float64  `json:"ml_score"`
	SubjectID        string    `json:"subject_id"`
	RiskBand         string    `json:"risk_band"`
	RuleBasedScore   float64   `json:"rule_based_score"`
	FinalRiskScore   float64   `json:"final_risk_score"`
	AssessmentID     uuid.UUID `json:"assessment_id"`
}

// NewAssessmentCompleted creates an AssessmentCompleted event.
func NewAssessmentCompleted(
	assessmentID uuid.UUID,
	subjectID string,
	ruleBasedScore float64,
	mlScore *float64,
	finalRiskScore float64,
	riskBand string,
	assessedAt time.Time,
) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:      events.NewBaseEvent(EventTypeAssessmentCompleted, assessmentID, AggregateTypeProfileAssessment, assessedAt),
		AssessmentID:   assessmentID,
		SubjectID:      subjectID,
		RuleBasedScore: ruleBasedScore,
		MLScore:        mlScore,
		FinalRiskScore: finalRiskScore,
		RiskBand:       riskBand,
		AssessedAt:     assessedAt,
	}
}

// HighRiskDetected is published when a profile is assessed in the High band,
// carrying the notes so downstream reviewers see the drivers.
type HighRiskDetected struct {
	events.BaseEvent `json:"-"`
	DetectedAt       time.Time `json:"detected_at"`
	SubjectID        string    `json:"subject_id"`
	Notes            []string  `json:"notes"`
	FinalRiskScore   float64   `json:"final_risk_score"`
	AssessmentID     uuid.UUID `json:"assessment_id"`
}

// NewHighRiskDetected creates a HighRiskDetected event.
func NewHighRiskDetected(
	assessmentID uuid.UUID,
	subjectID string,
	finalRiskScore float64,
	notes []string,
	detectedAt time.Time,
) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:      events.NewBaseEvent(EventTypeHighRiskDetected, assessmentID, AggregateTypeProfileAssessment, detectedAt),
		AssessmentID:   assessmentID,
		SubjectID:      subjectID,
		FinalRiskScore: finalRiskScore,
		Notes:          notes,
		DetectedAt:     detectedAt,
	}
}

// CriticalEventDetected is published for a scored log event at Critical level.
type CriticalEventDetected struct {
	events.BaseEvent `json:"-"`
	DetectedAt       time.Time `json:"detected_at"`
	Timestamp        string    `json:"timestamp"`
	User             string    `json:"user"`
	EventKind        string    `json:"event_type"`
	SourceIP         string    `json:"source_ip"`
	Status           string    `json:"status"`
	Reason           string    `json:"reason"`
	RiskLevel        string    `json:"risk_level"`
	Score            int       `json:"score"`
}

// NewCriticalEventDetected creates a CriticalEventDetected event.
func NewCriticalEventDetected(
	timestamp, user, eventKind, sourceIP, status, reason string,
	score int,
	riskLevel string,
	detectedAt time.Time,
) CriticalEventDetected {
	return CriticalEventDetected{
		BaseEvent:  events.NewBaseEvent(EventTypeCriticalEventDetected, LogEventID(timestamp, user, eventKind, sourceIP), AggregateTypeLogEvent, detectedAt),
		Timestamp:  timestamp,
		User:       user,
		EventKind:  eventKind,
		SourceIP:   sourceIP,
		Status:     status,
		Reason:     reason,
		Score:      score,
		RiskLevel:  riskLevel,
		DetectedAt: detectedAt,
	}
}

// LogEventID derives a stable identifier for a raw log event so repeated
// deliveries of the same record share a message key.
func LogEventID(timestamp, user, eventKind, sourceIP string) uuid.UUID {
	key := strings.Join([]string{timestamp, user, eventKind, sourceIP}, "|")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}
