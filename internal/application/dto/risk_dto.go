package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

// ScoreProfileRequest is the input DTO for the ScoreProfile use case.
type ScoreProfileRequest struct {
	Profile model.Profile `json:"profile"`
}

// AssessmentResponse is the output DTO for a scored (and possibly stored)
// profile.
type AssessmentResponse struct {
	AssessedAt time.Time             `json:"assessed_at"`
	SubjectID  string                `json:"subject_id,omitempty"`
	Result     model.AggregateResult `json:"result"`
	Version    int                   `json:"version"`
	ID         uuid.UUID             `json:"id"`
}

// GetAssessmentRequest is the input DTO for retrieving an assessment.
type GetAssessmentRequest struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
}

// ListAssessmentsRequest pages through a subject's assessments.
type ListAssessmentsRequest struct {
	SubjectID string `json:"subject_id"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}

// ScoreEventsRequest carries raw log records for detection and scoring.
type ScoreEventsRequest struct {
	Records []model.LogRecord `json:"records"`
}

// ScoreEventsResponse lists the flagged events in input order.
type ScoreEventsResponse struct {
	Events        []model.ScoredEvent `json:"events"`
	Examined      int                 `json:"examined"`
	CriticalCount int                 `json:"critical_count"`
}

// AnalyzeDatasetRequest carries a parsed dataset.
type AnalyzeDatasetRequest struct {
	Dataset model.Dataset `json:"-"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(a *model.ProfileAssessment) AssessmentResponse {
	return AssessmentResponse{
		ID:         a.ID(),
		SubjectID:  a.SubjectID(),
		Result:     a.Result(),
		AssessedAt: a.AssessedAt(),
		Version:    a.Version(),
	}
}
