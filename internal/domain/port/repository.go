package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/events"
)

// AssessmentRepository defines the persistence port for profile assessments.
type AssessmentRepository interface {
	// Save persists a new or updated profile assessment.
	Save(ctx context.Context, assessment *model.ProfileAssessment) error

	// FindByID retrieves an assessment by its unique identifier. It returns
	// model.ErrAssessmentNotFound when no row exists.
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProfileAssessment, error)

	// FindBySubjectID lists assessments for a subject, newest first.
	FindBySubjectID(ctx context.Context, subjectID string, limit, offset int) ([]*model.ProfileAssessment, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// ScoreProvider supplies the optional secondary (model) score for a profile.
// present is false when the provider has no opinion; score lies in [0,1].
type ScoreProvider interface {
	Predict(ctx context.Context, profile model.Profile) (score float64, present bool, err error)
}
