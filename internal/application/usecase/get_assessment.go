package usecase

import (
	"context"
	"fmt"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/port"
)

// GetAssessment is the use case for retrieving an existing assessment.
type GetAssessment struct {
	repo port.AssessmentRepository
}

// NewGetAssessment creates a new GetAssessment use case.
func NewGetAssessment(repo port.AssessmentRepository) *GetAssessment {
	return &GetAssessment{repo: repo}
}

// Execute retrieves a profile assessment by ID.
func (uc *GetAssessment) Execute(ctx context.Context, req dto.GetAssessmentRequest) (resp dto.AssessmentResponse, err error) {
	ctx, span := startSpan(ctx, "GetAssessment.Execute")
	defer func() { endSpan(span, err) }()

	assessment, err := uc.repo.FindByID(ctx, req.AssessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to find assessment %s: %w", req.AssessmentID, err)
	}

	return dto.FromModel(assessment), nil
}
