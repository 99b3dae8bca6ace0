package usecase

import (
	"context"
	"fmt"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/port"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListAssessments pages through the assessments of one subject.
type ListAssessments struct {
	repo port.AssessmentRepository
}

// NewListAssessments creates a new ListAssessments use case.
func NewListAssessments(repo port.AssessmentRepository) *ListAssessments {
	return &ListAssessments{repo: repo}
}

// Execute returns up to req.Limit assessments, newest first.
func (uc *ListAssessments) Execute(ctx context.Context, req dto.ListAssessmentsRequest) (resp []dto.AssessmentResponse, err error) {
	ctx, span := startSpan(ctx, "ListAssessments.Execute")
	defer func() { endSpan(span, err) }()

	if req.SubjectID == "" {
		return nil, fmt.Errorf("subject id is required")
	}

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	offset := max(req.Offset, 0)

	assessments, err := uc.repo.FindBySubjectID(ctx, req.SubjectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	resp = make([]dto.AssessmentResponse, 0, len(assessments))
	for _, a := range assessments {
		resp = append(resp, dto.FromModel(a))
	}
	return resp, nil
}
