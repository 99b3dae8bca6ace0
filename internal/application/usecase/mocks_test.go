package usecase_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/events"
)

// --- Mock implementations ---

type mockAssessmentRepository struct {
	saveFunc     func(ctx context.Context, a *model.ProfileAssessment) error
	findByIDFunc func(ctx context.Context, id uuid.UUID) (*model.ProfileAssessment, error)
	listFunc     func(ctx context.Context, subjectID string, limit, offset int) ([]*model.ProfileAssessment, error)
	saved        []*model.ProfileAssessment
	mu           sync.Mutex
}

func (m *mockAssessmentRepository) Save(ctx context.Context, a *model.ProfileAssessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, a)
	return nil
}

func (m *mockAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProfileAssessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, model.ErrAssessmentNotFound
}

func (m *mockAssessmentRepository) FindBySubjectID(ctx context.Context, subjectID string, limit, offset int) ([]*model.ProfileAssessment, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, subjectID, limit, offset)
	}
	return nil, nil
}

type mockEventPublisher struct {
	publishFunc func(ctx context.Context, evts ...events.DomainEvent) error
	published   []events.DomainEvent
	mu          sync.Mutex
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, evts...)
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.published))
	for _, e := range m.published {
		out = append(out, e.EventType())
	}
	return out
}

type fixedProvider struct {
	score float64
}

func (p fixedProvider) Predict(context.Context, model.Profile) (float64, bool, error) {
	return p.score, true, nil
}

func newAggregator(provider *fixedProvider) *service.Aggregator {
	evaluator := service.NewRuleEvaluator(service.DefaultCategoryRules())
	if provider == nil {
		return service.NewAggregator(evaluator, nil, service.DefaultBlendWeights(), nil)
	}
	return service.NewAggregator(evaluator, *provider, service.DefaultBlendWeights(), nil)
}
