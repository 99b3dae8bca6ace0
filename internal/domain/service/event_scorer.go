package service

import (
	"strings"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"
)

const (
	minEventScore = 1
	maxEventScore = 10

	failedStatus = "failed"
)

// EventScoring configures the event risk scorer.
type EventScoring struct {
	BaseScores   map[string]int
	DefaultScore int
	FailedBonus  int
}

// DefaultEventScoring returns the standard base-score table.
func DefaultEventScoring() EventScoring {
	return EventScoring{
		BaseScores: map[string]int{
			"privilege_escalation": 9,
			"data_export":          8,
			"suspicious_login":     7,
			"login":                4,
		},
		DefaultScore: 5,
		FailedBonus:  2,
	}
}

// EventScorer assigns each flagged event a 1-10 score and a risk level.
type EventScorer struct {
	cfg EventScoring
}

// NewEventScorer creates an EventScorer. Base-score keys are matched lowercased.
func NewEventScorer(cfg EventScoring) *EventScorer {
	base := make(map[string]int, len(cfg.BaseScores))
	for k, v := range cfg.BaseScores {
		base[strings.ToLower(k)] = v
	}
	cfg.BaseScores = base
	return &EventScorer{cfg: cfg}
}

// Score scores a single event.
func (s *EventScorer) Score(e model.AnomalyEvent) model.ScoredEvent {
	score, ok := s.cfg.BaseScores[strings.ToLower(e.EventType)]
	if !ok {
		score = s.cfg.DefaultScore
	}

	if e.Status == failedStatus {
		score += s.cfg.FailedBonus
	}

	score = max(minEventScore, min(score, maxEventScore))

	return model.ScoredEvent{
		AnomalyEvent: e,
		Score:        score,
		RiskLevel:    valueobject.EventRiskLevelFromScore(score),
	}
}

// ScoreEvents scores every event, preserving input order.
func (s *EventScorer) ScoreEvents(events []model.AnomalyEvent) []model.ScoredEvent {
	scored := make([]model.ScoredEvent, 0, len(events))
	for _, e := range events {
		scored = append(scored, s.Score(e))
	}
	return scored
}
