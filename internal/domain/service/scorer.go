package service

import (
	"context"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

// ProfileScorer scores a profile end to end. Aggregator implements it.
type ProfileScorer interface {
	ScoreProfile(ctx context.Context, profile model.Profile) model.AggregateResult
}

// EventsScorer scores flagged log events. EventScorer implements it.
type EventsScorer interface {
	ScoreEvents(events []model.AnomalyEvent) []model.ScoredEvent
}

// EventDetector flags suspicious raw log records. AnomalyDetector implements it.
type EventDetector interface {
	Detect(records []model.LogRecord) []model.AnomalyEvent
}

// DatasetAnalyzer runs the KRI pipeline. KRIExtractor implements it.
type DatasetAnalyzer interface {
	Analyze(d model.Dataset) model.DatasetAnalysis
}

var (
	_ ProfileScorer   = (*Aggregator)(nil)
	_ EventsScorer    = (*EventScorer)(nil)
	_ EventDetector   = (*AnomalyDetector)(nil)
	_ DatasetAnalyzer = (*KRIExtractor)(nil)
)
