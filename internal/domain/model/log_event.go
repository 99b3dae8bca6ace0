package model

import "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"

// LogRecord is one raw row of an event log.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	EventType string `json:"event_type"`
	SourceIP  string `json:"source_ip"`
	Status    string `json:"status"`
}

// AnomalyEvent is a log record that was flagged for scoring.
type AnomalyEvent struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	EventType string `json:"event_type"`
	SourceIP  string `json:"source_ip"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

// ScoredEvent is an AnomalyEvent with its score (1-10) and level.
type ScoredEvent struct {
	AnomalyEvent
	RiskLevel valueobject.EventRiskLevel `json:"risk_level"`
	Score     int                        `json:"score"`
}
