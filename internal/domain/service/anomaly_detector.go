package service

import (
	"fmt"
	"strings"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

// DefaultHighRiskEventTypes are flagged regardless of status.
var DefaultHighRiskEventTypes = []string{"privilege_escalation", "data_export", "suspicious_login"}

// AnomalyDetector flags raw log records that warrant scoring.
type AnomalyDetector struct {
	highRisk map[string]struct{}
}

// NewAnomalyDetector creates a detector over the given high-risk event types.
func NewAnomalyDetector(highRiskTypes []string) *AnomalyDetector {
	m := make(map[string]struct{}, len(highRiskTypes))
	for _, t := range highRiskTypes {
		m[strings.ToLower(t)] = struct{}{}
	}
	return &AnomalyDetector{highRisk: m}
}

// Detect returns the flagged records in input order, each with the reasons
// it was flagged joined by "; ". Event type and status come out lowercased.
func (d *AnomalyDetector) Detect(records []model.LogRecord) []model.AnomalyEvent {
	out := make([]model.AnomalyEvent, 0)
	for _, r := range records {
		var reasons []string

		eventType := strings.ToLower(r.EventType)
		status := strings.ToLower(r.Status)

		if _, ok := d.highRisk[eventType]; ok {
			reasons = append(reasons, fmt.Sprintf("High-risk event type: %s", eventType))
		}
		if status == failedStatus {
			reasons = append(reasons, "Failed action")
		}

		if len(reasons) == 0 {
			continue
		}

		out = append(out, model.AnomalyEvent{
			Timestamp: r.Timestamp,
			User:      r.User,
			EventType: eventType,
			SourceIP:  r.SourceIP,
			Status:    status,
			Reason:    strings.Join(reasons, "; "),
		})
	}
	return out
}
