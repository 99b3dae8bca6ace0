package valueobject

import (
	"encoding/json"
	"fmt"
)

// EventRiskLevel is an immutable value object classifying a single scored event.
type EventRiskLevel struct {
	value string
}

var (
	EventRiskLow      = EventRiskLevel{value: "Low"}
	EventRiskMedium   = EventRiskLevel{value: "Medium"}
	EventRiskHigh     = EventRiskLevel{value: "High"}
	EventRiskCritical = EventRiskLevel{value: "Critical"}
)

// EventRiskLevelFromString reconstructs an EventRiskLevel from its string representation.
func EventRiskLevelFromString(s string) (EventRiskLevel, error) {
	switch s {
	case "Low":
		return EventRiskLow, nil
	case "Medium":
		return EventRiskMedium, nil
	case "High":
		return EventRiskHigh, nil
	case "Critical":
		return EventRiskCritical, nil
	default:
		return EventRiskLevel{}, fmt.Errorf("invalid event risk level: %s", s)
	}
}

// EventRiskLevelFromScore derives the level from an event score (1-10).
func EventRiskLevelFromScore(score int) EventRiskLevel {
	switch {
	case score >= 9:
		return EventRiskCritical
	case score >= 7:
		return EventRiskHigh
	case score >= 4:
		return EventRiskMedium
	default:
		return EventRiskLow
	}
}

// String returns the string representation.
func (l EventRiskLevel) String() string {
	return l.value
}

// IsZero returns true if the level has not been set.
func (l EventRiskLevel) IsZero() bool {
	return l.value == ""
}

// Equal checks equality with another EventRiskLevel.
func (l EventRiskLevel) Equal(other EventRiskLevel) bool {
	return l.value == other.value
}

func (l EventRiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.value)
}

func (l *EventRiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := EventRiskLevelFromString(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
