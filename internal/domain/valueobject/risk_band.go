package valueobject

import (
	"encoding/json"
	"fmt"
)

// RiskBand is an immutable value object representing the banded profile risk.
type RiskBand struct {
	value string
}

var (
	RiskBandLow    = RiskBand{value: "Low"}
	RiskBandMedium = RiskBand{value: "Medium"}
	RiskBandHigh   = RiskBand{value: "High"}
)

// Band thresholds are inclusive lower bounds.
const (
	HighBandThreshold   = 70.0
	MediumBandThreshold = 40.0
)

// RiskBandFromString reconstructs a RiskBand from its string representation.
func RiskBandFromString(s string) (RiskBand, error) {
	switch s {
	case "Low":
		return RiskBandLow, nil
	case "Medium":
		return RiskBandMedium, nil
	case "High":
		return RiskBandHigh, nil
	default:
		return RiskBand{}, fmt.Errorf("invalid risk band: %s", s)
	}
}

// RiskBandFromScore derives the band from a final risk score (0-100).
// Boundary values belong to the higher band.
func RiskBandFromScore(score float64) RiskBand {
	switch {
	case score >= HighBandThreshold:
		return RiskBandHigh
	case score >= MediumBandThreshold:
		return RiskBandMedium
	default:
		return RiskBandLow
	}
}

// String returns the string representation.
func (b RiskBand) String() string {
	return b.value
}

// IsZero returns true if the RiskBand has not been set.
func (b RiskBand) IsZero() bool {
	return b.value == ""
}

// Equal checks equality with another RiskBand.
func (b RiskBand) Equal(other RiskBand) bool {
	return b.value == other.value
}

func (b RiskBand) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.value)
}

func (b *RiskBand) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := RiskBandFromString(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
