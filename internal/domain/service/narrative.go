package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"
)

const recommendation = "Recommended next step: validate top anomalies, confirm expected traffic patterns, and review recent changes/releases."

// BuildNarrative renders the dataset findings as prose: overall level,
// estimated anomaly rate, the drivers above their thresholds and a fixed
// recommendation.
func (k *KRIExtractor) BuildNarrative(kris model.KRISet, anomalyRate, riskScore float64) string {
	level := strings.ToUpper(valueobject.RiskBandFromScore(riskScore).String())

	var drivers []string
	if kris.ErrorRate > k.cfg.Drivers.ErrorRate {
		drivers = append(drivers, fmt.Sprintf("elevated error rate (%.1f%%)", kris.ErrorRate*100))
	}
	if kris.VolumeSpikeRatio > k.cfg.Drivers.VolumeSpike {
		drivers = append(drivers, fmt.Sprintf("traffic/volume spike (x%.2f)", kris.VolumeSpikeRatio))
	}
	if kris.NumericOutlierIntensity > k.cfg.Drivers.OutlierIntensity {
		drivers = append(drivers, fmt.Sprintf("unusual numeric outliers (%.1f%%)", kris.NumericOutlierIntensity*100))
	}
	if kris.Missingness > k.cfg.Drivers.Missingness {
		drivers = append(drivers, fmt.Sprintf("data-quality issues (missingness %.1f%%)", kris.Missingness*100))
	}

	driverText := "No dominant risk drivers detected."
	if len(drivers) > 0 {
		driverText = "Key drivers: " + strings.Join(drivers, ", ") + "."
	}

	return fmt.Sprintf(
		"Overall risk level: %s (score=%s/100). Estimated anomaly rate: %.1f%%. %s %s",
		level, FormatScore(riskScore), anomalyRate*100, driverText, recommendation,
	)
}

// FormatScore prints a float in its shortest round-trip form, always with a
// fractional part ("40.0", "72.5", "0.0001").
func FormatScore(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
