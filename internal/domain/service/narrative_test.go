package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
)

func TestBuildNarrative_AllDrivers(t *testing.T) {
	kris := model.KRISet{
		ErrorRate:               0.25,
		VolumeSpikeRatio:        2.0,
		NumericOutlierIntensity: 0.03,
		Missingness:             0.2,
	}

	got := newExtractor().BuildNarrative(kris, 0.30, 72.5)

	assert.Equal(t,
		"Overall risk level: HIGH (score=72.5/100). Estimated anomaly rate: 30.0%. "+
			"Key drivers: elevated error rate (25.0%), traffic/volume spike (x2.00), "+
			"unusual numeric outliers (3.0%), data-quality issues (missingness 20.0%). "+
			"Recommended next step: validate top anomalies, confirm expected traffic patterns, and review recent changes/releases.",
		got)
}

func TestBuildNarrative_Levels(t *testing.T) {
	k := newExtractor()

	tests := []struct {
		want  string
		score float64
	}{
		{want: "Overall risk level: HIGH (score=70.0/100).", score: 70},
		{want: "Overall risk level: MEDIUM (score=69.99/100).", score: 69.99},
		{want: "Overall risk level: MEDIUM (score=40.0/100).", score: 40},
		{want: "Overall risk level: LOW (score=39.99/100).", score: 39.99},
		{want: "Overall risk level: LOW (score=0.0/100).", score: 0},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Contains(t, k.BuildNarrative(model.KRISet{}, 0.01, tt.score), tt.want)
		})
	}
}

func TestBuildNarrative_DriverThresholdsAreExclusive(t *testing.T) {
	kris := model.KRISet{
		ErrorRate:               0.05,
		VolumeSpikeRatio:        1.5,
		NumericOutlierIntensity: 0.02,
		Missingness:             0.15,
	}

	got := newExtractor().BuildNarrative(kris, 0.01, 10)
	assert.Contains(t, got, "No dominant risk drivers detected.")
	assert.NotContains(t, got, "Key drivers")
}

func TestBuildNarrative_SpikeOnly(t *testing.T) {
	got := newExtractor().BuildNarrative(model.KRISet{VolumeSpikeRatio: 3.14159}, 0.01, 0.5)
	assert.Contains(t, got, "Key drivers: traffic/volume spike (x3.14).")
}

func TestFormatScore(t *testing.T) {
	tests := map[float64]string{
		40:           "40.0",
		72.5:         "72.5",
		0:            "0.0",
		42.51:        "42.51",
		100:          "100.0",
		0.0001:       "0.0001",
		0.3333:       "0.3333",
		0.00001:      "1e-05",
		math.Inf(1):  "inf",
		-3:           "-3.0",
	}

	for in, want := range tests {
		assert.Equal(t, want, service.FormatScore(in), "input %v", in)
	}
	assert.Equal(t, "nan", service.FormatScore(math.NaN()))
}
