package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

// KRIThresholds holds one threshold per indicator.
type KRIThresholds struct {
	ErrorRate        float64
	VolumeSpike      float64
	OutlierIntensity float64
	Missingness      float64
}

// KRIWeights holds one value per risk-score term.
type KRIWeights struct {
	ErrorRate        float64
	OutlierIntensity float64
	Missingness      float64
	AnomalyRate      float64
}

// KRIConfig configures column discovery and the KRI scoring formula.
type KRIConfig struct {
	TimeColumns    []string
	MessageColumns []string
	StatusColumns  []string
	NumericHints   []string
	ErrorKeywords  []string
	// AnomalyRates maps the number of raised flags to a pseudo anomaly rate.
	AnomalyRates    []float64
	Flags           KRIThresholds
	Drivers         KRIThresholds
	Weights         KRIWeights
	Caps            KRIWeights
	ErrorStatusMin  float64
	MinSpikeBuckets int
}

// DefaultKRIConfig returns the standard heuristics.
func DefaultKRIConfig() KRIConfig {
	return KRIConfig{
		TimeColumns:    []string{"timestamp", "time", "event_time", "created_at", "date"},
		MessageColumns: []string{"message", "event", "log", "description"},
		StatusColumns:  []string{"status_code"},
		NumericHints:   []string{"latency_ms", "duration_ms", "error_count", "requests", "status_code"},
		ErrorKeywords:  []string{"error", "failed", "exception", "timeout"},
		AnomalyRates:   []float64{0.01, 0.05, 0.15, 0.30},
		Flags: KRIThresholds{
			ErrorRate:        0.05,
			OutlierIntensity: 0.02,
			Missingness:      0.15,
		},
		Drivers: KRIThresholds{
			ErrorRate:        0.05,
			VolumeSpike:      1.5,
			OutlierIntensity: 0.02,
			Missingness:      0.15,
		},
		Weights: KRIWeights{
			ErrorRate:        0.40,
			OutlierIntensity: 0.25,
			Missingness:      0.20,
			AnomalyRate:      0.15,
		},
		Caps: KRIWeights{
			ErrorRate:        0.20,
			OutlierIntensity: 0.10,
			Missingness:      0.30,
			AnomalyRate:      0.30,
		},
		ErrorStatusMin:  400,
		MinSpikeBuckets: 3,
	}
}

const zScoreCutoff = 3.0

// KRIExtractor derives key risk indicators from tabular data and turns them
// into a score and narrative.
type KRIExtractor struct {
	cfg KRIConfig
}

// NewKRIExtractor creates a KRIExtractor for cfg.
func NewKRIExtractor(cfg KRIConfig) *KRIExtractor {
	return &KRIExtractor{cfg: cfg}
}

// Analyze runs the whole dataset pipeline.
func (k *KRIExtractor) Analyze(d model.Dataset) model.DatasetAnalysis {
	kris := k.Extract(d)
	rate := k.ComputeAnomalyRate(kris)
	score := k.ComputeRiskScore(kris, rate)

	columns := make([]string, len(d.Columns))
	copy(columns, d.Columns)

	return model.DatasetAnalysis{
		KRIs:        kris,
		AnomalyRate: rate,
		RiskScore:   score,
		Narrative:   k.BuildNarrative(kris, rate, score),
		Meta: model.DatasetMeta{
			Columns: columns,
			Shape:   [2]int{d.NumRows(), len(d.Columns)},
		},
	}
}

// Extract computes the four indicators, each rounded to four decimals.
func (k *KRIExtractor) Extract(d model.Dataset) model.KRISet {
	return model.KRISet{
		ErrorRate:               roundHalfEven(k.errorRate(d), 4),
		VolumeSpikeRatio:        roundHalfEven(k.volumeSpike(d), 4),
		Missingness:             roundHalfEven(missingness(d), 4),
		NumericOutlierIntensity: roundHalfEven(k.outlierIntensity(d), 4),
	}
}

// ComputeAnomalyRate counts the raised flags and maps the count to a rate.
func (k *KRIExtractor) ComputeAnomalyRate(kris model.KRISet) float64 {
	flags := 0
	if kris.ErrorRate > k.cfg.Flags.ErrorRate {
		flags++
	}
	if kris.NumericOutlierIntensity > k.cfg.Flags.OutlierIntensity {
		flags++
	}
	if kris.Missingness > k.cfg.Flags.Missingness {
		flags++
	}

	if len(k.cfg.AnomalyRates) == 0 {
		return 0
	}
	if flags >= len(k.cfg.AnomalyRates) {
		return k.cfg.AnomalyRates[len(k.cfg.AnomalyRates)-1]
	}
	return k.cfg.AnomalyRates[flags]
}

// ComputeRiskScore returns the weighted 0-100 score, rounded to two decimals.
func (k *KRIExtractor) ComputeRiskScore(kris model.KRISet, anomalyRate float64) float64 {
	w, c := k.cfg.Weights, k.cfg.Caps
	score := w.ErrorRate*capped(kris.ErrorRate, c.ErrorRate) +
		w.OutlierIntensity*capped(kris.NumericOutlierIntensity, c.OutlierIntensity) +
		w.Missingness*capped(kris.Missingness, c.Missingness) +
		w.AnomalyRate*capped(anomalyRate, c.AnomalyRate)
	return roundHalfEven(score*100.0, 2)
}

// capped returns min(1, v/limit); a non-positive limit yields 0.
func capped(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Min(1.0, v/limit)
}

func (k *KRIExtractor) errorRate(d model.Dataset) float64 {
	n := d.NumRows()
	if n == 0 {
		return 0
	}

	if idx := pickColumn(d.Columns, k.cfg.StatusColumns); idx >= 0 {
		errs := 0
		for _, c := range d.Column(idx) {
			if v, ok := parseNumber(c); ok && v >= k.cfg.ErrorStatusMin {
				errs++
			}
		}
		return float64(errs) / float64(n)
	}

	if idx := pickColumn(d.Columns, k.cfg.MessageColumns); idx >= 0 {
		hits := 0
		for _, c := range d.Column(idx) {
			if c.Missing {
				continue
			}
			text := strings.ToLower(c.Raw)
			for _, kw := range k.cfg.ErrorKeywords {
				if strings.Contains(text, kw) {
					hits++
					break
				}
			}
		}
		return float64(hits) / float64(n)
	}

	return 0
}

// volumeSpike buckets rows by UTC hour across the whole observed span, empty
// hours included, and returns max/mean of the bucket counts.
func (k *KRIExtractor) volumeSpike(d model.Dataset) float64 {
	idx := pickColumn(d.Columns, k.cfg.TimeColumns)
	if idx < 0 {
		return 0
	}

	counts := make(map[int64]int)
	var first, last int64
	parsed := 0
	for _, c := range d.Column(idx) {
		t, ok := parseTimestamp(c)
		if !ok {
			continue
		}
		hour := floorDiv(t.Unix(), 3600)
		if parsed == 0 || hour < first {
			first = hour
		}
		if parsed == 0 || hour > last {
			last = hour
		}
		counts[hour]++
		parsed++
	}
	if parsed == 0 {
		return 0
	}

	buckets := last - first + 1
	if buckets < int64(k.cfg.MinSpikeBuckets) {
		return 0
	}

	peak := 0
	for _, n := range counts {
		peak = max(peak, n)
	}
	mean := float64(parsed) / float64(buckets)
	if mean <= 0 {
		return 0
	}
	return float64(peak) / mean
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// missingness is the mean over columns of each column's missing fraction.
func missingness(d model.Dataset) float64 {
	n := d.NumRows()
	if n == 0 || len(d.Columns) == 0 {
		return 0
	}
	var sum float64
	for i := range d.Columns {
		missing := 0
		for _, c := range d.Column(i) {
			if c.Missing {
				missing++
			}
		}
		sum += float64(missing) / float64(n)
	}
	return sum / float64(len(d.Columns))
}

// outlierIntensity averages, over numeric columns, the fraction of values
// whose population z-score exceeds 3. Rows with any missing or non-finite
// numeric value are excluded first.
func (k *KRIExtractor) outlierIntensity(d model.Dataset) float64 {
	cols := k.numericColumns(d)
	if len(cols) == 0 {
		return 0
	}

	matrix := make([][]float64, len(cols))
	for j := range cols {
		matrix[j] = make([]float64, 0, d.NumRows())
	}
	for _, row := range d.Rows {
		values := make([]float64, len(cols))
		complete := true
		for j, idx := range cols {
			if idx >= len(row) {
				complete = false
				break
			}
			v, ok := parseNumber(row[idx])
			if !ok || math.IsInf(v, 0) || math.IsNaN(v) {
				complete = false
				break
			}
			values[j] = v
		}
		if !complete {
			continue
		}
		for j, v := range values {
			matrix[j] = append(matrix[j], v)
		}
	}

	rows := len(matrix[0])
	if rows == 0 {
		return 0
	}

	var total float64
	for _, values := range matrix {
		mean, std := stat.PopMeanStdDev(values, nil)

		outliers := 0
		for _, v := range values {
			if math.Abs(stat.StdScore(v, mean, std+1e-9)) > zScoreCutoff {
				outliers++
			}
		}
		total += float64(outliers) / float64(rows)
	}
	return total / float64(len(matrix))
}

// numericColumns returns the indexes of columns whose present values all
// parse as numbers. When there are none, the hinted columns are used and
// their unparseable values treated as missing.
func (k *KRIExtractor) numericColumns(d model.Dataset) []int {
	var native []int
	for i := range d.Columns {
		numeric := true
		for _, c := range d.Column(i) {
			if c.Missing {
				continue
			}
			if _, ok := parseNumber(c); !ok {
				numeric = false
				break
			}
		}
		if numeric {
			native = append(native, i)
		}
	}
	if len(native) > 0 {
		return native
	}

	hinted := make(map[int]struct{})
	for _, h := range k.cfg.NumericHints {
		if idx := pickColumn(d.Columns, []string{h}); idx >= 0 {
			hinted[idx] = struct{}{}
		}
	}
	var coerced []int
	for i := range d.Columns {
		if _, ok := hinted[i]; ok {
			coerced = append(coerced, i)
		}
	}
	return coerced
}

// pickColumn returns the index of the first candidate present in columns,
// matching case-insensitively, or -1.
func pickColumn(columns, candidates []string) int {
	lower := make(map[string]int, len(columns))
	for i, c := range columns {
		// Later duplicates win.
		lower[strings.ToLower(c)] = i
	}
	for _, cand := range candidates {
		if idx, ok := lower[strings.ToLower(cand)]; ok {
			return idx
		}
	}
	return -1
}

// parseNumber parses a decimal number. Hex literals and digit separators
// are rejected.
func parseNumber(c model.Cell) (float64, bool) {
	if c.Missing {
		return 0, false
	}
	s := strings.TrimSpace(c.Raw)
	if s == "" || strings.ContainsAny(s, "_xXpP") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// parseTimestamp parses common timestamp layouts. Values without a zone are UTC.
func parseTimestamp(c model.Cell) (time.Time, bool) {
	if c.Missing {
		return time.Time{}, false
	}
	s := strings.TrimSpace(c.Raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
