package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/service"
)

// Scoring holds the tunable scoring tables, loaded from YAML.
type Scoring struct {
	Categories []CategoryConfig `yaml:"categories"`
	Blend      BlendConfig      `yaml:"blend"`
	Events     EventsConfig     `yaml:"events"`
	KRI        KRIConfig        `yaml:"kri"`
}

// CategoryConfig tunes one category rule. Nil fields take the built-in value.
type CategoryConfig struct {
	Baseline *float64 `yaml:"baseline"`
	Weight   *float64 `yaml:"weight"`
	ID       string   `yaml:"id"`
}

// BlendConfig weights the rule-based and model risk in the final score.
type BlendConfig struct {
	RuleWeight float64 `yaml:"rule_weight"`
	MLWeight   float64 `yaml:"ml_weight"`
}

// EventsConfig drives anomaly detection and per-event scoring.
type EventsConfig struct {
	BaseScores    map[string]int `yaml:"base_scores"`
	HighRiskTypes []string       `yaml:"high_risk_types"`
	DefaultScore  int            `yaml:"default_score"`
	FailedBonus   int            `yaml:"failed_bonus"`
}

// KRIConfig holds column candidates and thresholds for dataset analysis.
type KRIConfig struct {
	TimeColumns     []string        `yaml:"time_columns"`
	MessageColumns  []string        `yaml:"message_columns"`
	StatusColumns   []string        `yaml:"status_columns"`
	NumericHints    []string        `yaml:"numeric_hints"`
	ErrorKeywords   []string        `yaml:"error_keywords"`
	AnomalyRates    []float64       `yaml:"anomaly_rates"`
	Flags           ThresholdConfig `yaml:"flags"`
	Drivers         ThresholdConfig `yaml:"drivers"`
	Weights         TermConfig      `yaml:"weights"`
	Caps            TermConfig      `yaml:"caps"`
	ErrorStatusMin  float64         `yaml:"error_status_min"`
	MinSpikeBuckets int             `yaml:"min_spike_buckets"`
}

// ThresholdConfig lists the per-KRI levels above which a flag or driver is reported.
type ThresholdConfig struct {
	ErrorRate        float64 `yaml:"error_rate"`
	VolumeSpike      float64 `yaml:"volume_spike"`
	OutlierIntensity float64 `yaml:"outlier_intensity"`
	Missingness      float64 `yaml:"missingness"`
}

// TermConfig lists per-term weights or caps of the dataset risk score.
type TermConfig struct {
	ErrorRate        float64 `yaml:"error_rate"`
	OutlierIntensity float64 `yaml:"outlier_intensity"`
	Missingness      float64 `yaml:"missingness"`
	AnomalyRate      float64 `yaml:"anomaly_rate"`
}

// LoadScoring reads the scoring configuration from a YAML file.
// If the file doesn't exist, it returns the defaults and no error.
func LoadScoring(path string) (*Scoring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultScoring(), nil
		}
		return nil, fmt.Errorf("failed to read scoring config: %w", err)
	}

	s := DefaultScoring()
	// A base_scores table in the file replaces the built-in one instead of
	// merging into it.
	baseScores := s.Events.BaseScores
	s.Events.BaseScores = nil
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse scoring config %s: %w", path, err)
	}
	if s.Events.BaseScores == nil {
		s.Events.BaseScores = baseScores
	}
	fillCategoryDefaults(s.Categories)

	if err := ValidateScoring(s); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultScoring returns the built-in scoring tables. Files loaded by
// LoadScoring are decoded on top of these, so omitted keys keep their
// default values.
func DefaultScoring() *Scoring {
	s := &Scoring{}
	for _, r := range service.DefaultCategoryRules() {
		s.Categories = append(s.Categories, CategoryConfig{ID: r.ID, Baseline: ptr(r.Baseline), Weight: ptr(r.Weight)})
	}

	blend := service.DefaultBlendWeights()
	s.Blend = BlendConfig{RuleWeight: blend.Rule, MLWeight: blend.ML}

	events := service.DefaultEventScoring()
	s.Events = EventsConfig{
		BaseScores:    events.BaseScores,
		HighRiskTypes: append([]string(nil), service.DefaultHighRiskEventTypes...),
		DefaultScore:  events.DefaultScore,
		FailedBonus:   events.FailedBonus,
	}

	kri := service.DefaultKRIConfig()
	s.KRI = KRIConfig{
		TimeColumns:     kri.TimeColumns,
		MessageColumns:  kri.MessageColumns,
		StatusColumns:   kri.StatusColumns,
		NumericHints:    kri.NumericHints,
		ErrorKeywords:   kri.ErrorKeywords,
		AnomalyRates:    kri.AnomalyRates,
		Flags:           ThresholdConfig(kri.Flags),
		Drivers:         ThresholdConfig(kri.Drivers),
		Weights:         TermConfig(kri.Weights),
		Caps:            TermConfig(kri.Caps),
		ErrorStatusMin:  kri.ErrorStatusMin,
		MinSpikeBuckets: kri.MinSpikeBuckets,
	}
	return s
}

// fillCategoryDefaults completes categories listed without a baseline or
// weight from the built-in rule of the same id.
func fillCategoryDefaults(categories []CategoryConfig) {
	defaults := service.DefaultCategoryRules()
	for i := range categories {
		c := &categories[i]
		for _, r := range defaults {
			if r.ID != c.ID {
				continue
			}
			if c.Baseline == nil {
				c.Baseline = ptr(r.Baseline)
			}
			if c.Weight == nil {
				c.Weight = ptr(r.Weight)
			}
		}
	}
}

// ValidateScoring rejects configurations the scoring services cannot use.
func ValidateScoring(s *Scoring) error {
	var errs []error

	seen := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		if seen[c.ID] {
			errs = append(errs, fmt.Errorf("duplicate category %q", c.ID))
		}
		seen[c.ID] = true

		if _, ok := service.RuleFuncFor(c.ID); !ok {
			errs = append(errs, fmt.Errorf("unknown category %q", c.ID))
		}
		if c.Weight != nil && *c.Weight < 0 {
			errs = append(errs, fmt.Errorf("category %q has negative weight", c.ID))
		}
	}

	if s.Blend.RuleWeight < 0 || s.Blend.MLWeight < 0 {
		errs = append(errs, errors.New("blend weights must not be negative"))
	}

	k := s.KRI
	for name, v := range map[string]float64{
		"error_rate":        k.Weights.ErrorRate,
		"outlier_intensity": k.Weights.OutlierIntensity,
		"missingness":       k.Weights.Missingness,
		"anomaly_rate":      k.Weights.AnomalyRate,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("kri weight %s must not be negative", name))
		}
	}
	for _, r := range k.AnomalyRates {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Errorf("anomaly rate %v must be within [0,1]", r))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid scoring config: %w", errors.Join(errs...))
	}
	return nil
}

// CategoryRules builds the ordered rule set for the evaluator.
func (s *Scoring) CategoryRules() ([]service.CategoryRule, error) {
	rules := make([]service.CategoryRule, 0, len(s.Categories))
	for _, c := range s.Categories {
		fn, ok := service.RuleFuncFor(c.ID)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", c.ID)
		}
		rule := service.CategoryRule{ID: c.ID, Evaluate: fn}
		if c.Baseline != nil {
			rule.Baseline = *c.Baseline
		}
		if c.Weight != nil {
			rule.Weight = *c.Weight
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// BlendWeights returns the rule/ML blend for the aggregator.
func (s *Scoring) BlendWeights() service.BlendWeights {
	return service.BlendWeights{Rule: s.Blend.RuleWeight, ML: s.Blend.MLWeight}
}

// EventScoring returns the event scorer's tables.
func (s *Scoring) EventScoring() service.EventScoring {
	return service.EventScoring{
		BaseScores:   s.Events.BaseScores,
		DefaultScore: s.Events.DefaultScore,
		FailedBonus:  s.Events.FailedBonus,
	}
}

// KRIConfig converts the kri block for the KRI extractor.
func (s *Scoring) KRIConfig() service.KRIConfig {
	k := s.KRI
	return service.KRIConfig{
		TimeColumns:     k.TimeColumns,
		MessageColumns:  k.MessageColumns,
		StatusColumns:   k.StatusColumns,
		NumericHints:    k.NumericHints,
		ErrorKeywords:   k.ErrorKeywords,
		AnomalyRates:    k.AnomalyRates,
		Flags:           service.KRIThresholds(k.Flags),
		Drivers:         service.KRIThresholds(k.Drivers),
		Weights:         service.KRIWeights(k.Weights),
		Caps:            service.KRIWeights(k.Caps),
		ErrorStatusMin:  k.ErrorStatusMin,
		MinSpikeBuckets: k.MinSpikeBuckets,
	}
}

func ptr[T any](v T) *T { return &v }

// Services are the domain services a scoring configuration describes.
type Services struct {
	Evaluator   *service.RuleEvaluator
	Detector    *service.AnomalyDetector
	EventScorer *service.EventScorer
	KRI         *service.KRIExtractor
}

// BuildServices constructs the domain services from s.
func (s *Scoring) BuildServices() (Services, error) {
	rules, err := s.CategoryRules()
	if err != nil {
		return Services{}, err
	}
	return Services{
		Evaluator:   service.NewRuleEvaluator(rules),
		Detector:    service.NewAnomalyDetector(s.Events.HighRiskTypes),
		EventScorer: service.NewEventScorer(s.EventScoring()),
		KRI:         service.NewKRIExtractor(s.KRIConfig()),
	}, nil
}
