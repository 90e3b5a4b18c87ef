package domain

import (
	"fmt"
	"math"

	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
)

// Niche tags the six market segments spec.md §3 defines.
type Niche string

const (
	NicheEcommerce  Niche = "ecommerce"
	NicheHealth     Niche = "health"
	NicheTechnology Niche = "technology"
	NicheEducation  Niche = "education"
	NicheFinance    Niche = "finance"
	NicheGeneric    Niche = "generic"
)

// ScoreWeights holds the CompositeScorer's per-dimension weights. Invariant
// (spec.md §3): the four weights sum to 1 ± 1e-6 after resolution, all ≥ 0.
type ScoreWeights struct {
	Complexity  float64 `json:"complexity"`
	Specificity float64 `json:"specificity"`
	Competitive float64 `json:"competitive"`
	Trend       float64 `json:"trend"`
}

// Sum returns the raw (possibly unnormalized) total of the four weights.
func (w ScoreWeights) Sum() float64 {
	return w.Complexity + w.Specificity + w.Competitive + w.Trend
}

// Normalized returns a copy renormalized to sum to 1. Renormalization
// preserves the rank order of the weights (spec.md §8), since every weight
// is divided by the same positive constant.
func (w ScoreWeights) Normalized() (ScoreWeights, error) {
	sum := w.Sum()
	if sum <= 0 {
		return ScoreWeights{}, kwerrors.Config("zero_weight_sum", "composite weights sum to zero or less")
	}
	for _, v := range []float64{w.Complexity, w.Specificity, w.Competitive, w.Trend} {
		if v < 0 {
			return ScoreWeights{}, kwerrors.Config("negative_weight", "composite weight is negative")
		}
	}
	return ScoreWeights{
		Complexity:  w.Complexity / sum,
		Specificity: w.Specificity / sum,
		Competitive: w.Competitive / sum,
		Trend:       w.Trend / sum,
	}, nil
}

// Validate checks the weights sum to 1 within spec.md §3's 1e-6 tolerance.
func (w ScoreWeights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return kwerrors.Config("weights_not_normalized", fmt.Sprintf("weights sum to %.9f, expected 1±1e-6", w.Sum()))
	}
	for name, v := range map[string]float64{"complexity": w.Complexity, "specificity": w.Specificity, "competitive": w.Competitive, "trend": w.Trend} {
		if v < 0 {
			return kwerrors.Config("negative_weight", fmt.Sprintf("weight %s is negative (%.6f)", name, v))
		}
	}
	return nil
}

// CompetitiveWeights holds the CompetitiveScorer's volume/cpc/competition blend.
type CompetitiveWeights struct {
	Volume      float64 `json:"volume"`
	CPC         float64 `json:"cpc"`
	Competition float64 `json:"competition"`
}

func (w CompetitiveWeights) Sum() float64 { return w.Volume + w.CPC + w.Competition }

func (w CompetitiveWeights) Normalized() (CompetitiveWeights, error) {
	sum := w.Sum()
	if sum <= 0 {
		return CompetitiveWeights{}, kwerrors.Config("zero_weight_sum", "competitive weights sum to zero or less")
	}
	return CompetitiveWeights{Volume: w.Volume / sum, CPC: w.CPC / sum, Competition: w.Competition / sum}, nil
}

// BandThresholds holds the three ascending cut points used to bucket a
// [0,1] score into low/medium/high/very_high. The composite's five bands
// use CompositeBandThresholds instead.
type BandThresholds struct {
	Medium   float64 `json:"medium"`
	High     float64 `json:"high"`
	VeryHigh float64 `json:"very_high"`
}

// CompositeBandThresholds holds the four ascending cut points used to bucket
// a composite score into poor/regular/good/very_good/excellent.
type CompositeBandThresholds struct {
	Regular   float64 `json:"regular"`
	Good      float64 `json:"good"`
	VeryGood  float64 `json:"very_good"`
	Excellent float64 `json:"excellent"`
}

// DefaultCompositeBandThresholds matches spec.md §4.6's documented defaults.
func DefaultCompositeBandThresholds() CompositeBandThresholds {
	return CompositeBandThresholds{Regular: 0.50, Good: 0.65, VeryGood: 0.75, Excellent: 0.85}
}

// NicheConfig is the full parameter bundle governing thresholds and weights
// for one niche (spec.md §3). Instances are immutable snapshots; the
// NicheResolver hands out copy-on-write replacements, never mutates one in
// place, so an in-flight reader always sees a consistent view.
type NicheConfig struct {
	Niche Niche `json:"niche"`

	MinWordCount int `json:"min_word_count"`
	MaxWordCount int `json:"max_word_count"`

	SpecificityThreshold float64 `json:"specificity_threshold"`
	SimilarityThreshold  float64 `json:"similarity_threshold"`
	AcceptanceThreshold  float64 `json:"acceptance_threshold"`

	ScoreWeights       ScoreWeights       `json:"score_weights"`
	CompetitiveWeights CompetitiveWeights `json:"competitive_weights"`

	VolumeCap      float64 `json:"volume_cap"`
	CPCCap         float64 `json:"cpc_cap"`
	CompetitionCap float64 `json:"competition_cap"`

	ComplexityBands  BandThresholds          `json:"complexity_bands"`
	CompetitiveBands BandThresholds          `json:"competitive_bands"`
	TrendBands       BandThresholds          `json:"trend_bands"`
	CompositeBands   CompositeBandThresholds `json:"composite_bands"`

	PositiveTerms []string `json:"positive_terms"`
	NegativeTerms []string `json:"negative_terms"`

	TimeoutMillis int `json:"timeout_millis"`
	CacheTTLSecs  int `json:"cache_ttl_secs"`
}

// Validate checks the invariants spec.md §3 documents for a NicheConfig.
func (c NicheConfig) Validate() error {
	if err := c.ScoreWeights.Validate(); err != nil {
		return err
	}
	if c.MinWordCount < 0 || c.MaxWordCount < c.MinWordCount {
		return kwerrors.Config("invalid_word_bounds", fmt.Sprintf("word count bounds [%d,%d] invalid", c.MinWordCount, c.MaxWordCount))
	}
	for name, v := range map[string]float64{
		"specificity_threshold": c.SpecificityThreshold,
		"similarity_threshold":  c.SimilarityThreshold,
		"acceptance_threshold":  c.AcceptanceThreshold,
	} {
		if v < 0 || v > 1 {
			return kwerrors.Config("threshold_out_of_range", fmt.Sprintf("%s=%.4f outside [0,1]", name, v))
		}
	}
	if c.VolumeCap <= 0 || c.CPCCap <= 0 || c.CompetitionCap <= 0 {
		return kwerrors.Config("invalid_cap", "volume/cpc/competition caps must be positive")
	}
	return nil
}

// Clone returns a deep-enough copy safe for independent mutation (copy-on-write).
func (c NicheConfig) Clone() NicheConfig {
	clone := c
	clone.PositiveTerms = append([]string(nil), c.PositiveTerms...)
	clone.NegativeTerms = append([]string(nil), c.NegativeTerms...)
	return clone
}

// ParameterVector is the tunable subset of a NicheConfig the optimizer may
// adjust: minimums, thresholds, and weights, keyed by name (spec.md §3).
type ParameterVector map[string]float64

// Clone returns an independent copy.
func (p ParameterVector) Clone() ParameterVector {
	out := make(ParameterVector, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

const (
	ParamMinWordCount         = "min_word_count"
	ParamMaxWordCount         = "max_word_count"
	ParamSpecificityThreshold = "specificity_threshold"
	ParamSimilarityThreshold  = "similarity_threshold"
	ParamAcceptanceThreshold  = "acceptance_threshold"
	ParamWeightComplexity     = "weight_complexity"
	ParamWeightSpecificity    = "weight_specificity"
	ParamWeightCompetitive    = "weight_competitive"
	ParamWeightTrend          = "weight_trend"
)

// ToParameterVector extracts the tunable subset of a NicheConfig.
func (c NicheConfig) ToParameterVector() ParameterVector {
	return ParameterVector{
		ParamMinWordCount:         float64(c.MinWordCount),
		ParamMaxWordCount:         float64(c.MaxWordCount),
		ParamSpecificityThreshold: c.SpecificityThreshold,
		ParamSimilarityThreshold:  c.SimilarityThreshold,
		ParamAcceptanceThreshold:  c.AcceptanceThreshold,
		ParamWeightComplexity:     c.ScoreWeights.Complexity,
		ParamWeightSpecificity:    c.ScoreWeights.Specificity,
		ParamWeightCompetitive:    c.ScoreWeights.Competitive,
		ParamWeightTrend:          c.ScoreWeights.Trend,
	}
}

// WithParameterVector returns a copy of c with the tunable fields replaced
// by p, renormalizing weights as spec.md §3's ParameterVector invariant
// requires.
func (c NicheConfig) WithParameterVector(p ParameterVector) (NicheConfig, error) {
	next := c.Clone()
	if v, ok := p[ParamMinWordCount]; ok {
		next.MinWordCount = int(math.Round(v))
	}
	if v, ok := p[ParamMaxWordCount]; ok {
		next.MaxWordCount = int(math.Round(v))
	}
	if v, ok := p[ParamSpecificityThreshold]; ok {
		next.SpecificityThreshold = v
	}
	if v, ok := p[ParamSimilarityThreshold]; ok {
		next.SimilarityThreshold = v
	}
	if v, ok := p[ParamAcceptanceThreshold]; ok {
		next.AcceptanceThreshold = v
	}
	weights := next.ScoreWeights
	if v, ok := p[ParamWeightComplexity]; ok {
		weights.Complexity = v
	}
	if v, ok := p[ParamWeightSpecificity]; ok {
		weights.Specificity = v
	}
	if v, ok := p[ParamWeightCompetitive]; ok {
		weights.Competitive = v
	}
	if v, ok := p[ParamWeightTrend]; ok {
		weights.Trend = v
	}
	normalized, err := weights.Normalized()
	if err != nil {
		return NicheConfig{}, err
	}
	next.ScoreWeights = normalized
	if err := next.Validate(); err != nil {
		return NicheConfig{}, err
	}
	return next, nil
}
