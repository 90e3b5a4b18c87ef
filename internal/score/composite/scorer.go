// Package composite implements CompositeScorer (spec.md §4.6): blends the
// complexity, specificity, competitive, and trend signals into the final
// composite score, band, and confidence.
package composite

import (
	"math"

	"github.com/keywordscout/keywordscout/internal/domain"
)

// Inputs collects the four upstream signals CompositeScorer blends.
type Inputs struct {
	Complexity  float64
	Specificity float64
	Competitive float64
	Trend       float64
}

// Result is CompositeScorer's output.
type Result struct {
	Composite      float64
	Band           domain.CompositeBand
	Confidence     float64
	WeightsApplied map[string]float64
}

const (
	keyComplexity  = "complexity"
	keySpecificity = "specificity"
	keyCompetitive = "competitive"
	keyTrend       = "trend"

	minConfidence = 0.1
	fallbackConfidence = 0.5
)

// Scorer computes the final composite score from weighted sub-signals.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score blends inputs using weights, normalizing weights first (spec.md's
// documented default order: "normalize weights, then blend").
func (s *Scorer) Score(in Inputs, weights domain.ScoreWeights, bands domain.CompositeBandThresholds) (Result, error) {
	normalized, err := weights.Normalized()
	if err != nil {
		return Result{}, err
	}

	values := []float64{in.Complexity, in.Specificity, in.Competitive, in.Trend}

	composite := clamp01(
		normalized.Complexity*in.Complexity +
			normalized.Specificity*in.Specificity +
			normalized.Competitive*in.Competitive +
			normalized.Trend*in.Trend,
	)

	confidence := confidenceFromDispersion(values)

	return Result{
		Composite:  composite,
		Band:       bandFor(composite, bands),
		Confidence: confidence,
		WeightsApplied: map[string]float64{
			keyComplexity:  normalized.Complexity,
			keySpecificity: normalized.Specificity,
			keyCompetitive: normalized.Competitive,
			keyTrend:       normalized.Trend,
		},
	}, nil
}

// confidenceFromDispersion derives confidence from 1 - stdev/mean of the
// four sub-signals, clamped to [minConfidence, 1], falling back to
// fallbackConfidence when the mean is zero (undefined dispersion ratio).
func confidenceFromDispersion(values []float64) float64 {
	mean := meanOf(values)
	if mean == 0 {
		return fallbackConfidence
	}

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	stdev := math.Sqrt(variance)

	confidence := 1 - stdev/mean
	if confidence < minConfidence {
		return minConfidence
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func bandFor(score float64, bands domain.CompositeBandThresholds) domain.CompositeBand {
	switch {
	case score < bands.Regular:
		return domain.BandPoor
	case score < bands.Good:
		return domain.BandRegular
	case score < bands.VeryGood:
		return domain.BandGood
	case score < bands.Excellent:
		return domain.BandVeryGood
	default:
		return domain.BandExcellent
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
