// Package competitive implements CompetitiveScorer (spec.md §4.4): blends
// search volume, CPC, and competition into a single competitiveness score.
package competitive

import (
	"math"

	"github.com/keywordscout/keywordscout/internal/domain"
)

// Result is CompetitiveScorer's output.
type Result struct {
	VolumeComponent      float64
	CPCComponent         float64
	CompetitionComponent float64
	Composite            float64
	Band                 domain.CompetitivenessBand
}

// Scorer computes competitiveness from raw keyword economics.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score blends log-normalized volume with linear-capped CPC and inverted
// competition, weighted by the niche's CompetitiveWeights.
func (s *Scorer) Score(kw domain.Keyword, weights domain.CompetitiveWeights, volumeCap, cpcCap, competitionCap float64, bands domain.BandThresholds) (Result, error) {
	normalized, err := weights.Normalized()
	if err != nil {
		return Result{}, err
	}

	volumeComponent := logNormalize(float64(kw.Volume()), volumeCap)
	cpcComponent := linearCap(kw.CPC(), cpcCap)
	competitionRaw := linearCap(kw.Competition(), competitionCap)
	competitionComponent := 1 - competitionRaw

	composite := clamp01(
		normalized.Volume*volumeComponent +
			normalized.CPC*cpcComponent +
			normalized.Competition*competitionComponent,
	)

	return Result{
		VolumeComponent:      volumeComponent,
		CPCComponent:         cpcComponent,
		CompetitionComponent: competitionComponent,
		Composite:            composite,
		Band:                 bandFor(composite, bands),
	}, nil
}

// logNormalize maps a non-negative raw value to [0,1] via log1p scaling
// capped at cap; values at or above cap saturate to 1.
func logNormalize(value, cap float64) float64 {
	if cap <= 0 {
		return 0
	}
	if value <= 0 {
		return 0
	}
	scaled := math.Log1p(value) / math.Log1p(cap)
	return clamp01(scaled)
}

// linearCap maps a non-negative raw value to [0,1] by dividing by cap,
// saturating at 1 for values at or above cap.
func linearCap(value, cap float64) float64 {
	if cap <= 0 {
		return 0
	}
	return clamp01(value / cap)
}

func bandFor(score float64, bands domain.BandThresholds) domain.CompetitivenessBand {
	switch {
	case score < bands.Medium:
		return domain.CompetitivenessLow
	case score < bands.High:
		return domain.CompetitivenessMedium
	case score < bands.VeryHigh:
		return domain.CompetitivenessHigh
	default:
		return domain.CompetitivenessVeryHigh
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
