package tune

import (
	"math"

	"github.com/keywordscout/keywordscout/internal/domain"
)

// SearchConfig tunes the coordinate-descent local search.
type SearchConfig struct {
	MaxEvaluations    int
	InitialStepSize   float64
	BacktrackingRatio float64
	MinStepSize       float64
	Tolerance         float64
}

// DefaultSearchConfig matches spec.md §4.10's documented defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MaxEvaluations:    200,
		InitialStepSize:   0.05,
		BacktrackingRatio: 0.5,
		MinStepSize:       1e-4,
		Tolerance:         1e-4,
	}
}

// SearchResult is the outcome of one coordinate-descent run.
type SearchResult struct {
	Proposed     domain.ParameterVector
	ProposedValue float64
	Initial      domain.ParameterVector
	InitialValue float64
	Evaluations  int
	Converged    bool
}

// tunableKeys lists the ParameterVector keys the search perturbs; order
// fixes the coordinate cycle.
var tunableKeys = []string{
	domain.ParamWeightComplexity,
	domain.ParamWeightSpecificity,
	domain.ParamWeightCompetitive,
	domain.ParamWeightTrend,
}

// Search performs constrained coordinate descent over a ParameterVector,
// using model to score each candidate and clamp to accept only moves the
// niche config still considers valid (weights renormalize and validate).
func Search(initial domain.NicheConfig, model *Forest, cfg SearchConfig) SearchResult {
	current := initial.ToParameterVector()
	currentValue := model.Predict(current)

	best := current.Clone()
	bestValue := currentValue
	stepSize := cfg.InitialStepSize
	evaluations := 1
	lastBest := bestValue

	for evaluations < cfg.MaxEvaluations && stepSize >= cfg.MinStepSize {
		improved := false

		for _, key := range tunableKeys {
			if evaluations >= cfg.MaxEvaluations {
				break
			}
			for _, direction := range []float64{1, -1} {
				candidate := best.Clone()
				candidate[key] += direction * stepSize

				if _, err := initial.WithParameterVector(candidate); err != nil {
					continue
				}

				value := model.Predict(candidate)
				evaluations++

				if value > bestValue {
					best = candidate
					bestValue = value
					improved = true
					break
				}
			}
			if improved {
				break
			}
		}

		if improved {
			stepSize = cfg.InitialStepSize
		} else {
			stepSize *= cfg.BacktrackingRatio
		}

		if math.Abs(bestValue-lastBest) < cfg.Tolerance && evaluations > 1 {
			break
		}
		lastBest = bestValue
	}

	return SearchResult{
		Proposed:      best,
		ProposedValue: bestValue,
		Initial:       current,
		InitialValue:  currentValue,
		Evaluations:   evaluations,
		Converged:     stepSize < cfg.MinStepSize || evaluations < cfg.MaxEvaluations,
	}
}
