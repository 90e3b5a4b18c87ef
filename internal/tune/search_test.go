package tune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/niche"
)

func TestSearch_ImprovesOrMatchesInitialValue(t *testing.T) {
	cfg := niche.DefaultTable().Niches[domain.NicheGeneric]

	rows := []Row{
		{Features: map[string]float64{domain.ParamWeightComplexity: 0.6, domain.ParamWeightSpecificity: 0.25, domain.ParamWeightCompetitive: 0.25, domain.ParamWeightTrend: 0.25}, Target: 0.9},
		{Features: map[string]float64{domain.ParamWeightComplexity: 0.25, domain.ParamWeightSpecificity: 0.25, domain.ParamWeightCompetitive: 0.25, domain.ParamWeightTrend: 0.25}, Target: 0.5},
		{Features: map[string]float64{domain.ParamWeightComplexity: 0.1, domain.ParamWeightSpecificity: 0.25, domain.ParamWeightCompetitive: 0.25, domain.ParamWeightTrend: 0.25}, Target: 0.2},
	}
	forest := Fit(rows, ForestConfig{Trees: 10, SampleSeed: 3})

	result := Search(cfg, forest, SearchConfig{MaxEvaluations: 50, InitialStepSize: 0.05, BacktrackingRatio: 0.5, MinStepSize: 1e-4, Tolerance: 1e-5})

	assert.GreaterOrEqual(t, result.ProposedValue, result.InitialValue)
	require.NotNil(t, result.Proposed)

	_, err := cfg.WithParameterVector(result.Proposed)
	assert.NoError(t, err)
}
