package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
)

func defaultWeights() domain.ScoreWeights {
	return domain.ScoreWeights{Complexity: 0.25, Specificity: 0.25, Competitive: 0.25, Trend: 0.25}
}

func TestScore_AllSignalsEqualGivesFullConfidence(t *testing.T) {
	result, err := NewScorer().Score(
		Inputs{Complexity: 0.6, Specificity: 0.6, Competitive: 0.6, Trend: 0.6},
		defaultWeights(),
		domain.DefaultCompositeBandThresholds(),
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, result.Composite, 1e-9)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestScore_DispersedSignalsLowerConfidence(t *testing.T) {
	result, err := NewScorer().Score(
		Inputs{Complexity: 0.9, Specificity: 0.1, Competitive: 0.9, Trend: 0.1},
		defaultWeights(),
		domain.DefaultCompositeBandThresholds(),
	)
	require.NoError(t, err)
	assert.Less(t, result.Confidence, 1.0)
	assert.GreaterOrEqual(t, result.Confidence, 0.1)
}

func TestScore_BandBoundaries(t *testing.T) {
	bands := domain.DefaultCompositeBandThresholds()
	assert.Equal(t, domain.BandPoor, bandFor(0.1, bands))
	assert.Equal(t, domain.BandRegular, bandFor(0.50, bands))
	assert.Equal(t, domain.BandGood, bandFor(0.65, bands))
	assert.Equal(t, domain.BandVeryGood, bandFor(0.75, bands))
	assert.Equal(t, domain.BandExcellent, bandFor(0.85, bands))
}

func TestScore_WeightsAppliedSumToOne(t *testing.T) {
	result, err := NewScorer().Score(
		Inputs{Complexity: 0.4, Specificity: 0.4, Competitive: 0.4, Trend: 0.4},
		domain.ScoreWeights{Complexity: 2, Specificity: 1, Competitive: 1, Trend: 0},
		domain.DefaultCompositeBandThresholds(),
	)
	require.NoError(t, err)
	sum := 0.0
	for _, w := range result.WeightsApplied {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScore_ZeroMeanFallsBackToHalfConfidence(t *testing.T) {
	result, err := NewScorer().Score(
		Inputs{Complexity: 0, Specificity: 0, Competitive: 0, Trend: 0},
		defaultWeights(),
		domain.DefaultCompositeBandThresholds(),
	)
	require.NoError(t, err)
	assert.Equal(t, fallbackConfidence, result.Confidence)
}
