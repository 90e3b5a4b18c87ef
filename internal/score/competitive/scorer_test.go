package competitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
)

func defaultWeights() domain.CompetitiveWeights {
	return domain.CompetitiveWeights{Volume: 0.5, CPC: 0.25, Competition: 0.25}
}

func defaultBands() domain.BandThresholds {
	return domain.BandThresholds{Medium: 0.3, High: 0.6, VeryHigh: 0.8}
}

func TestScore_ZeroVolumeLowComposite(t *testing.T) {
	kw, err := domain.NewKeyword("backup tool", 0, 0, 0, domain.IntentInformational)
	require.NoError(t, err)

	result, err := NewScorer().Score(kw, defaultWeights(), 100000, 10, 1, defaultBands())
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.VolumeComponent)
	assert.Equal(t, domain.CompetitivenessLow, result.Band)
}

func TestScore_HighVolumeLowCompetitionScoresHigher(t *testing.T) {
	strong, err := domain.NewKeyword("broad term", 50000, 5, 0.2, domain.IntentInformational)
	require.NoError(t, err)
	weak, err := domain.NewKeyword("niche term", 100, 1, 0.9, domain.IntentInformational)
	require.NoError(t, err)

	scorer := NewScorer()
	strongResult, err := scorer.Score(strong, defaultWeights(), 100000, 10, 1, defaultBands())
	require.NoError(t, err)
	weakResult, err := scorer.Score(weak, defaultWeights(), 100000, 10, 1, defaultBands())
	require.NoError(t, err)

	assert.Greater(t, strongResult.Composite, weakResult.Composite)
}

func TestScore_CompositeWithinBounds(t *testing.T) {
	kw, err := domain.NewKeyword("some term", 1000000, 50, 1, domain.IntentTransactional)
	require.NoError(t, err)

	result, err := NewScorer().Score(kw, defaultWeights(), 100000, 10, 1, defaultBands())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Composite, 0.0)
	assert.LessOrEqual(t, result.Composite, 1.0)
}

func TestScore_InvalidWeightsReturnsError(t *testing.T) {
	kw, err := domain.NewKeyword("x", 10, 1, 0.5, domain.IntentInformational)
	require.NoError(t, err)

	_, err = NewScorer().Score(kw, domain.CompetitiveWeights{Volume: -1, CPC: 0, Competition: 0}, 1000, 10, 1, defaultBands())
	assert.Error(t, err)
}
