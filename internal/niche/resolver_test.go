package niche

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/text"
)

func newResolver() *Resolver {
	return NewResolver(DefaultTable(), text.NewNormalizer(text.DefaultOptions()))
}

func TestResolve_HintWins(t *testing.T) {
	cfg, err := newResolver().Resolve("qualquer termo", domain.NicheFinance)
	require.NoError(t, err)
	assert.Equal(t, domain.NicheFinance, cfg.Niche)
}

func TestResolve_DetectsByPositiveTerms(t *testing.T) {
	cfg, err := newResolver().Resolve("como comprar com desconto", "")
	require.NoError(t, err)
	assert.Equal(t, domain.NicheEcommerce, cfg.Niche)
}

func TestResolve_FallsBackToGeneric(t *testing.T) {
	cfg, err := newResolver().Resolve("palavra aleatoria sem sinal", "")
	require.NoError(t, err)
	assert.Equal(t, domain.NicheGeneric, cfg.Niche)
}

func TestAdjust_AppliesAndRenormalizesWeights(t *testing.T) {
	r := newResolver()
	params := domain.ParameterVector{domain.ParamWeightComplexity: 2, domain.ParamWeightSpecificity: 1, domain.ParamWeightCompetitive: 1, domain.ParamWeightTrend: 0}

	updated, err := r.Adjust(domain.NicheGeneric, params)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, updated.ScoreWeights.Sum(), 1e-9)

	reread, err := r.Get(domain.NicheGeneric)
	require.NoError(t, err)
	assert.Equal(t, updated.ScoreWeights, reread.ScoreWeights)
}

func TestAdjust_DoesNotMutatePreviousSnapshot(t *testing.T) {
	r := newResolver()
	before, err := r.Get(domain.NicheGeneric)
	require.NoError(t, err)
	beforeWeights := before.ScoreWeights

	_, err = r.Adjust(domain.NicheGeneric, domain.ParameterVector{domain.ParamWeightComplexity: 0.9})
	require.NoError(t, err)

	assert.Equal(t, beforeWeights, before.ScoreWeights, "snapshot held by caller is untouched by later adjustments")

	after, err := r.Get(domain.NicheGeneric)
	require.NoError(t, err)
	assert.NotEqual(t, beforeWeights, after.ScoreWeights)
}
