package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/niche"
	"github.com/keywordscout/keywordscout/internal/text"
)

func newValidator() *Validator {
	return NewValidator(text.NewNormalizer(text.DefaultOptions()))
}

func genericConfig(t *testing.T) domain.NicheConfig {
	t.Helper()
	return niche.DefaultTable().Niches[domain.NicheGeneric]
}

func strongKeyword(t *testing.T) domain.EnrichedKeyword {
	t.Helper()
	kw, err := domain.NewKeyword("comprar tenis corrida barato", 5000, 2, 0.4, domain.IntentTransactional)
	require.NoError(t, err)
	return domain.EnrichedKeyword{
		Keyword:      kw,
		Significance: 0.6,
		Composite:    0.8,
		Complexity:   0.6,
		Competitive:  0.7,
		Trend:        0.6,
		Confidence:   0.9,
	}
}

func TestValidate_StrongKeywordApproved(t *testing.T) {
	cfg := genericConfig(t)
	result := newValidator().Validate(strongKeyword(t), cfg, "trace-1")
	assert.Equal(t, domain.StatusApproved, result.Status)
}

func TestValidate_LowCompositeRejectsOtherwiseStrongKeyword(t *testing.T) {
	cfg := genericConfig(t)
	kw := strongKeyword(t)
	kw.Composite = 0.05

	result := newValidator().Validate(kw, cfg, "trace-2")
	assert.Equal(t, domain.StatusRejected, result.Status)
}

func TestValidate_BasicFormatRejectsOutOfRangeWordCount(t *testing.T) {
	cfg := genericConfig(t)
	kw, err := domain.NewKeyword("a", 100, 1, 0.3, domain.IntentInformational)
	require.NoError(t, err)
	enriched := domain.EnrichedKeyword{Keyword: kw, Composite: 0.9, Complexity: 0.9, Competitive: 0.9, Trend: 0.9, Confidence: 0.9}

	result := newValidator().Validate(enriched, cfg, "trace-3")
	var formatCriterion domain.ValidationCriterion
	for _, c := range result.Criteria {
		if c.Name == criterionBasicFormat {
			formatCriterion = c
		}
	}
	assert.Equal(t, domain.StatusRejected, formatCriterion.Status)
}

func TestJaccard_IdenticalSetsIsOne(t *testing.T) {
	assert.Equal(t, 1.0, jaccard([]string{"a", "b"}, []string{"a", "b"}))
}

func TestJaccard_DisjointSetsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, jaccard([]string{"a"}, []string{"b"}))
}
