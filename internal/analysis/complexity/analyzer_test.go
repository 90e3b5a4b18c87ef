package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/text"
)

func newAnalyzer(vocab []string) *Analyzer {
	return NewAnalyzer(text.NewNormalizer(text.DefaultOptions()), vocab)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	result := newAnalyzer(nil).Analyze("", DefaultBandThresholds())
	assert.Equal(t, 0.0, result.Composite)
	assert.Equal(t, domain.ComplexityLow, result.Band)
}

func TestAnalyze_AllUniqueTokensMaxSemanticDensity(t *testing.T) {
	result := newAnalyzer(nil).Analyze("alpha beta gamma", DefaultBandThresholds())
	assert.Equal(t, 1.0, result.SemanticDensity)
	assert.Equal(t, 1.0, result.VocabularyVariety)
}

func TestAnalyze_RepeatedTokenLowersSemanticDensity(t *testing.T) {
	result := newAnalyzer(nil).Analyze("backup backup backup", DefaultBandThresholds())
	assert.InDelta(t, 1.0/3.0, result.SemanticDensity, 1e-9)
}

func TestAnalyze_TechnicalVocabularyRaisesRatio(t *testing.T) {
	vocab := []string{"kubernetes", "orquestracao"}
	withTech := newAnalyzer(vocab).Analyze("kubernetes orquestracao cluster", DefaultBandThresholds())
	withoutTech := newAnalyzer(vocab).Analyze("gato cachorro passaro", DefaultBandThresholds())
	assert.Greater(t, withTech.TechnicalRatio, withoutTech.TechnicalRatio)
	assert.Greater(t, withTech.Composite, withoutTech.Composite)
}

func TestAnalyze_BandThresholds(t *testing.T) {
	bands := domain.BandThresholds{Medium: 0.3, High: 0.6, VeryHigh: 0.8}
	assert.Equal(t, domain.ComplexityLow, bandFor(0.1, bands))
	assert.Equal(t, domain.ComplexityMedium, bandFor(0.3, bands))
	assert.Equal(t, domain.ComplexityHigh, bandFor(0.6, bands))
	assert.Equal(t, domain.ComplexityVeryHigh, bandFor(0.8, bands))
}

func TestAnalyze_CompositeWithinBounds(t *testing.T) {
	result := newAnalyzer([]string{"algoritmo"}).Analyze(
		"algoritmo de otimizacao distribuida para sistemas escalaveis",
		DefaultBandThresholds(),
	)
	assert.GreaterOrEqual(t, result.Composite, 0.0)
	assert.LessOrEqual(t, result.Composite, 1.0)
	assert.NotEmpty(t, result.NormalizedText)
}
