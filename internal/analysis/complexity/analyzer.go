// Package complexity implements ComplexityAnalyzer (spec.md §4.3): four
// sub-signals in [0,1] blended into a composite complexity score and band.
package complexity

import (
	"strings"

	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/text"
)

// Weights are the fixed sub-signal weights spec.md §4.3 documents.
const (
	weightSemanticDensity  = 0.3
	weightTechnicalRatio   = 0.3
	weightMeanLength       = 0.2
	weightVocabularyVariety = 0.2

	meanLengthNormalizer = 15.0
)

// BandThresholds are the default band cut points spec.md §4.3 documents.
func DefaultBandThresholds() domain.BandThresholds {
	return domain.BandThresholds{Medium: 0.3, High: 0.6, VeryHigh: 0.8}
}

// Result is ComplexityAnalyzer's output, including the sub-signals and a
// reproducibility snapshot of the normalized text and configuration used.
type Result struct {
	SemanticDensity    float64
	TechnicalRatio     float64
	NormalizedMeanLen  float64
	VocabularyVariety  float64
	Composite          float64
	Band               domain.ComplexityBand
	SignificantChars   int
	NormalizedText     string
	BandsUsed          domain.BandThresholds
}

// Analyzer computes the four complexity sub-signals and their composite.
type Analyzer struct {
	normalizer      *text.Normalizer
	complexVocab    map[string]struct{}
}

// NewAnalyzer constructs an Analyzer with the given "complex vocabulary" —
// technical/academic/domain-specific terms used for the technical ratio
// sub-signal. Callers typically load this from niche-specific term lists.
func NewAnalyzer(normalizer *text.Normalizer, complexVocab []string) *Analyzer {
	vocab := make(map[string]struct{}, len(complexVocab))
	for _, w := range complexVocab {
		vocab[strings.ToLower(w)] = struct{}{}
	}
	return &Analyzer{normalizer: normalizer, complexVocab: vocab}
}

// Analyze computes complexity for raw text using the given band thresholds
// (callers typically source these from the resolved NicheConfig).
func (a *Analyzer) Analyze(raw string, bands domain.BandThresholds) Result {
	normalized, tokens := a.normalizer.NormalizeAndTokenize(raw)

	result := Result{NormalizedText: normalized, BandsUsed: bands}
	if len(tokens) == 0 {
		result.Band = domain.ComplexityLow
		return result
	}

	unique := make(map[string]struct{}, len(tokens))
	var technicalCount int
	var totalLen int
	for _, tok := range tokens {
		unique[tok] = struct{}{}
		totalLen += len([]rune(tok))
		if _, ok := a.complexVocab[tok]; ok {
			technicalCount++
		}
	}
	result.SignificantChars = totalLen

	semanticDensity := float64(len(unique)) / float64(len(tokens))
	technicalRatio := float64(technicalCount) / float64(len(tokens))
	meanLen := float64(totalLen) / float64(len(tokens))
	normalizedMeanLen := minF(1, meanLen/meanLengthNormalizer)

	result.SemanticDensity = semanticDensity
	result.TechnicalRatio = technicalRatio
	result.NormalizedMeanLen = normalizedMeanLen
	result.VocabularyVariety = semanticDensity

	result.Composite = clamp01(
		weightSemanticDensity*semanticDensity +
			weightTechnicalRatio*technicalRatio +
			weightMeanLength*normalizedMeanLen +
			weightVocabularyVariety*semanticDensity,
	)
	result.Band = bandFor(result.Composite, bands)

	return result
}

func bandFor(score float64, bands domain.BandThresholds) domain.ComplexityBand {
	switch {
	case score < bands.Medium:
		return domain.ComplexityLow
	case score < bands.High:
		return domain.ComplexityMedium
	case score < bands.VeryHigh:
		return domain.ComplexityHigh
	default:
		return domain.ComplexityVeryHigh
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
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
