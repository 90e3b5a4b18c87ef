// Package significance implements SignificanceAnalyzer (spec.md §4.2):
// tokenize, drop stopwords/short/numeric tokens, and score by presence of
// "intent" vocabulary. Pure and total — it never raises, returning 0 on
// empty input.
package significance

import (
	"regexp"
	"unicode/utf8"

	"github.com/keywordscout/keywordscout/internal/text"
)

var numericPattern = regexp.MustCompile(`^\d+$`)
var nonAlphaPattern = regexp.MustCompile(`[^\p{L}]`)

// Config tunes the rejection rules of spec.md §4.2.
type Config struct {
	Locale   Locale
	MinChars int
}

// DefaultConfig matches spec.md §4.2's documented defaults.
func DefaultConfig() Config {
	return Config{Locale: DefaultLocale, MinChars: 3}
}

// RejectedToken records a dropped token and the first-match-wins reason.
type RejectedToken struct {
	Token  string
	Reason string
}

// Result is SignificanceAnalyzer's full contract output (spec.md §4.2).
type Result struct {
	SignificantTokens       []string
	TotalTokens             int
	UniqueTokens            int
	UniqueSignificantTokens int
	Score                   float64
	RejectedTokens          []RejectedToken
}

// Analyzer scores raw text for lexical significance.
type Analyzer struct {
	normalizer *text.Normalizer
}

func NewAnalyzer(normalizer *text.Normalizer) *Analyzer {
	return &Analyzer{normalizer: normalizer}
}

// Analyze applies the rejection rules in order (first match wins) and
// scores the surviving tokens against the configured locale's intent
// vocabulary.
func (a *Analyzer) Analyze(raw string, cfg Config) Result {
	if cfg.MinChars <= 0 {
		cfg.MinChars = DefaultConfig().MinChars
	}
	v := vocabFor(cfg.Locale)

	_, tokens := a.normalizer.NormalizeAndTokenize(raw)

	result := Result{TotalTokens: len(tokens)}
	if len(tokens) == 0 {
		return result
	}

	seenAll := make(map[string]struct{})
	seenSignificant := make(map[string]struct{})
	var significantCount int

	for _, tok := range tokens {
		seenAll[tok] = struct{}{}

		switch {
		case utf8.RuneCountInString(tok) < cfg.MinChars:
			result.RejectedTokens = append(result.RejectedTokens, RejectedToken{tok, "too_short"})
			continue
		}
		if _, isStop := v.stopwords[tok]; isStop {
			result.RejectedTokens = append(result.RejectedTokens, RejectedToken{tok, "stopword"})
			continue
		}
		if numericPattern.MatchString(tok) {
			result.RejectedTokens = append(result.RejectedTokens, RejectedToken{tok, "numeric"})
			continue
		}
		if nonAlphaPattern.MatchString(tok) {
			result.RejectedTokens = append(result.RejectedTokens, RejectedToken{tok, "non_alpha"})
			continue
		}

		result.SignificantTokens = append(result.SignificantTokens, tok)
		seenSignificant[tok] = struct{}{}
		if _, isIntent := v.intent[tok]; isIntent {
			significantCount++
		}
	}

	result.UniqueTokens = len(seenAll)
	result.UniqueSignificantTokens = len(seenSignificant)

	sigCount := float64(len(result.SignificantTokens))
	denom := sigCount
	if denom == 0 {
		denom = 1
	}
	score := 0.7*(sigCount/denom) + 0.3*(float64(significantCount)/denom)
	if sigCount == 0 {
		score = 0
	}
	result.Score = clamp01(score)

	return result
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
