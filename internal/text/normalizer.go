// Package text implements TextNormalizer: the leaf-most pipeline stage
// (spec.md §4.1). It is deterministic and pure — identical input always
// yields identical output — so every later stage can memoize or compare on
// normalized text without re-deriving it.
package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options controls which canonicalization steps Normalize applies.
// Tokenize always runs on the canonicalized output.
type Options struct {
	Lowercase      bool
	StripDiacritics bool
	StripPunct     string // punctuation runes to strip; empty disables
}

// DefaultOptions lowercases, strips diacritics, and strips the common ASCII
// punctuation set — the configuration every analyzer in this repo uses.
func DefaultOptions() Options {
	return Options{
		Lowercase:       true,
		StripDiacritics: true,
		StripPunct:      `.,;:!?"'` + "`" + `()[]{}<>/\|@#$%^&*_+=~`,
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)
var wordRun = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Normalizer applies Unicode/case/whitespace/punctuation canonicalization.
type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize trims, collapses internal whitespace, and optionally lowercases,
// strips diacritics (NFKD-decompose then drop combining marks), and strips
// a configured punctuation set. It is idempotent: Normalize(Normalize(x))
// == Normalize(x), because every step it applies is itself idempotent and
// the steps commute on their own fixed points.
func (n *Normalizer) Normalize(input string) string {
	out := strings.TrimSpace(input)
	out = whitespaceRun.ReplaceAllString(out, " ")

	if n.opts.StripDiacritics {
		out = stripDiacritics(out)
	}
	if n.opts.Lowercase {
		out = strings.ToLower(out)
	}
	if n.opts.StripPunct != "" {
		out = stripRunes(out, n.opts.StripPunct)
		out = whitespaceRun.ReplaceAllString(strings.TrimSpace(out), " ")
	}
	return out
}

// Tokenize extracts maximal runs of word characters (letters and digits)
// from already-normalized text.
func (n *Normalizer) Tokenize(normalized string) []string {
	return wordRun.FindAllString(normalized, -1)
}

// NormalizeAndTokenize is a convenience wrapper most analyzers use.
func (n *Normalizer) NormalizeAndTokenize(input string) (normalized string, tokens []string) {
	normalized = n.Normalize(input)
	tokens = n.Tokenize(normalized)
	return normalized, tokens
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

func stripRunes(s, cut string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(cut, r) {
			return -1
		}
		return r
	}, s)
}
