package significance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/text"
)

func newAnalyzer() *Analyzer {
	return NewAnalyzer(text.NewNormalizer(text.DefaultOptions()))
}

func TestAnalyze_EmptyInput(t *testing.T) {
	result := newAnalyzer().Analyze("", DefaultConfig())
	assert.Equal(t, 0, result.TotalTokens)
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.SignificantTokens)
}

func TestAnalyze_SingleStopwordToken(t *testing.T) {
	result := newAnalyzer().Analyze("como", DefaultConfig())
	require.Len(t, result.RejectedTokens, 1)
	assert.Equal(t, "stopword", result.RejectedTokens[0].Reason)
	assert.Equal(t, 0.0, result.Score)
}

func TestAnalyze_RejectionOrder(t *testing.T) {
	cfg := DefaultConfig()
	result := newAnalyzer().Analyze("ab 123 backup", cfg)
	reasons := map[string]string{}
	for _, r := range result.RejectedTokens {
		reasons[r.Token] = r.Reason
	}
	assert.Equal(t, "too_short", reasons["ab"])
	assert.Equal(t, "numeric", reasons["123"])
	assert.Contains(t, result.SignificantTokens, "backup")
}

func TestAnalyze_IntentTermsBoostScore(t *testing.T) {
	cfg := DefaultConfig()
	withIntent := newAnalyzer().Analyze("melhor backup windows", cfg)
	withoutIntent := newAnalyzer().Analyze("configurar backup windows", cfg)
	assert.Greater(t, withIntent.Score, withoutIntent.Score)
	assert.LessOrEqual(t, withIntent.Score, 1.0)
	assert.GreaterOrEqual(t, withoutIntent.Score, 0.0)
}

func TestAnalyze_NonAlphaRejected(t *testing.T) {
	result := newAnalyzer().Analyze("backup2x", DefaultConfig())
	var gotNonAlpha bool
	for _, r := range result.RejectedTokens {
		if r.Token == "backup2x" && r.Reason == "non_alpha" {
			gotNonAlpha = true
		}
	}
	assert.True(t, gotNonAlpha)
}
