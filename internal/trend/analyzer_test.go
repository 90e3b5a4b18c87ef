package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
)

func seriesOf(t *testing.T, volumes ...int) domain.Series {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]domain.TrendSample, len(volumes))
	for i, v := range volumes {
		samples[i] = domain.TrendSample{At: base.AddDate(0, 0, i), Volume: v, CPC: 1.0, Competition: 0.5}
	}
	series, err := domain.NewSeries(samples)
	require.NoError(t, err)
	return series
}

func TestAnalyze_EmptySeriesIsStable(t *testing.T) {
	result := NewAnalyzer(DefaultConfig()).Analyze(nil)
	assert.Equal(t, domain.TrendStable, result.Direction)
	assert.Equal(t, 0.5, result.Score)
	assert.Nil(t, result.Forecast)
}

func TestAnalyze_SingleSampleIsStable(t *testing.T) {
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 100))
	assert.Equal(t, domain.TrendStable, result.Direction)
	assert.Equal(t, 0.5, result.Score)
	assert.Nil(t, result.Forecast)
}

func TestAnalyze_MildGrowthIsFalling(t *testing.T) {
	// growth = (110-100)/100 = 0.1: above the stable band but below the
	// rising threshold, so the leftover "falling" bucket of spec.md §4.5
	// step 7 applies.
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 100, 110))
	assert.Equal(t, domain.TrendFalling, result.Direction)
}

func TestAnalyze_VeryStrongGrowthIsEmerging(t *testing.T) {
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 100, 120, 140, 160, 180, 200, 220, 240, 260, 280))
	assert.Equal(t, domain.TrendEmerging, result.Direction)
	assert.GreaterOrEqual(t, result.Score, 0.7)
	require.NotNil(t, result.Forecast)
	assert.GreaterOrEqual(t, result.Forecast.Volume, 250.0)
	assert.LessOrEqual(t, result.Forecast.Volume, 290.0)
}

func TestAnalyze_ModerateGrowthIsRising(t *testing.T) {
	// growth = (120-100)/100 = 0.2, the rising threshold exactly.
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 100, 104, 108, 112, 116, 120))
	assert.Equal(t, domain.TrendRising, result.Direction)
	assert.Greater(t, result.Score, 0.5)
}

func TestAnalyze_StrongDeclineIsDeclining(t *testing.T) {
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 260, 200, 160, 130, 110, 100))
	assert.Equal(t, domain.TrendDeclining, result.Direction)
}

func TestAnalyze_FlatSeriesIsStable(t *testing.T) {
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 100, 101, 99, 100, 101, 100))
	assert.Equal(t, domain.TrendStable, result.Direction)
}

func TestAnalyze_ZeroVolumeSeriesHasZeroGrowth(t *testing.T) {
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 0, 0, 0))
	assert.Equal(t, domain.TrendStable, result.Direction)
	assert.False(t, isNaN(result.Score))
}

func TestAnalyze_ForecastUsesLastThreeSamples(t *testing.T) {
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 100, 200, 300, 400, 500, 600))
	require.NotNil(t, result.Forecast)
	assert.InDelta(t, 500.0, result.Forecast.Volume, 1e-9)
	assert.Equal(t, "moving_average_3", result.Forecast.Method)
}

func TestAnalyze_TwoSamplesNoForecast(t *testing.T) {
	result := NewAnalyzer(DefaultConfig()).Analyze(seriesOf(t, 100, 110))
	assert.Nil(t, result.Forecast)
}

func isNaN(v float64) bool { return v != v }
