// Package trend implements TrendAnalyzer (spec.md §4.5): classifies a
// keyword's historical volume/CPC series into a direction, score, and
// short-horizon forecast using a signal-voting structure.
package trend

import (
	"math"

	"github.com/keywordscout/keywordscout/internal/domain"
)

// Config tunes direction classification and forecasting.
type Config struct {
	EmergingGrowthThreshold  float64
	RisingGrowthThreshold    float64
	DecliningGrowthThreshold float64
	StableBand               float64
	SeasonalMinSamples       int
	SeasonalCorrelationMin   float64
}

// DefaultConfig matches spec.md §4.5's documented defaults.
func DefaultConfig() Config {
	return Config{
		EmergingGrowthThreshold:  0.5,
		RisingGrowthThreshold:    0.2,
		DecliningGrowthThreshold: -0.15,
		StableBand:               0.05,
		SeasonalMinSamples:       12,
		SeasonalCorrelationMin:   0.7,
	}
}

// Weights are the fixed score-blend weights spec.md §4.5 documents.
const (
	weightGrowth     = 0.4
	weightStability  = 0.2
	weightRecency    = 0.2
	weightConfidence = 0.2
)

// Analyzer classifies trend direction and produces a short-horizon forecast.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze classifies the direction, score, and confidence of a volume
// series, and forecasts one step ahead via a 3-point moving average.
//
// Direction follows spec.md §4.5's seven-step priority order: a
// successful seasonality test wins outright; otherwise growth rate is
// checked against the emerging/rising/declining/stable thresholds in
// that order, with anything left over classified "falling".
func (a *Analyzer) Analyze(series domain.Series) domain.TrendAnalysis {
	if len(series) < 2 {
		return domain.TrendAnalysis{Direction: domain.TrendStable, Score: 0.5, Pattern: "insufficient_samples"}
	}

	volumes := volumesOf(series)
	growth := growthRate(volumes)
	stability := 1 - stdevRatio(volumes)
	recency := recencyWeight(series)

	direction, pattern := a.classifyDirection(volumes, growth, len(series))

	confidence := clamp01(0.5 + 0.5*stability)
	score := clamp01(
		weightGrowth*clamp01(0.5+growth/2) +
			weightStability*clamp01(stability) +
			weightRecency*clamp01(recency) +
			weightConfidence*confidence,
	)

	return domain.TrendAnalysis{
		Direction:  direction,
		Score:      score,
		Pattern:    pattern,
		Confidence: confidence,
		Forecast:   a.forecast(series),
	}
}

// classifyDirection implements spec.md §4.5's priority ladder: seasonal
// (≥12 samples, split-half correlation > threshold), then emerging,
// rising, declining, stable by growth-rate threshold, else falling.
func (a *Analyzer) classifyDirection(volumes []float64, growth float64, n int) (domain.TrendDirection, string) {
	if n >= a.cfg.SeasonalMinSamples {
		if corr := splitHalfCorrelation(volumes); corr > a.cfg.SeasonalCorrelationMin {
			return domain.TrendSeasonal, "seasonal_split_half_correlation"
		}
	}
	switch {
	case growth >= a.cfg.EmergingGrowthThreshold:
		return domain.TrendEmerging, "strong_growth"
	case growth >= a.cfg.RisingGrowthThreshold:
		return domain.TrendRising, "positive_growth"
	case growth <= a.cfg.DecliningGrowthThreshold:
		return domain.TrendDeclining, "negative_growth"
	case math.Abs(growth) <= a.cfg.StableBand:
		return domain.TrendStable, "flat_growth"
	default:
		return domain.TrendFalling, "mild_growth"
	}
}

// forecast produces a simple moving-average-3 one-step-ahead projection
// with a symmetric confidence interval derived from recent dispersion.
// Emits no forecast below 3 samples (spec.md §4.5/§8).
func (a *Analyzer) forecast(series domain.Series) *domain.Forecast {
	if len(series) < 3 {
		return nil
	}
	window := series[len(series)-3:]

	var volSum, cpcSum float64
	for _, s := range window {
		volSum += float64(s.Volume)
		cpcSum += s.CPC
	}
	n := float64(len(window))
	meanVol := volSum / n
	meanCPC := cpcSum / n

	var variance float64
	for _, s := range window {
		d := float64(s.Volume) - meanVol
		variance += d * d
	}
	variance /= n
	spread := math.Sqrt(variance)

	return &domain.Forecast{
		Volume:     meanVol,
		CPC:        meanCPC,
		CILow:      math.Max(0, meanVol-spread),
		CIHigh:     meanVol + spread,
		Confidence: 0.8,
		Method:     "moving_average_3",
	}
}

func volumesOf(series domain.Series) []float64 {
	out := make([]float64, len(series))
	for i, s := range series {
		out[i] = float64(s.Volume)
	}
	return out
}

// growthRate implements spec.md §4.5 step 2: (v_last - v_first) /
// max(v_first, 1), so an all-zero series reports growth 0 rather than NaN.
func growthRate(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	first := values[0]
	last := values[len(values)-1]
	denom := first
	if denom < 1 {
		denom = 1
	}
	return (last - first) / denom
}

func stdevRatio(values []float64) float64 {
	mean := meanOf(values)
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	ratio := math.Sqrt(variance) / mean
	if ratio > 1 {
		return 1
	}
	return ratio
}

// recencyWeight favors series whose most recent value exceeds its mean.
func recencyWeight(series domain.Series) float64 {
	volumes := volumesOf(series)
	mean := meanOf(volumes)
	if mean == 0 {
		return 0.5
	}
	last := volumes[len(volumes)-1]
	return clamp01(0.5 + (last-mean)/(2*mean))
}

// splitHalfCorrelation computes the Pearson correlation between the first
// and second halves of the series (truncated to equal length) — spec.md
// §4.5's seasonality test.
func splitHalfCorrelation(values []float64) float64 {
	mid := len(values) / 2
	if mid < 2 {
		return 0
	}
	a := values[:mid]
	b := values[len(values)-mid:]

	meanA := meanOf(a)
	meanB := meanOf(b)

	var num, denomA, denomB float64
	for i := 0; i < mid; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		num += da * db
		denomA += da * da
		denomB += db * db
	}
	if denomA == 0 || denomB == 0 {
		return 0
	}
	return num / math.Sqrt(denomA*denomB)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
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
