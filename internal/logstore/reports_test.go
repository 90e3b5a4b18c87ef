package logstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
)

func TestQualityReport_CountsOutcomesAndApprovalRate(t *testing.T) {
	l := newTestLogger(t)
	now := time.Now()

	require.NoError(t, l.Append(domain.LogEntry{At: now, Kind: domain.LogValidation, Outcome: "approved", Payload: map[string]interface{}{"niche": "ecommerce"}}))
	require.NoError(t, l.Append(domain.LogEntry{At: now, Kind: domain.LogValidation, Outcome: "rejected", Payload: map[string]interface{}{"niche": "ecommerce"}}))

	report, err := l.QualityReport(context.Background(), QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Approved)
	assert.Equal(t, 1, report.Rejected)
	assert.InDelta(t, 0.5, report.ApprovalRate, 1e-9)
	assert.Equal(t, 2, report.ByNiche[domain.NicheEcommerce])
}

func TestTrainingRows_ExtractsFeaturesAndTargetForNiche(t *testing.T) {
	l := newTestLogger(t)
	now := time.Now()

	require.NoError(t, l.Append(domain.LogEntry{At: now, Kind: domain.LogValidation, Payload: map[string]interface{}{
		"niche":      "technology",
		"score":      0.8,
		"parameters": map[string]interface{}{"weight_complexity": 0.3},
	}}))
	require.NoError(t, l.Append(domain.LogEntry{At: now, Kind: domain.LogValidation, Payload: map[string]interface{}{
		"niche":      "finance",
		"score":      0.9,
		"parameters": map[string]interface{}{"weight_complexity": 0.5},
	}}))

	rows, err := l.TrainingRows(context.Background(), domain.NicheTechnology, 30)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.8, rows[0].Target, 1e-9)
	assert.InDelta(t, 0.3, rows[0].Features["weight_complexity"], 1e-9)
}

func TestRecentSuccessRate_DefaultsToHalfBelowMinimumSamples(t *testing.T) {
	l := newTestLogger(t)
	rate, err := l.RecentSuccessRate(context.Background(), domain.NicheGeneric)
	require.NoError(t, err)
	assert.Equal(t, 0.5, rate)
}

func TestRecordAdjustmentAndLastApplied_RoundTrips(t *testing.T) {
	l := newTestLogger(t)
	rec := domain.AdjustmentRecord{
		At:                  time.Now(),
		Niche:               domain.NicheGeneric,
		PreviousPerformance: 0.7,
		NewPerformance:      0.75,
		Status:              domain.AdjustmentApplied,
	}
	require.NoError(t, l.RecordAdjustment(context.Background(), rec))

	last, ok, err := l.LastApplied(context.Background(), domain.NicheGeneric)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.7, last.PreviousPerformance, 1e-9)
	assert.InDelta(t, 0.75, last.NewPerformance, 1e-9)
}

func TestRecentSuccessRate_ComputesFromLastTenApplied(t *testing.T) {
	l := newTestLogger(t)
	for i := 0; i < 6; i++ {
		perf := 0.7
		newPerf := 0.6
		if i%2 == 0 {
			newPerf = 0.8
		}
		require.NoError(t, l.RecordAdjustment(context.Background(), domain.AdjustmentRecord{
			At: time.Now(), Niche: domain.NicheGeneric, PreviousPerformance: perf, NewPerformance: newPerf, Status: domain.AdjustmentApplied,
		}))
	}

	rate, err := l.RecentSuccessRate(context.Background(), domain.NicheGeneric)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, rate, 1e-9)
}
