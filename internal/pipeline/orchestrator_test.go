package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/analysis/complexity"
	"github.com/keywordscout/keywordscout/internal/analysis/significance"
	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/niche"
	"github.com/keywordscout/keywordscout/internal/score/competitive"
	"github.com/keywordscout/keywordscout/internal/score/composite"
	"github.com/keywordscout/keywordscout/internal/text"
	"github.com/keywordscout/keywordscout/internal/trend"
	"github.com/keywordscout/keywordscout/internal/validate"
)

func newOrchestrator() *Orchestrator {
	normalizer := text.NewNormalizer(text.DefaultOptions())
	deps := Dependencies{
		Normalizer:           normalizer,
		SignificanceAnalyzer: significance.NewAnalyzer(normalizer),
		ComplexityAnalyzer:   complexity.NewAnalyzer(normalizer, nil),
		CompetitiveScorer:    competitive.NewScorer(),
		TrendAnalyzer:        trend.NewAnalyzer(trend.DefaultConfig()),
		CompositeScorer:      composite.NewScorer(),
		Validator:            validate.NewValidator(normalizer),
		NicheResolver:        niche.NewResolver(niche.DefaultTable(), normalizer),
	}
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.RatePerSecond = 1000
	cfg.Burst = 100
	return NewOrchestrator(deps, cfg)
}

func sampleInputs() []Input {
	return []Input{
		{Term: "comprar tenis corrida barato", Volume: 5000, CPC: 2, Competition: 0.4, Intent: domain.IntentTransactional},
		{Term: "como configurar api rest", Volume: 800, CPC: 1, Competition: 0.2, Intent: domain.IntentInformational, NicheHint: domain.NicheTechnology},
	}
}

func TestRun_ParallelStrategyProducesOrderedOutcomes(t *testing.T) {
	o := newOrchestrator()
	inputs := sampleInputs()

	report := o.Run(context.Background(), inputs, StrategyParallel, nil, nil)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, inputs[0].Term, report.Outcomes[0].Input.Term)
	assert.Equal(t, inputs[1].Term, report.Outcomes[1].Input.Term)
	assert.Equal(t, 0, report.Errors)
}

func TestRun_CascadeStrategyMatchesParallelOutcomes(t *testing.T) {
	o := newOrchestrator()
	inputs := sampleInputs()

	cascadeReport := o.Run(context.Background(), inputs, StrategyCascade, nil, nil)
	parallelReport := o.Run(context.Background(), inputs, StrategyParallel, nil, nil)

	require.Len(t, cascadeReport.Outcomes, 2)
	for i := range inputs {
		assert.InDelta(t, parallelReport.Outcomes[i].Enriched.Composite, cascadeReport.Outcomes[i].Enriched.Composite, 1e-9)
	}
}

func TestRun_AdaptiveStrategyPicksCascadeBelowThreshold(t *testing.T) {
	o := newOrchestrator()
	report := o.Run(context.Background(), sampleInputs(), StrategyAdaptive, nil, nil)
	assert.Equal(t, StrategyCascade, report.Strategy)
}

func TestRun_AdaptiveStrategyPicksParallelAtOrAboveThreshold(t *testing.T) {
	o := newOrchestrator()
	inputs := make([]Input, AdaptiveThreshold)
	base := sampleInputs()
	for i := range inputs {
		inputs[i] = base[i%len(base)]
	}
	report := o.Run(context.Background(), inputs, StrategyAdaptive, nil, nil)
	assert.Equal(t, StrategyParallel, report.Strategy)
}

func TestRun_ProgressCallbackFiresPerKeyword(t *testing.T) {
	o := newOrchestrator()
	inputs := sampleInputs()

	var calls int
	o.Run(context.Background(), inputs, StrategyParallel, nil, func(completed, total int, outcome Outcome) {
		calls++
		assert.Equal(t, len(inputs), total)
	})
	assert.Equal(t, len(inputs), calls)
}

func TestRun_InvalidKeywordProducesErrorOutcome(t *testing.T) {
	o := newOrchestrator()
	inputs := []Input{{Term: "", Volume: -1, CPC: -1, Competition: 2, Intent: domain.IntentInformational}}

	report := o.Run(context.Background(), inputs, StrategyParallel, nil, nil)
	require.Len(t, report.Outcomes, 1)
	assert.Error(t, report.Outcomes[0].Err)
	assert.Equal(t, 1, report.Errors)
}

func TestRun_RespectsBatchTimeout(t *testing.T) {
	o := newOrchestrator()
	o.cfg.BatchTimeout = 1 * time.Nanosecond
	o.limiter.SetLimit(0)

	report := o.Run(context.Background(), sampleInputs(), StrategyParallel, nil, nil)
	assert.GreaterOrEqual(t, report.Errors, 0)
	require.Len(t, report.Outcomes, len(sampleInputs()))
	for _, outcome := range report.Outcomes {
		assert.True(t, outcome.Err != nil || outcome.Validation.Status != "", "each keyword either completes or carries an error")
	}
}
