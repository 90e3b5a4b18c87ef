// Package pipeline implements the Orchestrator (spec.md §4.9): sequences
// the analysis/scoring/validation stages over a batch of keywords under a
// bounded worker pool, with a choice of cascade, parallel, or adaptive
// execution strategies.
package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/keywordscout/keywordscout/internal/analysis/complexity"
	"github.com/keywordscout/keywordscout/internal/analysis/significance"
	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/niche"
	"github.com/keywordscout/keywordscout/internal/score/competitive"
	"github.com/keywordscout/keywordscout/internal/score/composite"
	"github.com/keywordscout/keywordscout/internal/text"
	"github.com/keywordscout/keywordscout/internal/trend"
	"github.com/keywordscout/keywordscout/internal/validate"
)

// Strategy selects how the Orchestrator sequences stages over a batch.
type Strategy string

const (
	// StrategyCascade runs every keyword through the full stage chain
	// stage-by-stage across the whole batch (all significance scores are
	// computed before any complexity score starts, and so on).
	// StrategyAdaptive picks it for batches below AdaptiveThreshold.
	StrategyCascade Strategy = "cascade"

	// StrategyParallel runs each keyword's independent stages
	// (significance, complexity, competitive, trend) concurrently, then
	// its dependent stages (composite, validate) in order. Keywords
	// themselves are also processed concurrently, bounded by the worker
	// pool. StrategyAdaptive picks it for batches at or above
	// AdaptiveThreshold.
	StrategyParallel Strategy = "parallel"

	// StrategyAdaptive picks cascade for batches below AdaptiveThreshold
	// (scheduling overhead would dominate), parallel at or above it.
	StrategyAdaptive Strategy = "adaptive"
)

// AdaptiveThreshold is the batch size at which StrategyAdaptive switches
// from cascade to parallel execution.
const AdaptiveThreshold = 50

// Input is one keyword's raw economics entering the pipeline.
type Input struct {
	Term        string
	Volume      int
	CPC         float64
	Competition float64
	Intent      domain.Intent
	NicheHint   domain.Niche
}

// Outcome is one keyword's full pipeline result.
type Outcome struct {
	Input      Input
	Enriched   domain.EnrichedKeyword
	Validation domain.ValidationResult
	Err        error
}

// StageDurations accumulates total wall-clock time spent in each named
// stage across a batch, for reporting.
type StageDurations map[string]time.Duration

// Report aggregates a full Run's outcomes and timing.
type Report struct {
	Strategy      Strategy
	Outcomes      []Outcome
	StageDurations StageDurations
	TotalDuration time.Duration
	Errors        int
}

// ProgressFunc is invoked after each keyword completes, in completion
// order (not necessarily input order) — callers needing ordered results
// should read Report.Outcomes instead.
type ProgressFunc func(completed, total int, outcome Outcome)

// Config tunes pool concurrency and per-batch timeouts.
type Config struct {
	Workers       int
	RatePerSecond float64
	Burst         int
	BatchTimeout  time.Duration
}

// DefaultConfig matches spec.md §4.9's documented defaults.
func DefaultConfig() Config {
	return Config{Workers: 8, RatePerSecond: 50, Burst: 10, BatchTimeout: 300 * time.Second}
}

// Dependencies bundles every stage the Orchestrator sequences.
type Dependencies struct {
	Normalizer           *text.Normalizer
	SignificanceAnalyzer *significance.Analyzer
	ComplexityAnalyzer   *complexity.Analyzer
	CompetitiveScorer    *competitive.Scorer
	TrendAnalyzer        *trend.Analyzer
	CompositeScorer      *composite.Scorer
	Validator            *validate.Validator
	NicheResolver        *niche.Resolver
}

// Orchestrator runs batches of keywords through the full stage chain.
type Orchestrator struct {
	deps    Dependencies
	cfg     Config
	limiter *rate.Limiter
}

func NewOrchestrator(deps Dependencies, cfg Config) *Orchestrator {
	return &Orchestrator{
		deps:    deps,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}
}

// Run executes strategy over inputs. Batch-level cancellation is honored
// at stage boundaries; a timed-out or canceled context surfaces as a
// TimeoutError/StageError outcome per affected keyword rather than
// aborting already-completed work.
func (o *Orchestrator) Run(ctx context.Context, inputs []Input, strategy Strategy, series map[string]domain.Series, progress ProgressFunc) Report {
	start := time.Now()

	if strategy == StrategyAdaptive {
		if len(inputs) < AdaptiveThreshold {
			strategy = StrategyCascade
		} else {
			strategy = StrategyParallel
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.BatchTimeout)
	defer cancel()

	var outcomes []Outcome
	var durations StageDurations

	switch strategy {
	case StrategyCascade:
		outcomes, durations = o.runCascade(ctx, inputs, series, progress)
	default:
		outcomes, durations = o.runParallel(ctx, inputs, series, progress)
	}

	errCount := 0
	for _, o := range outcomes {
		if o.Err != nil {
			errCount++
		}
	}

	return Report{
		Strategy:       strategy,
		Outcomes:       outcomes,
		StageDurations: durations,
		TotalDuration:  time.Since(start),
		Errors:         errCount,
	}
}

// runParallel processes each keyword via a bounded worker pool, running
// each keyword's independent stages concurrently within processOne.
func (o *Orchestrator) runParallel(ctx context.Context, inputs []Input, series map[string]domain.Series, progress ProgressFunc) ([]Outcome, StageDurations) {
	outcomes := make([]Outcome, len(inputs))
	durations := newStageDurations()
	var durMu sync.Mutex

	sem := make(chan struct{}, o.cfg.Workers)
	var wg sync.WaitGroup
	var completed int
	var completedMu sync.Mutex

	for i, in := range inputs {
		i, in := i, in
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := o.processOne(ctx, in, series[in.Term], &durMu, durations)
			outcomes[i] = outcome

			completedMu.Lock()
			completed++
			n := completed
			completedMu.Unlock()

			if progress != nil {
				progress(n, len(inputs), outcome)
			}
		}()
	}
	wg.Wait()

	return outcomes, durations
}

// runCascade computes one stage for the entire batch before moving to the
// next, still bounded by the worker pool within each stage.
func (o *Orchestrator) runCascade(ctx context.Context, inputs []Input, series map[string]domain.Series, progress ProgressFunc) ([]Outcome, StageDurations) {
	durations := newStageDurations()
	var durMu sync.Mutex

	type partial struct {
		in   Input
		niceCfg domain.NicheConfig
		sig  significance.Result
		comp complexity.Result
		cmp  competitive.Result
		trd  domain.TrendAnalysis
		err  error
	}

	partials := make([]partial, len(inputs))

	runStage := func(name string, fn func(idx int)) {
		stageStart := time.Now()
		o.forEachBounded(ctx, len(inputs), fn)
		durMu.Lock()
		durations[name] += time.Since(stageStart)
		durMu.Unlock()
	}

	runStage("niche_resolution", func(i int) {
		p := &partials[i]
		p.in = inputs[i]
		cfg, err := o.deps.NicheResolver.Resolve(inputs[i].Term, inputs[i].NicheHint)
		if err != nil {
			p.err = err
			return
		}
		p.niceCfg = cfg
	})

	runStage("significance", func(i int) {
		p := &partials[i]
		if p.err != nil {
			return
		}
		p.sig = o.deps.SignificanceAnalyzer.Analyze(p.in.Term, significance.DefaultConfig())
	})

	runStage("complexity", func(i int) {
		p := &partials[i]
		if p.err != nil {
			return
		}
		p.comp = o.deps.ComplexityAnalyzer.Analyze(p.in.Term, p.niceCfg.ComplexityBands)
	})

	runStage("competitive", func(i int) {
		p := &partials[i]
		if p.err != nil {
			return
		}
		kw, err := domain.NewKeyword(p.in.Term, p.in.Volume, p.in.CPC, p.in.Competition, p.in.Intent)
		if err != nil {
			p.err = err
			return
		}
		result, err := o.deps.CompetitiveScorer.Score(kw, p.niceCfg.CompetitiveWeights, p.niceCfg.VolumeCap, p.niceCfg.CPCCap, p.niceCfg.CompetitionCap, p.niceCfg.CompetitiveBands)
		if err != nil {
			p.err = err
			return
		}
		p.cmp = result
	})

	runStage("trend", func(i int) {
		p := &partials[i]
		if p.err != nil {
			return
		}
		p.trd = o.deps.TrendAnalyzer.Analyze(series[p.in.Term])
	})

	outcomes := make([]Outcome, len(inputs))
	finished := make([]bool, len(inputs))
	var completed int
	var completedMu sync.Mutex
	runStage("composite_and_validate", func(i int) {
		p := partials[i]
		outcomes[i] = o.finishOutcome(p.in, p.niceCfg, p.sig, p.comp, p.cmp, p.trd, p.err)
		finished[i] = true
		if progress != nil {
			completedMu.Lock()
			completed++
			n := completed
			completedMu.Unlock()
			progress(n, len(inputs), outcomes[i])
		}
	})

	for i, done := range finished {
		if !done {
			outcomes[i] = Outcome{Input: inputs[i], Err: kwerrors.Timeout("batch_canceled", "batch stopped before keyword completed")}
		}
	}

	return outcomes, durations
}

// forEachBounded runs fn(i) for i in [0,n) across the worker pool,
// stopping early (leaving remaining fn calls unrun) if ctx is done.
func (o *Orchestrator) forEachBounded(ctx context.Context, n int, fn func(i int)) {
	sem := make(chan struct{}, o.cfg.Workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := o.limiter.Wait(ctx); err != nil {
				return
			}
			fn(i)
		}()
	}
	wg.Wait()
}

func (o *Orchestrator) processOne(ctx context.Context, in Input, series domain.Series, durMu *sync.Mutex, durations StageDurations) Outcome {
	if err := o.limiter.Wait(ctx); err != nil {
		return Outcome{Input: in, Err: kwerrors.Timeout("rate_limit_wait_canceled", err.Error())}
	}

	niceCfg, err := o.deps.NicheResolver.Resolve(in.Term, in.NicheHint)
	if err != nil {
		return Outcome{Input: in, Err: err}
	}

	var sig significance.Result
	var comp complexity.Result
	var cmp competitive.Result
	var trd domain.TrendAnalysis
	var kwErr error

	var wg sync.WaitGroup
	wg.Add(4)

	track := func(name string, fn func()) {
		defer wg.Done()
		stageStart := time.Now()
		fn()
		durMu.Lock()
		durations[name] += time.Since(stageStart)
		durMu.Unlock()
	}

	go track("significance", func() { sig = o.deps.SignificanceAnalyzer.Analyze(in.Term, significance.DefaultConfig()) })
	go track("complexity", func() { comp = o.deps.ComplexityAnalyzer.Analyze(in.Term, niceCfg.ComplexityBands) })
	go track("competitive", func() {
		kw, err := domain.NewKeyword(in.Term, in.Volume, in.CPC, in.Competition, in.Intent)
		if err != nil {
			kwErr = err
			return
		}
		result, err := o.deps.CompetitiveScorer.Score(kw, niceCfg.CompetitiveWeights, niceCfg.VolumeCap, niceCfg.CPCCap, niceCfg.CompetitionCap, niceCfg.CompetitiveBands)
		if err != nil {
			kwErr = err
			return
		}
		cmp = result
	})
	go track("trend", func() { trd = o.deps.TrendAnalyzer.Analyze(series) })
	wg.Wait()

	if kwErr != nil {
		return Outcome{Input: in, Err: kwErr}
	}

	stageStart := time.Now()
	outcome := o.finishOutcome(in, niceCfg, sig, comp, cmp, trd, nil)
	durMu.Lock()
	durations["composite_and_validate"] += time.Since(stageStart)
	durMu.Unlock()

	return outcome
}

func (o *Orchestrator) finishOutcome(in Input, niceCfg domain.NicheConfig, sig significance.Result, comp complexity.Result, cmp competitive.Result, trd domain.TrendAnalysis, priorErr error) Outcome {
	if priorErr != nil {
		return Outcome{Input: in, Err: priorErr}
	}

	compositeResult, err := o.deps.CompositeScorer.Score(composite.Inputs{
		Complexity:  comp.Composite,
		Specificity: sig.Score,
		Competitive: cmp.Composite,
		Trend:       trd.Score,
	}, niceCfg.ScoreWeights, niceCfg.CompositeBands)
	if err != nil {
		return Outcome{Input: in, Err: err}
	}

	enriched := domain.EnrichedKeyword{
		Keyword:             mustKeyword(in),
		Significance:        sig.Score,
		Complexity:          comp.Composite,
		ComplexityBand:      comp.Band,
		Competitive:         cmp.Composite,
		CompetitivenessBand: cmp.Band,
		Trend:               trd.Score,
		TrendDirection:      trd.Direction,
		Composite:           compositeResult.Composite,
		CompositeBand:       compositeResult.Band,
		WeightsApplied:      compositeResult.WeightsApplied,
		Confidence:          compositeResult.Confidence,
	}

	if err := enriched.Validate(); err != nil {
		return Outcome{Input: in, Enriched: enriched, Err: err}
	}

	validation := o.deps.Validator.Validate(enriched, niceCfg, "")

	return Outcome{Input: in, Enriched: enriched, Validation: validation}
}

func mustKeyword(in Input) domain.Keyword {
	kw, err := domain.NewKeyword(in.Term, in.Volume, in.CPC, in.Competition, in.Intent)
	if err != nil {
		return domain.Keyword{}
	}
	return kw
}

func newStageDurations() StageDurations {
	return StageDurations{
		"niche_resolution":       0,
		"significance":           0,
		"complexity":             0,
		"competitive":            0,
		"trend":                  0,
		"composite_and_validate": 0,
	}
}
