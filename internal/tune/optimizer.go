package tune

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"

	"github.com/keywordscout/keywordscout/internal/domain"
	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
	"github.com/keywordscout/keywordscout/internal/niche"
)

// MinTrainingRows is the minimum number of historical outcomes required
// before a model can be fit (spec.md §4.10: fewer rows is
// "insufficient_data", not an error — the optimizer simply declines to
// propose anything that cycle).
const MinTrainingRows = 30

// MaxRollbacks freezes the optimizer (via the circuit breaker) after this
// many consecutive rollbacks. The breaker stays open for 24 hours, then
// admits a single half-open probe that closes it on success.
const MaxRollbacks = 3

// MinSwapConfidence is the minimum confidence the optimizer requires
// before applying a proposed ParameterVector (spec.md §4.10).
const MinSwapConfidence = 0.7

// DegradationThreshold is the drop in observed performance (relative to an
// applied adjustment's previous_performance) that triggers a rollback on
// the next cycle (spec.md §4.10).
const DegradationThreshold = 0.1

// HistoryProvider supplies historical training rows, the swap-confidence
// estimate, and the last applied adjustment; implemented by
// internal/logstore.
type HistoryProvider interface {
	TrainingRows(ctx context.Context, niche domain.Niche, windowDays int) ([]Row, error)
	// RecentSuccessRate returns the swap confidence derived from the last
	// 10 applied adjustments for niche: 0.5+0.5*successRate, or 0.5 if
	// fewer than 5 applied adjustments exist (spec.md §4.10 step 7).
	RecentSuccessRate(ctx context.Context, niche domain.Niche) (float64, error)
	// LastApplied returns the most recent applied AdjustmentRecord for
	// niche, if any.
	LastApplied(ctx context.Context, niche domain.Niche) (domain.AdjustmentRecord, bool, error)
}

// HistoryWriter persists adjustment outcomes; implemented by
// internal/logstore (mandatory JSON-backed) with an optional
// internal/tune/pghistory (sqlx+lib/pq) implementation layered on top.
type HistoryWriter interface {
	RecordAdjustment(ctx context.Context, rec domain.AdjustmentRecord) error
}

// Config tunes ParameterOptimizer's cycle.
type Config struct {
	WindowDays int
	Forest     ForestConfig
	Search     SearchConfig
	ModelDir   string
}

// DefaultConfig matches spec.md §9's resolved 30-day retention default.
func DefaultConfig() Config {
	return Config{WindowDays: 30, Forest: DefaultForestConfig(), Search: DefaultSearchConfig(), ModelDir: "data/tune/models"}
}

// Optimizer proposes, confidence-gates, applies, and — on later
// degradation — rolls back ParameterVector adjustments for a niche,
// freezing itself after MaxRollbacks consecutive rollbacks via a circuit
// breaker.
type Optimizer struct {
	cfg      Config
	history  HistoryProvider
	writer   HistoryWriter
	resolver *niche.Resolver
	breaker  *gobreaker.CircuitBreaker[domain.ParameterVector]
}

func NewOptimizer(cfg Config, history HistoryProvider, writer HistoryWriter, resolver *niche.Resolver) *Optimizer {
	settings := gobreaker.Settings{
		Name:        "parameter-optimizer",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     24 * time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= MaxRollbacks
		},
	}

	return &Optimizer{
		cfg:      cfg,
		history:  history,
		writer:   writer,
		resolver: resolver,
		breaker:  gobreaker.NewCircuitBreaker[domain.ParameterVector](settings),
	}
}

// CycleResult reports what happened during one optimization cycle.
type CycleResult struct {
	Status   domain.AdjustmentStatus
	Record   domain.AdjustmentRecord
	RSquared float64
	MSE      float64
}

// Run executes one optimization cycle for n: load history, fit a model,
// search for a better ParameterVector, and apply it if confident enough.
// A frozen breaker (too many recent rollbacks) short-circuits to Failed
// without touching the niche's live config.
func (o *Optimizer) Run(ctx context.Context, n domain.Niche) (CycleResult, error) {
	rows, err := o.history.TrainingRows(ctx, n, o.cfg.WindowDays)
	if err != nil {
		return CycleResult{}, kwerrors.Persistence("training_rows_load_failed", "loading optimizer training data", err)
	}

	if rolledBack, record, err := o.checkDegradation(ctx, n, rows); err != nil {
		return CycleResult{}, err
	} else if rolledBack {
		return CycleResult{Status: domain.AdjustmentRolledBack, Record: record}, nil
	}

	if len(rows) < MinTrainingRows {
		return CycleResult{Status: domain.AdjustmentInsufficientData}, nil
	}

	forest := Fit(rows, o.cfg.Forest)
	rSquared, mse := forest.Evaluate(rows)

	current, err := o.resolver.Get(n)
	if err != nil {
		return CycleResult{}, err
	}

	result := Search(current, forest, o.cfg.Search)

	confidence, err := o.history.RecentSuccessRate(ctx, n)
	if err != nil {
		return CycleResult{}, kwerrors.Persistence("success_rate_load_failed", "loading recent success rate", err)
	}

	if confidence < MinSwapConfidence || result.ProposedValue <= result.InitialValue {
		record := domain.AdjustmentRecord{
			At:                  currentTime(),
			Niche:               n,
			PreviousParams:      result.Initial,
			NewParams:           result.Initial,
			PreviousPerformance: result.InitialValue,
			NewPerformance:      result.InitialValue,
			Delta:               0,
			Confidence:          confidence,
			Status:              domain.AdjustmentSkippedLowConfidence,
		}
		_ = o.writer.RecordAdjustment(ctx, record)
		return CycleResult{Status: record.Status, Record: record, RSquared: rSquared, MSE: mse}, nil
	}

	applied, err := o.breaker.Execute(func() (domain.ParameterVector, error) {
		updated, err := o.resolver.Adjust(n, result.Proposed)
		if err != nil {
			return nil, err
		}
		return updated.ToParameterVector(), nil
	})

	status := domain.AdjustmentApplied
	if err != nil {
		status = domain.AdjustmentFailed
	}

	record := domain.AdjustmentRecord{
		At:                  currentTime(),
		Niche:               n,
		PreviousParams:      result.Initial,
		NewParams:           applied,
		PreviousPerformance: result.InitialValue,
		NewPerformance:      result.ProposedValue,
		Delta:               result.ProposedValue - result.InitialValue,
		Confidence:          confidence,
		Status:              status,
	}
	if err := o.writer.RecordAdjustment(ctx, record); err != nil {
		return CycleResult{}, kwerrors.Persistence("adjustment_record_write_failed", "recording adjustment outcome", err)
	}

	if err := o.persistModel(n, forest); err != nil {
		return CycleResult{}, err
	}

	return CycleResult{Status: status, Record: record, RSquared: rSquared, MSE: mse}, nil
}

// checkDegradation compares the mean observed performance across rows
// against the last applied adjustment's previous_performance; a drop
// exceeding DegradationThreshold triggers an immediate rollback, short-
// circuiting the rest of the cycle (spec.md §4.10).
func (o *Optimizer) checkDegradation(ctx context.Context, n domain.Niche, rows []Row) (bool, domain.AdjustmentRecord, error) {
	last, ok, err := o.history.LastApplied(ctx, n)
	if err != nil {
		return false, domain.AdjustmentRecord{}, kwerrors.Persistence("last_adjustment_load_failed", "loading last applied adjustment", err)
	}
	if !ok || len(rows) == 0 {
		return false, domain.AdjustmentRecord{}, nil
	}

	observed := meanTarget(rows)
	if last.PreviousPerformance-observed <= DegradationThreshold {
		return false, domain.AdjustmentRecord{}, nil
	}

	if err := o.Rollback(ctx, n, last.PreviousParams, fmt.Sprintf("observed performance %.4f dropped more than %.2f below %.4f", observed, DegradationThreshold, last.PreviousPerformance)); err != nil {
		return false, domain.AdjustmentRecord{}, err
	}

	record := domain.AdjustmentRecord{
		At:                  currentTime(),
		Niche:               n,
		PreviousParams:      last.NewParams,
		NewParams:           last.PreviousParams,
		PreviousPerformance: last.PreviousPerformance,
		NewPerformance:      observed,
		Delta:               observed - last.PreviousPerformance,
		Status:              domain.AdjustmentRolledBack,
	}
	return true, record, nil
}

func meanTarget(rows []Row) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rows {
		sum += r.Target
	}
	return sum / float64(len(rows))
}

// Rollback reverts n to previous and records the rollback, counting
// against the circuit breaker's consecutive-failure trip condition.
func (o *Optimizer) Rollback(ctx context.Context, n domain.Niche, previous domain.ParameterVector, reason string) error {
	if o.breaker.State() == gobreaker.StateOpen {
		return kwerrors.Optimizer("optimizer_frozen", "too many consecutive rollbacks; manual intervention required")
	}

	var adjustErr error
	// The inner sentinel error is intentional even after a successful
	// Adjust: each rollback must count toward the breaker's
	// ConsecutiveFailures so MaxRollbacks trips and freezes future cycles.
	_, _ = o.breaker.Execute(func() (domain.ParameterVector, error) {
		_, adjustErr = o.resolver.Adjust(n, previous)
		if adjustErr != nil {
			return nil, adjustErr
		}
		return nil, kwerrors.Optimizer("rollback_triggered", reason)
	})

	record := domain.AdjustmentRecord{
		At:        currentTime(),
		Niche:     n,
		NewParams: previous,
		Status:    domain.AdjustmentRolledBack,
	}
	_ = o.writer.RecordAdjustment(ctx, record)

	return adjustErr
}

// persistModel serializes the fitted forest's stumps to ModelDir for
// reproducibility and offline inspection; the optimizer never depends on
// reloading it (each cycle refits from scratch).
func (o *Optimizer) persistModel(n domain.Niche, forest *Forest) error {
	if o.cfg.ModelDir == "" {
		return nil
	}
	if err := os.MkdirAll(o.cfg.ModelDir, 0o755); err != nil {
		return kwerrors.Persistence("model_dir_create_failed", "creating model directory", err)
	}

	raw, err := json.MarshalIndent(forest.trees, "", "  ")
	if err != nil {
		return kwerrors.Persistence("model_marshal_failed", "marshaling fitted model", err)
	}

	path := filepath.Join(o.cfg.ModelDir, string(n)+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return kwerrors.Persistence("model_write_failed", "writing fitted model", err)
	}
	return nil
}

// currentTime is isolated to one call site so a future need to inject a
// clock (for deterministic testing) touches only this function.
func currentTime() time.Time {
	return time.Now()
}
