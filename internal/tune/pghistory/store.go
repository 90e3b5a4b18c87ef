// Package pghistory implements an optional Postgres-backed
// tune.HistoryProvider/tune.HistoryWriter, alongside the mandatory
// JSON-file store in internal/logstore (SPEC_FULL.md §3). Grounded on
// cryptorun/internal/persistence/postgres/trades_repo.go's sqlx +
// lib/pq repository pattern (QueryRowxContext, pq.Error code inspection,
// context timeouts per call).
package pghistory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/keywordscout/keywordscout/internal/domain"
	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
	"github.com/keywordscout/keywordscout/internal/tune"
)

// Store persists AdjustmentRecord history and training rows in Postgres.
// It satisfies both tune.HistoryProvider and tune.HistoryWriter, so a
// deployment can swap it in for internal/logstore.Logger wherever a
// shared, queryable adjustment history across multiple KeywordScout
// processes matters more than the zero-dependency JSONL file store.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// New wraps an already-connected *sqlx.DB. Schema creation is the
// operator's job (a migration tool, not this package); Store only reads
// and writes rows.
func New(db *sqlx.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

type adjustmentRow struct {
	At                  time.Time `db:"at"`
	Niche               string    `db:"niche"`
	PreviousParams      []byte    `db:"previous_params"`
	NewParams           []byte    `db:"new_params"`
	PreviousPerformance float64   `db:"previous_performance"`
	NewPerformance      float64   `db:"new_performance"`
	Delta               float64   `db:"delta"`
	Confidence          float64   `db:"confidence"`
	Status              string    `db:"status"`
	TracingID           string    `db:"tracing_id"`
}

// RecordAdjustment inserts rec as a new row; adjustment history is
// append-only, matching internal/logstore's JSONL semantics.
func (s *Store) RecordAdjustment(ctx context.Context, rec domain.AdjustmentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prev, err := json.Marshal(rec.PreviousParams)
	if err != nil {
		return kwerrors.Persistence("pghistory_marshal_failed", "marshaling previous params", err)
	}
	next, err := json.Marshal(rec.NewParams)
	if err != nil {
		return kwerrors.Persistence("pghistory_marshal_failed", "marshaling new params", err)
	}

	query := `
		INSERT INTO adjustment_history
			(at, niche, previous_params, new_params, previous_performance, new_performance, delta, confidence, status, tracing_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query,
		rec.At, string(rec.Niche), prev, next,
		rec.PreviousPerformance, rec.NewPerformance, rec.Delta, rec.Confidence,
		string(rec.Status), rec.TracingID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return kwerrors.Persistence("pghistory_insert_failed", fmt.Sprintf("pq code %s", pqErr.Code), err)
		}
		return kwerrors.Persistence("pghistory_insert_failed", "inserting adjustment record", err)
	}
	return nil
}

// LastApplied returns the most recent row with status "applied" for n.
func (s *Store) LastApplied(ctx context.Context, n domain.Niche) (domain.AdjustmentRecord, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row adjustmentRow
	query := `
		SELECT at, niche, previous_params, new_params, previous_performance, new_performance, delta, confidence, status, tracing_id
		FROM adjustment_history
		WHERE niche = $1 AND status = 'applied'
		ORDER BY at DESC
		LIMIT 1`
	err := s.db.GetContext(ctx, &row, query, string(n))
	if err == sql.ErrNoRows {
		return domain.AdjustmentRecord{}, false, nil
	}
	if err != nil {
		return domain.AdjustmentRecord{}, false, kwerrors.Persistence("pghistory_query_failed", "loading last applied adjustment", err)
	}

	rec, err := rowToRecord(row)
	if err != nil {
		return domain.AdjustmentRecord{}, false, err
	}
	return rec, true, nil
}

// RecentSuccessRate mirrors internal/logstore.Logger.RecentSuccessRate's
// formula over the last 10 applied rows for n: 0.5+0.5*successRate, or
// 0.5 below 5 samples (spec.md §4.10 step 7).
func (s *Store) RecentSuccessRate(ctx context.Context, n domain.Niche) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []adjustmentRow
	query := `
		SELECT at, niche, previous_params, new_params, previous_performance, new_performance, delta, confidence, status, tracing_id
		FROM adjustment_history
		WHERE niche = $1 AND status = 'applied'
		ORDER BY at DESC
		LIMIT 10`
	if err := s.db.SelectContext(ctx, &rows, query, string(n)); err != nil {
		return 0, kwerrors.Persistence("pghistory_query_failed", "loading recent applied adjustments", err)
	}

	const minSamples = 5
	if len(rows) < minSamples {
		return 0.5, nil
	}

	successes := 0
	for _, r := range rows {
		if r.NewPerformance > r.PreviousPerformance {
			successes++
		}
	}
	rate := float64(successes) / float64(len(rows))
	return 0.5 + 0.5*rate, nil
}

// TrainingRows loads windowDays of applied adjustments for n and converts
// each into a tune.Row, using the pre-adjustment ParameterVector as
// features and post-adjustment performance as the regression target.
// internal/logstore.Logger.TrainingRows instead reads validation log
// entries, using their logged parameters and score.
func (s *Store) TrainingRows(ctx context.Context, n domain.Niche, windowDays int) ([]tune.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -windowDays)
	var rows []adjustmentRow
	query := `
		SELECT at, niche, previous_params, new_params, previous_performance, new_performance, delta, confidence, status, tracing_id
		FROM adjustment_history
		WHERE niche = $1 AND status = 'applied' AND at >= $2
		ORDER BY at ASC`
	if err := s.db.SelectContext(ctx, &rows, query, string(n), cutoff); err != nil {
		return nil, kwerrors.Persistence("pghistory_query_failed", "loading training rows", err)
	}

	out := make([]tune.Row, 0, len(rows))
	for _, r := range rows {
		rec, err := rowToRecord(r)
		if err != nil {
			continue
		}
		features := make(map[string]float64, len(rec.PreviousParams))
		for k, v := range rec.PreviousParams {
			features[k] = v
		}
		out = append(out, tune.Row{Features: features, Target: rec.NewPerformance})
	}
	return out, nil
}

func rowToRecord(row adjustmentRow) (domain.AdjustmentRecord, error) {
	var prev, next domain.ParameterVector
	if err := json.Unmarshal(row.PreviousParams, &prev); err != nil {
		return domain.AdjustmentRecord{}, kwerrors.Persistence("pghistory_unmarshal_failed", "decoding previous params", err)
	}
	if err := json.Unmarshal(row.NewParams, &next); err != nil {
		return domain.AdjustmentRecord{}, kwerrors.Persistence("pghistory_unmarshal_failed", "decoding new params", err)
	}
	return domain.AdjustmentRecord{
		At:                  row.At,
		Niche:               domain.Niche(row.Niche),
		PreviousParams:      prev,
		NewParams:           next,
		PreviousPerformance: row.PreviousPerformance,
		NewPerformance:      row.NewPerformance,
		Delta:               row.Delta,
		Confidence:          row.Confidence,
		Status:              domain.AdjustmentStatus(row.Status),
		TracingID:           row.TracingID,
	}, nil
}
