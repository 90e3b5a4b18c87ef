package pghistory

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sx := sqlx.NewDb(db, "postgres")
	return New(sx, time.Second), mock
}

func sampleRecord() domain.AdjustmentRecord {
	return domain.AdjustmentRecord{
		At:                  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Niche:               domain.NicheGeneric,
		PreviousParams:      domain.ParameterVector{domain.ParamWeightComplexity: 0.25},
		NewParams:           domain.ParameterVector{domain.ParamWeightComplexity: 0.3},
		PreviousPerformance: 0.7,
		NewPerformance:      0.75,
		Delta:               0.05,
		Confidence:          0.8,
		Status:              domain.AdjustmentApplied,
		TracingID:           "tid-1",
	}
}

func TestRecordAdjustment_ExecutesInsert(t *testing.T) {
	store, mock := newMockStore(t)
	rec := sampleRecord()

	mock.ExpectExec("INSERT INTO adjustment_history").
		WithArgs(rec.At, string(rec.Niche), sqlmock.AnyArg(), sqlmock.AnyArg(),
			rec.PreviousPerformance, rec.NewPerformance, rec.Delta, rec.Confidence,
			string(rec.Status), rec.TracingID).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.RecordAdjustment(context.Background(), rec)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLastApplied_ReturnsFalseOnNoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM adjustment_history").
		WithArgs(string(domain.NicheGeneric)).
		WillReturnRows(sqlmock.NewRows(nil))

	_, ok, err := store.LastApplied(context.Background(), domain.NicheGeneric)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecentSuccessRate_DefaultsBelowMinimumSamples(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"at", "niche", "previous_params", "new_params", "previous_performance", "new_performance", "delta", "confidence", "status", "tracing_id"}
	mock.ExpectQuery("SELECT (.+) FROM adjustment_history").
		WithArgs(string(domain.NicheGeneric)).
		WillReturnRows(sqlmock.NewRows(cols))

	rate, err := store.RecentSuccessRate(context.Background(), domain.NicheGeneric)
	require.NoError(t, err)
	assert.Equal(t, 0.5, rate)
}
