package logstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/keywordscout/keywordscout/internal/domain"
	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
	"github.com/keywordscout/keywordscout/internal/tune"
)

// QualityReport summarizes validation outcomes over a window — the
// /audit/report endpoint's payload (SPEC_FULL.md §8).
type QualityReport struct {
	Total          int                          `json:"total"`
	Approved       int                          `json:"approved"`
	Pending        int                          `json:"pending"`
	Rejected       int                          `json:"rejected"`
	ApprovalRate   float64                       `json:"approval_rate"`
	InvalidLines   int                           `json:"invalid_lines"`
	ByNiche        map[domain.Niche]int          `json:"by_niche"`
}

// QualityReport builds a QualityReport from validation log entries in
// [from,to].
func (l *Logger) QualityReport(ctx context.Context, filter QueryFilter) (QualityReport, error) {
	filter.Kind = domain.LogValidation
	result, err := l.Query(ctx, filter)
	if err != nil {
		return QualityReport{}, err
	}

	report := QualityReport{InvalidLines: result.InvalidLines, ByNiche: make(map[domain.Niche]int)}
	for _, e := range result.Entries {
		report.Total++
		switch e.Outcome {
		case string(domain.StatusApproved):
			report.Approved++
		case string(domain.StatusPending):
			report.Pending++
		case string(domain.StatusRejected):
			report.Rejected++
		}
		if n, ok := e.Payload["niche"].(string); ok {
			report.ByNiche[domain.Niche(n)]++
		}
	}
	if report.Total > 0 {
		report.ApprovalRate = float64(report.Approved) / float64(report.Total)
	}
	return report, nil
}

// TrainingRows implements tune.HistoryProvider by turning recent
// validation log entries into (ParameterVector, score) training rows —
// the payload a LogValidation entry carries is expected to include the
// active parameter vector and the resulting validation score.
func (l *Logger) TrainingRows(ctx context.Context, n domain.Niche, windowDays int) ([]tune.Row, error) {
	filter := QueryFilter{Kind: domain.LogValidation, From: windowStart(windowDays)}
	result, err := l.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	var rows []tune.Row
	for _, e := range result.Entries {
		if nicheVal, ok := e.Payload["niche"].(string); ok && domain.Niche(nicheVal) != n {
			continue
		}
		params, ok := e.Payload["parameters"].(map[string]interface{})
		score, scoreOK := e.Payload["score"].(float64)
		if !ok || !scoreOK {
			continue
		}
		features := make(map[string]float64, len(params))
		for k, v := range params {
			if f, ok := v.(float64); ok {
				features[k] = f
			}
		}
		rows = append(rows, tune.Row{Features: features, Target: score})
	}
	return rows, nil
}

// recentAdjustmentsWindow bounds how many of the most recent applied
// adjustments feed the confidence estimate (spec.md §4.10 step 7).
const recentAdjustmentsWindow = 10

// minAdjustmentsForConfidence is the floor below which confidence defaults
// to 0.5 rather than trusting a thin sample (spec.md §4.10 step 7).
const minAdjustmentsForConfidence = 5

// RecentSuccessRate implements tune.HistoryProvider: 0.5+0.5*successRate
// over the last recentAdjustmentsWindow applied adjustments for n, where
// success means the adjustment's observed performance improved
// (NewPerformance > PreviousPerformance). Falls back to 0.5 with fewer
// than minAdjustmentsForConfidence applied adjustments on record.
func (l *Logger) RecentSuccessRate(ctx context.Context, n domain.Niche) (float64, error) {
	applied, err := l.appliedAdjustments(ctx, n, recentAdjustmentsWindow)
	if err != nil {
		return 0, err
	}
	if len(applied) < minAdjustmentsForConfidence {
		return 0.5, nil
	}

	successes := 0
	for _, rec := range applied {
		if rec.NewPerformance > rec.PreviousPerformance {
			successes++
		}
	}
	rate := float64(successes) / float64(len(applied))
	return 0.5 + 0.5*rate, nil
}

// LastApplied implements tune.HistoryProvider, returning the most recent
// applied AdjustmentRecord for n.
func (l *Logger) LastApplied(ctx context.Context, n domain.Niche) (domain.AdjustmentRecord, bool, error) {
	applied, err := l.appliedAdjustments(ctx, n, 1)
	if err != nil {
		return domain.AdjustmentRecord{}, false, err
	}
	if len(applied) == 0 {
		return domain.AdjustmentRecord{}, false, nil
	}
	return applied[0], true, nil
}

// appliedAdjustments returns up to limit AdjustmentRecords with status
// "applied" for niche n, most recent first.
func (l *Logger) appliedAdjustments(ctx context.Context, n domain.Niche, limit int) ([]domain.AdjustmentRecord, error) {
	result, err := l.Query(ctx, QueryFilter{Kind: domain.LogPerformance})
	if err != nil {
		return nil, err
	}

	var records []domain.AdjustmentRecord
	for i := len(result.Entries) - 1; i >= 0; i-- {
		e := result.Entries[i]
		if e.Outcome != string(domain.AdjustmentApplied) {
			continue
		}
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			continue
		}
		var rec domain.AdjustmentRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if rec.Niche != n {
			continue
		}
		records = append(records, rec)
		if len(records) >= limit {
			break
		}
	}
	return records, nil
}

// RecordAdjustment implements tune.HistoryWriter by logging the
// AdjustmentRecord as a LogPerformance entry.
func (l *Logger) RecordAdjustment(ctx context.Context, rec domain.AdjustmentRecord) error {
	payload, err := toPayload(rec)
	if err != nil {
		return kwerrors.Persistence("adjustment_payload_marshal_failed", "marshaling adjustment record", err)
	}
	return l.Append(domain.LogEntry{
		At:      rec.At,
		Kind:    domain.LogPerformance,
		Level:   domain.LevelInfo,
		Payload: payload,
		Outcome: string(rec.Status),
	})
}

func toPayload(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func windowStart(days int) time.Time {
	return time.Now().AddDate(0, 0, -days)
}
