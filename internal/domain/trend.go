package domain

import (
	"fmt"
	"time"

	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
)

// TrendSample is one point in a keyword's market-signal time series
// (spec.md §3). A per-keyword Series carries no lock of its own; readers
// share the slice they are handed. TrendSample itself is a plain
// immutable value.
type TrendSample struct {
	At          time.Time
	Volume      int
	CPC         float64
	Competition float64
	SerpRank    *int
	Clicks      *int
	Impressions *int
}

// Series is an ordered, deduplicated sequence of samples for one keyword.
// NewSeries enforces spec.md §3's "sorted ascending, no duplicate At" rule
// at construction so every downstream reader can assume it.
type Series []TrendSample

func NewSeries(samples []TrendSample) (Series, error) {
	out := make(Series, len(samples))
	copy(out, samples)
	for i := 1; i < len(out); i++ {
		if !out[i].At.After(out[i-1].At) {
			return nil, kwerrors.Input("unordered_or_duplicate_sample", fmt.Sprintf("sample at %s does not strictly follow %s", out[i].At, out[i-1].At))
		}
	}
	return out, nil
}

// Forecast is the TrendAnalyzer's optional next-period projection.
type Forecast struct {
	Volume     float64
	CPC        float64
	CILow      float64
	CIHigh     float64
	Confidence float64
	Method     string
}

// TrendAnalysis is the TrendAnalyzer's output (spec.md §3).
type TrendAnalysis struct {
	Direction  TrendDirection
	Score      float64
	Pattern    string
	Confidence float64
	Forecast   *Forecast
}

// ValidationStatus is a per-criterion or overall validation outcome.
type ValidationStatus string

const (
	StatusApproved ValidationStatus = "approved"
	StatusRejected ValidationStatus = "rejected"
	StatusPending  ValidationStatus = "pending"
	StatusError    ValidationStatus = "error"
)

// Severity classifies how much a failed criterion should cost in the
// Validator's aggregate score (spec.md §4.8).
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ValidationCriterion is one gate evaluated for a candidate (spec.md §3).
type ValidationCriterion struct {
	Name     string
	Status   ValidationStatus
	Actual   interface{}
	Expected interface{}
	Severity Severity
	Weight   float64
	Message  string
}

// ValidationResult is the Validator's per-candidate output (spec.md §3).
type ValidationResult struct {
	Keyword      string
	Status       ValidationStatus
	Score        float64
	Criteria     []ValidationCriterion
	NicheApplied Niche
	Elapsed      time.Duration
	TracingID    string
}

// AdjustmentStatus classifies an optimizer cycle's outcome (spec.md §3).
type AdjustmentStatus string

const (
	AdjustmentApplied              AdjustmentStatus = "applied"
	AdjustmentInsufficientData     AdjustmentStatus = "insufficient_data"
	AdjustmentSkippedNotNeeded     AdjustmentStatus = "skipped_not_needed"
	AdjustmentSkippedLowConfidence AdjustmentStatus = "skipped_low_confidence"
	AdjustmentRolledBack           AdjustmentStatus = "rolled_back"
	AdjustmentFailed               AdjustmentStatus = "failed"
)

// AdjustmentRecord logs one ParameterOptimizer cycle (spec.md §3).
type AdjustmentRecord struct {
	At                  time.Time
	Niche               Niche
	PreviousParams      ParameterVector
	NewParams           ParameterVector
	PreviousPerformance float64
	NewPerformance      float64
	Delta               float64
	Confidence          float64
	Status              AdjustmentStatus
	TracingID           string
}

// LogKind classifies a LogEntry (spec.md §3).
type LogKind string

const (
	LogAnalysis    LogKind = "analysis"
	LogComplexity  LogKind = "complexity"
	LogCompetitive LogKind = "competitive"
	LogValidation  LogKind = "validation"
	LogRejection   LogKind = "rejection"
	LogAcceptance  LogKind = "acceptance"
	LogProcessing  LogKind = "processing"
	LogError       LogKind = "error"
	LogPerformance LogKind = "performance"
	LogTrend       LogKind = "trend"
)

// LogLevel mirrors zerolog's level names for debug/info/warn/error;
// "critical" has no zerolog level of that name.
type LogLevel string

const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarn     LogLevel = "warn"
	LevelError    LogLevel = "error"
	LevelCritical LogLevel = "critical"
)

// LogEntry is one append-only StructuredLogger record (spec.md §3).
type LogEntry struct {
	At        time.Time              `json:"at"`
	TracingID string                 `json:"tracing_id"`
	Kind      LogKind                `json:"kind"`
	Level     LogLevel               `json:"level"`
	Keyword   string                 `json:"keyword,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Outcome   string                 `json:"outcome,omitempty"`
	Elapsed   *float64               `json:"elapsed,omitempty"`
	Error     string                 `json:"error,omitempty"`
}
