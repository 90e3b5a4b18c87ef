// Package domain holds the data model shared by every pipeline stage:
// Keyword, EnrichedKeyword, NicheConfig, trend samples, validation and
// optimizer records. Types here are plain values with small invariant
// checks; no stage mutates a Keyword once constructed.
package domain

import (
	"fmt"

	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
)

// Intent classifies the searcher's likely goal for a keyword.
type Intent string

const (
	IntentInformational Intent = "informational"
	IntentTransactional Intent = "transactional"
	IntentNavigational  Intent = "navigational"
	IntentInvestigative Intent = "investigative"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentInformational, IntentTransactional, IntentNavigational, IntentInvestigative:
		return true
	default:
		return false
	}
}

// Keyword is the immutable input record. Once constructed via NewKeyword it
// is never mutated; derived attributes live on EnrichedKeyword instead.
type Keyword struct {
	term        string
	volume      int
	cpc         float64
	competition float64
	intent      Intent
}

// NewKeyword validates and constructs a Keyword. Malformed input (negative
// volume, out-of-range competition, unknown intent, empty term) is an
// InputError per spec.md §7: the caller should skip the candidate, not
// propagate a panic.
func NewKeyword(term string, volume int, cpc, competition float64, intent Intent) (Keyword, error) {
	if term == "" {
		return Keyword{}, kwerrors.Input("empty_term", "keyword term must not be empty")
	}
	if volume < 0 {
		return Keyword{}, kwerrors.Input("negative_volume", fmt.Sprintf("volume %d is negative", volume))
	}
	if cpc < 0 {
		return Keyword{}, kwerrors.Input("negative_cpc", fmt.Sprintf("cpc %.4f is negative", cpc))
	}
	if competition < 0 || competition > 1 {
		return Keyword{}, kwerrors.Input("competition_out_of_range", fmt.Sprintf("competition %.4f outside [0,1]", competition))
	}
	if !intent.Valid() {
		return Keyword{}, kwerrors.Input("unknown_intent", fmt.Sprintf("intent %q is not recognized", intent))
	}
	return Keyword{term: term, volume: volume, cpc: cpc, competition: competition, intent: intent}, nil
}

func (k Keyword) Term() string         { return k.term }
func (k Keyword) Volume() int          { return k.volume }
func (k Keyword) CPC() float64         { return k.cpc }
func (k Keyword) Competition() float64 { return k.competition }
func (k Keyword) Intent() Intent       { return k.intent }

// ComplexityBand buckets a ComplexityAnalyzer score for reporting.
type ComplexityBand string

const (
	ComplexityLow       ComplexityBand = "low"
	ComplexityMedium    ComplexityBand = "medium"
	ComplexityHigh      ComplexityBand = "high"
	ComplexityVeryHigh  ComplexityBand = "very_high"
)

// CompetitivenessBand buckets a CompetitiveScorer score for reporting.
type CompetitivenessBand string

const (
	CompetitivenessLow      CompetitivenessBand = "low"
	CompetitivenessMedium   CompetitivenessBand = "medium"
	CompetitivenessHigh     CompetitivenessBand = "high"
	CompetitivenessVeryHigh CompetitivenessBand = "very_high"
)

// TrendDirection classifies a TrendAnalyzer result.
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendFalling   TrendDirection = "falling"
	TrendStable    TrendDirection = "stable"
	TrendSeasonal  TrendDirection = "seasonal"
	TrendEmerging  TrendDirection = "emerging"
	TrendDeclining TrendDirection = "declining"
)

// CompositeBand buckets the final composite score for reporting.
type CompositeBand string

const (
	BandExcellent CompositeBand = "excellent"
	BandVeryGood  CompositeBand = "very_good"
	BandGood      CompositeBand = "good"
	BandRegular   CompositeBand = "regular"
	BandPoor      CompositeBand = "poor"
)

// EnrichedKeyword is a Keyword plus every attribute the pipeline attaches.
// The Orchestrator owns EnrichedKeyword instances exclusively during a run
// (spec.md §3); stages return a new value rather than mutating in place so
// a degraded stage can't corrupt a sibling's view mid-batch.
type EnrichedKeyword struct {
	Keyword Keyword

	Significance float64

	Complexity     float64
	ComplexityBand ComplexityBand

	Competitive          float64
	CompetitivenessBand  CompetitivenessBand

	Trend          float64
	TrendDirection TrendDirection

	Composite     float64
	CompositeBand CompositeBand

	WeightsApplied map[string]float64
	Confidence     float64
}

// Validate checks every scalar score is in [0,1], per spec.md §8's
// quantified invariant.
func (e EnrichedKeyword) Validate() error {
	scores := map[string]float64{
		"significance": e.Significance,
		"complexity":   e.Complexity,
		"competitive":  e.Competitive,
		"trend":        e.Trend,
		"composite":    e.Composite,
		"confidence":   e.Confidence,
	}
	for name, v := range scores {
		if v < 0 || v > 1 {
			return kwerrors.Stage("score_out_of_range", fmt.Sprintf("%s score %.6f outside [0,1]", name, v), nil)
		}
	}
	return nil
}
