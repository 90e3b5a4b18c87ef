// Package validate implements Validator (spec.md §4.8): a weighted,
// tri-state (approved/pending/rejected) gate over an EnrichedKeyword,
// generalized from a hard pass/fail gate into graded criteria.
package validate

import (
	"strings"
	"time"

	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/text"
)

const (
	criterionCompositeScore     = "composite_score"
	criterionSpecificity        = "specificity"
	criterionSemanticSimilarity = "semantic_similarity"
	criterionBasicFormat        = "basic_format"
	criterionScoreConfidence    = "score_confidence"
)

// criterionWeight assigns the relative weight spec.md §4.8's table gives
// each criterion in the pass-ratio blend.
var criterionWeight = map[string]float64{
	criterionCompositeScore:     0.30,
	criterionSpecificity:        0.25,
	criterionSemanticSimilarity: 0.20,
	criterionBasicFormat:        0.15,
	criterionScoreConfidence:    0.10,
}

var criterionSeverity = map[string]domain.Severity{
	criterionCompositeScore:     domain.SeverityCritical,
	criterionSpecificity:        domain.SeverityHigh,
	criterionSemanticSimilarity: domain.SeverityHigh,
	criterionBasicFormat:        domain.SeverityMedium,
	criterionScoreConfidence:    domain.SeverityLow,
}

// criticalPenaltyRatio and highPenaltyRatio are the per-weight penalties
// spec.md §4.8 applies on top of the plain weighted pass ratio for failed
// critical- and high-severity criteria.
const criticalPenaltyRatio = 0.5
const highPenaltyRatio = 0.3

// approvalFloor and pendingFloor are the fixed aggregate-score cut points
// spec.md §4.8 maps onto approved/pending/rejected, independent of any
// niche's own acceptance threshold (which the composite_score criterion
// already checks individually).
const approvalFloor = 0.7
const pendingFloor = 0.5

// Validator grades an EnrichedKeyword against its resolved niche.
type Validator struct {
	normalizer *text.Normalizer
}

func NewValidator(normalizer *text.Normalizer) *Validator {
	return &Validator{normalizer: normalizer}
}

// Validate scores kw's criteria and maps the weighted pass ratio, less the
// penalties for failed critical- and high-severity criteria, to a
// tri-state status. A failing critical criterion does not by itself force
// rejection: with every other criterion passing the score is 0.55 (pending).
func (v *Validator) Validate(kw domain.EnrichedKeyword, cfg domain.NicheConfig, tracingID string) domain.ValidationResult {
	start := time.Now()

	criteria := []domain.ValidationCriterion{
		v.checkCompositeScore(kw, cfg),
		v.checkSpecificity(kw, cfg),
		v.checkSemanticSimilarity(kw, cfg),
		v.checkBasicFormat(kw, cfg),
		v.checkScoreConfidence(kw, cfg),
	}

	var weightedPass, totalWeight, penalty float64
	for _, c := range criteria {
		totalWeight += c.Weight
		if c.Status == domain.StatusApproved {
			weightedPass += c.Weight
			continue
		}
		switch c.Severity {
		case domain.SeverityCritical:
			penalty += criticalPenaltyRatio * c.Weight
		case domain.SeverityHigh:
			penalty += highPenaltyRatio * c.Weight
		}
	}

	score := 0.0
	if totalWeight > 0 {
		score = (weightedPass - penalty) / totalWeight
		if score < 0 {
			score = 0
		}
	}

	status := statusFor(score)

	return domain.ValidationResult{
		Keyword:      kw.Keyword.Term(),
		Status:       status,
		Score:        score,
		Criteria:     criteria,
		NicheApplied: cfg.Niche,
		Elapsed:      time.Since(start),
		TracingID:    tracingID,
	}
}

func statusFor(score float64) domain.ValidationStatus {
	switch {
	case score >= approvalFloor:
		return domain.StatusApproved
	case score >= pendingFloor:
		return domain.StatusPending
	default:
		return domain.StatusRejected
	}
}

func (v *Validator) checkCompositeScore(kw domain.EnrichedKeyword, cfg domain.NicheConfig) domain.ValidationCriterion {
	passed := kw.Composite >= cfg.AcceptanceThreshold
	return criterion(criterionCompositeScore, passed, kw.Composite, cfg.AcceptanceThreshold)
}

func (v *Validator) checkSpecificity(kw domain.EnrichedKeyword, cfg domain.NicheConfig) domain.ValidationCriterion {
	passed := kw.Significance >= cfg.SpecificityThreshold
	return criterion(criterionSpecificity, passed, kw.Significance, cfg.SpecificityThreshold)
}

// checkSemanticSimilarity scores Jaccard overlap between the keyword's
// tokens and the niche's positive-term vocabulary (spec.md §9 open
// question, resolved in favor of the cheaper of the two permitted
// formulas — see DESIGN.md).
func (v *Validator) checkSemanticSimilarity(kw domain.EnrichedKeyword, cfg domain.NicheConfig) domain.ValidationCriterion {
	_, tokens := v.normalizer.NormalizeAndTokenize(kw.Keyword.Term())
	similarity := jaccard(tokens, cfg.PositiveTerms)
	passed := similarity >= cfg.SimilarityThreshold
	return criterion(criterionSemanticSimilarity, passed, similarity, cfg.SimilarityThreshold)
}

func (v *Validator) checkBasicFormat(kw domain.EnrichedKeyword, cfg domain.NicheConfig) domain.ValidationCriterion {
	_, tokens := v.normalizer.NormalizeAndTokenize(kw.Keyword.Term())
	n := len(tokens)
	passed := n >= cfg.MinWordCount && n <= cfg.MaxWordCount
	return criterion(criterionBasicFormat, passed, n, []int{cfg.MinWordCount, cfg.MaxWordCount})
}

func (v *Validator) checkScoreConfidence(kw domain.EnrichedKeyword, cfg domain.NicheConfig) domain.ValidationCriterion {
	const minConfidence = 0.5
	passed := kw.Confidence >= minConfidence
	return criterion(criterionScoreConfidence, passed, kw.Confidence, minConfidence)
}

func criterion(name string, passed bool, actual, expected interface{}) domain.ValidationCriterion {
	status := domain.StatusRejected
	message := name + " failed"
	if passed {
		status = domain.StatusApproved
		message = name + " passed"
	}
	return domain.ValidationCriterion{
		Name:     name,
		Status:   status,
		Actual:   actual,
		Expected: expected,
		Severity: criterionSeverity[name],
		Weight:   criterionWeight[name],
		Message:  message,
	}
}

func jaccard(tokens []string, vocabulary []string) float64 {
	if len(tokens) == 0 && len(vocabulary) == 0 {
		return 0
	}
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}
	vocabSet := make(map[string]struct{}, len(vocabulary))
	for _, w := range vocabulary {
		vocabSet[strings.ToLower(w)] = struct{}{}
	}

	intersection := 0
	union := make(map[string]struct{}, len(tokenSet)+len(vocabSet))
	for t := range tokenSet {
		union[t] = struct{}{}
		if _, ok := vocabSet[t]; ok {
			intersection++
		}
	}
	for w := range vocabSet {
		union[w] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}
