package httpapi

import "context"

// ExperimentRequest/ExperimentResult are the thin pass-through payload
// for POST /experiments — KeywordScout core does not run A/B experiments
// itself (spec.md §1 Non-goals), it only relays to an injected collaborator.
type ExperimentRequest struct {
	Name        string            `json:"name"`
	Niche       string            `json:"niche"`
	VariantTags map[string]string `json:"variant_tags"`
}

type ExperimentResult struct {
	ExperimentID string `json:"experiment_id"`
	Status       string `json:"status"`
}

// ExperimentRunner is an external collaborator owning A/B experiment
// execution; KeywordScout only forwards requests to it.
type ExperimentRunner interface {
	RunExperiment(ctx context.Context, req ExperimentRequest) (ExperimentResult, error)
}

// Feedback is the thin pass-through payload for POST /feedback.
type Feedback struct {
	Keyword string `json:"keyword"`
	Niche   string `json:"niche"`
	Verdict string `json:"verdict"`
	Note    string `json:"note"`
}

// FeedbackIntake is an external collaborator owning user feedback intake;
// KeywordScout only forwards submissions to it.
type FeedbackIntake interface {
	Submit(ctx context.Context, fb Feedback) error
}

// AuditReport is the response shape for GET /audit/report — a thin
// wrapper over logstore.QualityReport so httpapi doesn't leak the
// logstore package's types across the HTTP boundary.
type AuditReport struct {
	Total        int                    `json:"total"`
	Approved     int                    `json:"approved"`
	Pending      int                    `json:"pending"`
	Rejected     int                    `json:"rejected"`
	ApprovalRate float64                `json:"approval_rate"`
	InvalidLines int                    `json:"invalid_lines"`
	ByNiche      map[string]int         `json:"by_niche"`
}

// AuditReporter is an external collaborator that can enrich the core's
// own QualityReport with audit-trail commentary; nil is a valid no-op
// implementation (the endpoint still returns the core's own report).
type AuditReporter interface {
	Annotate(ctx context.Context, report AuditReport) (AuditReport, error)
}
