package main

import (
	"github.com/keywordscout/keywordscout/internal/analysis/complexity"
	"github.com/keywordscout/keywordscout/internal/analysis/significance"
	kwconfig "github.com/keywordscout/keywordscout/internal/config"
	"github.com/keywordscout/keywordscout/internal/niche"
	"github.com/keywordscout/keywordscout/internal/pipeline"
	"github.com/keywordscout/keywordscout/internal/score/competitive"
	"github.com/keywordscout/keywordscout/internal/score/composite"
	"github.com/keywordscout/keywordscout/internal/text"
	"github.com/keywordscout/keywordscout/internal/trend"
	"github.com/keywordscout/keywordscout/internal/validate"
)

// defaultComplexVocab is ComplexityAnalyzer's "technical/jargon" term
// list; the niches yaml bundle has no field that replaces it —
// spec.md §4.3 leaves the vocabulary itself as deployment-specific data.
var defaultComplexVocab = []string{
	"api", "integration", "enterprise", "saas", "analytics", "algorithm",
	"infrastructure", "middleware", "authentication", "orchestration",
}

// buildDependencies wires every stage component the process subcommand
// runs; optimize and serve construct only the pieces they use themselves.
func buildDependencies(cfg kwconfig.Config, table niche.Table) pipeline.Dependencies {
	normalizer := text.NewNormalizer(text.DefaultOptions())
	resolver := niche.NewResolver(table, normalizer)

	return pipeline.Dependencies{
		Normalizer:           normalizer,
		SignificanceAnalyzer: significance.NewAnalyzer(normalizer),
		ComplexityAnalyzer:   complexity.NewAnalyzer(normalizer, defaultComplexVocab),
		CompetitiveScorer:    competitive.NewScorer(),
		TrendAnalyzer:        trend.NewAnalyzer(trend.DefaultConfig()),
		CompositeScorer:      composite.NewScorer(),
		Validator:            validate.NewValidator(normalizer),
		NicheResolver:        resolver,
	}
}
