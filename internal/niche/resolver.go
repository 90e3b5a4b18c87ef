package niche

import (
	"sync"

	"github.com/keywordscout/keywordscout/internal/domain"
	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
	"github.com/keywordscout/keywordscout/internal/text"
)

// Resolver detects a keyword's niche and hands out NicheConfig snapshots.
// Snapshots are immutable; adjustments always return a new value rather
// than mutating the stored table, so an in-flight caller never observes a
// config change mid-pipeline-run.
type Resolver struct {
	mu         sync.RWMutex
	table      Table
	normalizer *text.Normalizer
}

// NewResolver constructs a Resolver over the given table.
func NewResolver(table Table, normalizer *text.Normalizer) *Resolver {
	return &Resolver{table: table, normalizer: normalizer}
}

// hintBias is the normalized-score bonus spec.md §4.7 grants a
// caller-supplied niche hint over pure term detection.
const hintBias = 0.3

// detectionFloor is the minimum normalized match score a niche needs to
// beat generic (spec.md §4.7).
const detectionFloor = 0.2

// Resolve detects the niche for term: tokenizes, scores each niche by the
// fraction of its positive-term list present in the tokens, adds hintBias
// to the hinted niche's score, and returns the highest scorer at or above
// detectionFloor — generic otherwise.
func (r *Resolver) Resolve(term string, hint domain.Niche) (domain.NicheConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, tokens := r.normalizer.NormalizeAndTokenize(term)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	best := domain.NicheGeneric
	bestScore := detectionFloor
	for _, n := range orderedNiches() {
		if n == domain.NicheGeneric {
			continue
		}
		cfg, ok := r.table.Niches[n]
		if !ok || len(cfg.PositiveTerms) == 0 {
			continue
		}
		hits := 0
		for _, positive := range cfg.PositiveTerms {
			if _, hit := tokenSet[positive]; hit {
				hits++
			}
		}
		score := float64(hits) / float64(len(cfg.PositiveTerms))
		if n == hint {
			score += hintBias
		}
		if score >= bestScore {
			bestScore = score
			best = n
		}
	}

	cfg, ok := r.table.Niches[best]
	if !ok {
		return domain.NicheConfig{}, kwerrors.Config("niche_not_found", string(best))
	}
	return cfg.Clone(), nil
}

// Get returns the raw config for a known niche, without detection.
func (r *Resolver) Get(n domain.Niche) (domain.NicheConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.table.Niches[n]
	if !ok {
		return domain.NicheConfig{}, kwerrors.Config("niche_not_found", string(n))
	}
	return cfg.Clone(), nil
}

// Adjust applies a ParameterVector to niche n's config and stores the
// renormalized, validated result, returning it. The previous snapshot is
// never mutated in place.
func (r *Resolver) Adjust(n domain.Niche, params domain.ParameterVector) (domain.NicheConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.table.Niches[n]
	if !ok {
		return domain.NicheConfig{}, kwerrors.Config("niche_not_found", string(n))
	}

	updated, err := current.WithParameterVector(params)
	if err != nil {
		return domain.NicheConfig{}, err
	}

	next := r.table
	next.Niches = cloneNicheMap(r.table.Niches)
	next.Niches[n] = updated
	r.table = next

	return updated.Clone(), nil
}

func cloneNicheMap(m map[domain.Niche]domain.NicheConfig) map[domain.Niche]domain.NicheConfig {
	out := make(map[domain.Niche]domain.NicheConfig, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func orderedNiches() []domain.Niche {
	return []domain.Niche{
		domain.NicheEcommerce,
		domain.NicheHealth,
		domain.NicheTechnology,
		domain.NicheEducation,
		domain.NicheFinance,
		domain.NicheGeneric,
	}
}
