// Package niche implements NicheResolver (spec.md §4.7): a detector that
// maps a keyword (plus optional hint) onto a NicheConfig, backed by a
// yaml-loaded default table and a copy-on-write adjustment API.
package niche

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/keywordscout/keywordscout/internal/domain"
	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
)

// Table is the yaml-loaded bundle of NicheConfig defaults, one per niche.
type Table struct {
	Niches map[domain.Niche]domain.NicheConfig `yaml:"niches"`
}

// DefaultTable returns the built-in fallback table used when no yaml
// configuration file is supplied or found (spec.md §4.7's bundled defaults).
func DefaultTable() Table {
	generic := domain.NicheConfig{
		Niche:                 domain.NicheGeneric,
		MinWordCount:          2,
		MaxWordCount:          6,
		SpecificityThreshold:  0.4,
		SimilarityThreshold:   0.3,
		AcceptanceThreshold:   0.7,
		ScoreWeights:          domain.ScoreWeights{Complexity: 0.25, Specificity: 0.25, Competitive: 0.25, Trend: 0.25},
		CompetitiveWeights:    domain.CompetitiveWeights{Volume: 0.5, CPC: 0.25, Competition: 0.25},
		VolumeCap:             100000,
		CPCCap:                10,
		CompetitionCap:        1,
		ComplexityBands:       domain.BandThresholds{Medium: 0.3, High: 0.6, VeryHigh: 0.8},
		CompetitiveBands:      domain.BandThresholds{Medium: 0.3, High: 0.6, VeryHigh: 0.8},
		TrendBands:            domain.BandThresholds{Medium: 0.3, High: 0.6, VeryHigh: 0.8},
		CompositeBands:        domain.DefaultCompositeBandThresholds(),
		TimeoutMillis:         5000,
		CacheTTLSecs:          300,
	}

	ecommerce := generic
	ecommerce.Niche = domain.NicheEcommerce
	ecommerce.PositiveTerms = []string{"comprar", "preco", "preço", "frete", "desconto", "loja", "oferta", "parcelado"}
	ecommerce.CompetitiveWeights = domain.CompetitiveWeights{Volume: 0.4, CPC: 0.35, Competition: 0.25}
	ecommerce.VolumeCap = 200000
	ecommerce.AcceptanceThreshold = 0.65

	health := generic
	health.Niche = domain.NicheHealth
	health.PositiveTerms = []string{"sintomas", "tratamento", "saude", "saúde", "medico", "médico", "diagnostico", "diagnóstico"}
	health.SpecificityThreshold = 0.5

	technology := generic
	technology.Niche = domain.NicheTechnology
	technology.PositiveTerms = []string{"tutorial", "api", "software", "codigo", "código", "configurar", "instalar", "framework"}
	technology.ScoreWeights = domain.ScoreWeights{Complexity: 0.35, Specificity: 0.25, Competitive: 0.2, Trend: 0.2}

	education := generic
	education.Niche = domain.NicheEducation
	education.PositiveTerms = []string{"curso", "aula", "aprender", "estudar", "apostila", "certificado"}

	finance := generic
	finance.Niche = domain.NicheFinance
	finance.PositiveTerms = []string{"investir", "financiamento", "credito", "crédito", "emprestimo", "empréstimo", "juros", "cartao", "cartão"}
	finance.CompetitiveWeights = domain.CompetitiveWeights{Volume: 0.35, CPC: 0.4, Competition: 0.25}
	finance.VolumeCap = 150000
	finance.CPCCap = 25

	return Table{Niches: map[domain.Niche]domain.NicheConfig{
		domain.NicheGeneric:    generic,
		domain.NicheEcommerce:  ecommerce,
		domain.NicheHealth:     health,
		domain.NicheTechnology: technology,
		domain.NicheEducation:  education,
		domain.NicheFinance:    finance,
	}}
}

// LoadTable reads a yaml-encoded Table from path, falling back to
// DefaultTable when the path is empty or the file does not exist. Each
// niche present in the file replaces that niche's default entry whole;
// fields missing from a loaded entry are not filled from the defaults,
// and niches absent from the file keep their defaults.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTable(), nil
		}
		return Table{}, kwerrors.Config("niche_table_read_failed", err.Error())
	}

	var loaded Table
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Table{}, kwerrors.Wrap(kwerrors.KindConfig, "niche_table_parse_failed", "invalid niche table yaml", err)
	}

	merged := DefaultTable()
	for n, cfg := range loaded.Niches {
		merged.Niches[n] = cfg
	}
	return merged, nil
}
