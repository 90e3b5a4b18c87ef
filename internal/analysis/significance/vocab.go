package significance

// Locale tags a language-specific stopword/intent vocabulary pair
// (spec.md §4.2: "language-tagged... default: Portuguese").
type Locale string

const (
	LocalePortuguese Locale = "pt"
	LocaleEnglish    Locale = "en"
)

// DefaultLocale matches spec.md §4.2's documented default.
const DefaultLocale = LocalePortuguese

type vocab struct {
	stopwords map[string]struct{}
	intent    map[string]struct{}
}

func newVocab(stopwords, intent []string) vocab {
	v := vocab{stopwords: make(map[string]struct{}, len(stopwords)), intent: make(map[string]struct{}, len(intent))}
	for _, w := range stopwords {
		v.stopwords[w] = struct{}{}
	}
	for _, w := range intent {
		v.intent[w] = struct{}{}
	}
	return v
}

var vocabByLocale = map[Locale]vocab{
	LocalePortuguese: newVocab(
		[]string{
			"a", "o", "as", "os", "um", "uma", "uns", "umas", "de", "do", "da", "dos", "das",
			"em", "no", "na", "nos", "nas", "para", "por", "com", "sem", "sob", "sobre", "e",
			"ou", "mas", "que", "se", "ao", "aos", "à", "às", "é", "são", "foi", "ser", "estar",
			"como", "mais", "menos", "muito", "pouco", "já", "ainda", "também", "não", "sim",
			"este", "esta", "esse", "essa", "aquele", "aquela", "isso", "isto", "aquilo",
			"meu", "minha", "seu", "sua", "nosso", "nossa", "ele", "ela", "eles", "elas",
			"eu", "tu", "nós", "vós", "lhe", "lhes", "quando", "onde", "porque", "pois",
		},
		[]string{
			"como", "melhor", "guia", "review", "avaliacao", "avaliação", "comparativo",
			"comparar", "barato", "preco", "preço", "desconto", "promocao", "promoção",
			"tutorial", "dicas", "passo", "curso", "gratis", "grátis", "rapido", "rápido",
			"comprar", "onde", "quanto", "custa",
		},
	),
	LocaleEnglish: newVocab(
		[]string{
			"a", "an", "the", "and", "or", "but", "of", "in", "on", "at", "to", "for", "with",
			"without", "is", "are", "was", "were", "be", "been", "being", "this", "that",
			"these", "those", "it", "its", "he", "she", "they", "we", "you", "i", "as", "by",
			"from", "up", "down", "so", "than", "then", "if", "not", "no", "yes", "also",
		},
		[]string{
			"how", "best", "guide", "review", "compare", "comparison", "cheap", "price",
			"discount", "deal", "tutorial", "tips", "step", "course", "free", "fast", "buy",
			"where", "cost",
		},
	),
}

// vocabFor falls back to the default locale for an unknown tag, rather than
// failing the analyzer — significance scoring never raises (spec.md §4.2).
func vocabFor(l Locale) vocab {
	if v, ok := vocabByLocale[l]; ok {
		return v
	}
	return vocabByLocale[DefaultLocale]
}
