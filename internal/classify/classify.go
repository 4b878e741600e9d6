// Package classify matches a case's subject text against the ordered
// catalog of legal category phrases. The chosen category never appears in
// the document as a label; it drives the render order inside a
// relator/reviewer block and selects the span set in bold.
package classify

import (
	"regexp"
	"strings"

	"github.com/rfgon/pautagen/internal/text"
)

// UncategorizedRank sorts subjects with no catalog match after every
// categorized group.
const UncategorizedRank = 9

// Catalog is the hand-ordered phrase list. Earlier entries win ties at
// the same offset and span length.
var Catalog = []string{
	"Embargo de Declaração",
	"Embargos de Declaração",
	"Recurso",
	"Recursos",
	"Pedido de Revisão",
	"Acompanhamento",
	"Representação",
	"Denúncia",
	"Inspeção",
	"Auditoria",
	"Auditoria Programada",
	"Auditoria Operacional",
	"Auditoria Extraplano",
	"Auditoria Transversal",
	"Petição",
	"Pregão Presencial",
	"Pregão Eletrônico",
	"Edital de Chamamento Público",
	"Concorrência",
	"Concorrência Pública",
	"Tomada de Preços",
	"Convênio",
	"Contrato",
	"Contrato Emergencial",
	"Contrato de Gestão",
	"Contrato de Gestão Emergencial",
	"Certidões",
	"Termo Aditivo",
	"TA",
	"TAs",
	"Termo de Colaboração",
	"Termo de Rerratificação",
	"Acompanhamento - Execução Contratual",
	"(Itens englobados -   a   )",
	"Para proferir voto de desempate",
}

// specialPhrases are always rendered bold wherever they occur and are
// excluded from primary classification.
var specialPhrases = map[string]bool{
	"para proferir voto de desempate": true,
	"itens englobados - a":            true,
}

// groupRanks maps the normalized label of the highest-priority phrase
// groups to their render rank. Every other matched phrase shares rank 4.
var groupRanks = map[string]int{
	"embargo de declaracao":  1,
	"embargos de declaracao": 1,
	"recurso":                2,
	"recursos":               2,
	"pedido de revisao":      3,
}

const hyphenClass = `[-\x{2010}-\x{2015}]`

var parenRe = regexp.MustCompile(`[()]`)

// normLabel flattens a catalog phrase to its rank/special lookup key.
func normLabel(term string) string {
	t := text.StripAccentsLower(text.Whitespace(term))
	t = parenRe.ReplaceAllString(t, "")
	return text.Whitespace(t)
}

// accentClasses lets a catalog phrase match export text that lost (or
// gained) diacritics. Keyed by the accent-stripped base letter.
var accentClasses = map[rune]string{
	'a': "[aáàâãä]",
	'e': "[eéèê]",
	'i': "[iíì]",
	'o': "[oóòôõö]",
	'u': "[uúùü]",
	'c': "[cç]",
}

// phrasePattern builds an accent-, hyphen- and whitespace-tolerant
// pattern for a catalog phrase.
func phrasePattern(term string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?i)`)
	prevSpace := false
	for _, r := range term {
		switch {
		case r == ' ':
			if !prevSpace {
				b.WriteString(`\s+`)
			}
			prevSpace = true
			continue
		case r == '-':
			b.WriteString(`\s*` + hyphenClass + `\s*`)
		default:
			base := []rune(text.StripAccentsLower(string(r)))
			if len(base) == 1 {
				if class, ok := accentClasses[base[0]]; ok {
					b.WriteString(class)
					prevSpace = false
					continue
				}
			}
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
		prevSpace = false
	}
	return regexp.Compile(b.String())
}

type compiled struct {
	label string
	re    *regexp.Regexp
}

var primary = compilePrimary()

func compilePrimary() []compiled {
	var out []compiled
	for _, term := range Catalog {
		if specialPhrases[normLabel(term)] {
			continue
		}
		re, err := phrasePattern(term)
		if err != nil {
			re = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
		}
		out = append(out, compiled{label: term, re: re})
	}
	return out
}

// Match is the classification result for one subject text. Start/End
// delimit the matched span in bytes; Start is -1 when nothing matched.
type Match struct {
	Label string
	Rank  int
	Start int
	End   int
}

// Matched reports whether any catalog phrase was found.
func (m Match) Matched() bool { return m.Start >= 0 }

func none() Match { return Match{Rank: UncategorizedRank, Start: -1, End: -1} }

// Classify selects the best catalog phrase for a subject text: earliest
// start offset, then longest span, then catalog order. Input is cleaned
// first so corrupted encodings still classify.
func Classify(subject string) Match {
	if subject == "" {
		return none()
	}
	subject = text.Clean(subject)

	best := none()
	bestIdx := -1
	for idx, c := range primary {
		loc := c.re.FindStringIndex(subject)
		if loc == nil {
			continue
		}
		s, e := loc[0], loc[1]
		switch {
		case bestIdx < 0 || s < best.Start:
		case s == best.Start && e-s > best.End-best.Start:
		case s == best.Start && e-s == best.End-best.Start && idx < bestIdx:
		default:
			continue
		}
		best = Match{Label: c.label, Start: s, End: e}
		bestIdx = idx
	}
	if bestIdx < 0 {
		return none()
	}
	best.Rank = rankFor(best.Label)
	return best
}

func rankFor(label string) int {
	if r, ok := groupRanks[normLabel(label)]; ok {
		return r
	}
	return 4
}

// Rank is a convenience wrapper returning only the sort rank of a
// subject text.
func Rank(subject string) int {
	return Classify(subject).Rank
}

const itemToken = `\d+(?:\.\d+)*[A-Za-z]?`

var (
	votoDesempateRe = regexp.MustCompile(`(?i)para\s+proferir\s+voto\s+de\s+desempate`)
	itensRangeRe    = regexp.MustCompile(`(?i)itens\s+englobados\s*(?:` + hyphenClass + `|:)\s*` + itemToken + `\s*(?:e|a)\s*` + itemToken)
)

// Span is a half-open byte range inside a subject text.
type Span struct{ Start, End int }

// SpecialSpans finds every occurrence of the always-bold phrases
// (tie-break vote, grouped item ranges).
func SpecialSpans(subject string) []Span {
	var spans []Span
	for _, loc := range votoDesempateRe.FindAllStringIndex(subject, -1) {
		spans = append(spans, Span{loc[0], loc[1]})
	}
	for _, loc := range itensRangeRe.FindAllStringIndex(subject, -1) {
		spans = append(spans, Span{loc[0], loc[1]})
	}
	return spans
}
