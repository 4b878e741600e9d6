package agenda

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rfgon/pautagen/internal/classify"
	"github.com/rfgon/pautagen/internal/extract"
	"github.com/rfgon/pautagen/internal/groups"
	"github.com/rfgon/pautagen/internal/session"
	"github.com/rfgon/pautagen/internal/text"
)

// ErrNoRows is returned when a non-empty document was expected but no
// valid case rows survived ingestion.
var ErrNoRows = errors.New("no valid case rows to assemble")

// Canonical relator sequences per judging body. Sections always iterate
// these, never file order.
var (
	relators1C    = []string{text.NameDissei, text.NameTorres, text.NameBraguim}
	relators2C    = []string{text.NameTorres, text.NameAntonio, text.NameTuma}
	relatorsPleno = []string{text.NameDissei, text.NameTorres, text.NameBraguim, text.NameAntonio, text.NameTuma}
)

// Reviewer priority inside a relator block. Unlisted reviewers sort
// last, alphabetically.
var reviewerOrder = map[string]int{
	"ricardo torres":  1,
	"roberto braguim": 2,
	"joao antonio":    3,
	"eduardo tuma":    4,
}

// Signature customizes the closing block. Zero value selects the
// standard three-line institutional signature.
type Signature struct {
	Name     string
	Title    string
	DateLine string
}

// Options carries per-run document settings.
type Options struct {
	Signature Signature
	Title     string // only used by the metadata-less default intro
}

func relatorsFor(comp string) []string {
	switch comp {
	case "1c":
		return relators1C
	case "2c":
		return relators2C
	}
	return relatorsPleno
}

func competencyHeading(comp string) string {
	switch comp {
	case "1c":
		return "PROCESSOS DA 1ª CÂMARA"
	case "2c":
		return "PROCESSOS DA 2ª CÂMARA"
	}
	return "PROCESSOS DO PLENO"
}

func presidencyLabel(comp string) string {
	switch comp {
	case "1c":
		return "PRESIDENTE DA 1ª CÂMARA CONSELHEIRO PRESIDENTE " + text.NameDissei
	case "2c":
		return "PRESIDENTE DA 2ª CÂMARA CONSELHEIRO VICE-PRESIDENTE " + text.NameTorres
	}
	return ""
}

// processPriority pins specific cases ahead of same-rank peers inside a
// segment. Used for grouped pairs that must stay adjacent.
func processPriority(comp string) map[string]int {
	switch comp {
	case "1c":
		return map[string]int{"TC/005107/2016": 0, "TC/005116/2016": 1}
	case "pleno":
		return map[string]int{"TC/003496/2014": 0}
	}
	return nil
}

// Assemble builds the full agenda document from the extracted rows.
// Rows must be the complete set for the run: grouping needs to see every
// row before assigning cross-reference groups.
func Assemble(rows []extract.Row, meta *session.Meta, opts Options) (*Document, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	doc := &Document{}
	addIntro(doc, meta, opts.Title)

	for _, comp := range []string{"1c", "2c", "pleno"} {
		seq := relatorsFor(comp)
		block := sortBlock(filterCompetency(rows, comp), seq)

		doc.addCentered(competencyHeading(comp), true, 12)
		doc.addBlank()
		if label := presidencyLabel(comp); label != "" {
			doc.addLeft(label, true, 12)
			doc.addBlank()
		}

		main, reinc := partitionReinclusion(block)
		renderRelators(doc, main, seq, comp, true, true)
		if len(reinc) > 0 {
			doc.addCentered("PROCESSOS DE REINCLUSÃO", true, 12)
			doc.addBlank()
			renderRelators(doc, reinc, seq, comp, false, false)
		}
	}

	addSignature(doc, opts.Signature)
	return doc, nil
}

// AssembleEmpty produces the header-only document used when no valid
// rows exist. Callers distinguish "no data" from malformed data; only
// the latter is an error.
func AssembleEmpty(meta *session.Meta, opts Options) *Document {
	doc := &Document{}
	addIntro(doc, meta, opts.Title)
	doc.addCentered("(Sem itens)", false, 11)
	addSignature(doc, opts.Signature)
	return doc
}

func addIntro(doc *Document, meta *session.Meta, title string) {
	doc.addCentered("PAUTA", true, 14)
	if meta == nil {
		doc.addJustified([]Run{{Text: session.DefaultIntro}}, 12)
		addDayOrderHeadings(doc)
		if title != "" {
			doc.addCentered(title, true, 12)
		}
		return
	}
	intro := meta.Intro()
	rest := strings.TrimPrefix(intro, "PAUTA ")
	doc.addJustified([]Run{{Text: strings.TrimSpace(rest)}}, 12)
	addDayOrderHeadings(doc)
}

func addDayOrderHeadings(doc *Document) {
	doc.addCentered("- I -", true, 12)
	doc.addCentered("ORDEM DO DIA", true, 12)
	doc.addBlank()
	doc.addCentered("- II -", true, 12)
	doc.addCentered("JULGAMENTOS", true, 12)
}

func addSignature(doc *Document, sig Signature) {
	doc.addBlank()
	if sig.Name != "" && sig.Title != "" {
		doc.addCentered(sig.Name, false, 11)
		doc.addCentered(sig.Title, false, 11)
		if sig.DateLine != "" {
			doc.addBlank()
			doc.addCentered(sig.DateLine, false, 11)
		}
		return
	}
	doc.addCentered("ROSELI DE MORAIS CHAVES", false, 11)
	doc.addCentered("SUBSECRETÁRIA-GERAL", false, 11)
	doc.addBlank()
	if sig.DateLine != "" {
		doc.addCentered(sig.DateLine, false, 11)
	} else {
		doc.addCentered("22 de janeiro de 2025", false, 11)
	}
}

func filterCompetency(rows []extract.Row, comp string) []extract.Row {
	var out []extract.Row
	for _, r := range rows {
		if r.Competency == comp {
			out = append(out, r)
		}
	}
	return out
}

func partitionReinclusion(rows []extract.Row) (main, reinc []extract.Row) {
	for _, r := range rows {
		if r.Reinclusion {
			reinc = append(reinc, r)
		} else {
			main = append(main, r)
		}
	}
	return main, reinc
}

// sortBlock orders a competency's rows by canonical relator sequence,
// then reviewer priority. Stable so same-key rows keep ingest order.
func sortBlock(rows []extract.Row, seq []string) []extract.Row {
	order := make(map[string]int, len(seq))
	for i, name := range seq {
		order[text.NormNameKey(name)] = i + 1
	}
	out := append([]extract.Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ao, bo := rankIn(order, a.Relator), rankIn(order, b.Relator)
		if ao != bo {
			return ao < bo
		}
		if a.Relator != b.Relator {
			return a.Relator < b.Relator
		}
		ar, br := reviewerRank(a.Reviewer), reviewerRank(b.Reviewer)
		if ar != br {
			return ar < br
		}
		return a.Reviewer < b.Reviewer
	})
	return out
}

func rankIn(order map[string]int, name string) int {
	if n, ok := order[text.NormNameKey(name)]; ok {
		return n
	}
	return 999
}

func reviewerRank(name string) int {
	if n, ok := reviewerOrder[text.StripAccentsLower(text.Whitespace(name))]; ok {
		return n
	}
	return 999
}

// sortItemsForSegment orders one reviewer (or relator) segment by
// classifier rank, then by the per-competency pinned priority. Stable.
func sortItemsForSegment(rows []extract.Row, priority map[string]int) []extract.Row {
	out := append([]extract.Row(nil), rows...)
	rank := func(r extract.Row) int {
		return classify.Rank(text.Whitespace(r.Subject))
	}
	prio := func(r extract.Row) int {
		if priority == nil {
			return 0
		}
		if p, ok := priority[normProc(r.ProcessID)]; ok {
			return p
		}
		return 999
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := rank(out[i]), rank(out[j])
		if a != b {
			return a < b
		}
		return prio(out[i]) < prio(out[j])
	})
	return out
}

func normProc(raw string) string {
	if n := text.NormalizeTCID(text.Whitespace(raw)); n != "" {
		return n
	}
	return text.Whitespace(raw)
}

func renderRelators(doc *Document, rows []extract.Row, seq []string, comp string, useRoman, showEmpty bool) {
	roman := 1
	priority := processPriority(comp)
	for _, relator := range seq {
		key := text.NormNameKey(relator)
		var block []extract.Row
		for _, r := range rows {
			if text.NormNameKey(r.Relator) == key {
				block = append(block, r)
			}
		}
		if len(block) == 0 && !showEmpty {
			continue
		}

		title := text.CounselorTitle(relator)
		var label string
		if useRoman {
			label = strings.ToUpper(fmt.Sprintf("%s - RELATOR %s %s", text.Roman(roman), title, relator))
			roman++
		} else {
			label = strings.ToUpper(fmt.Sprintf("RELATOR %s %s", title, relator))
		}
		doc.addLeft(label, true, 12)

		if len(block) == 0 {
			doc.addLeft("(Sem processos para relatar)", false, 12)
			doc.addBlank()
			continue
		}

		if comp == "1c" {
			// Chamber 1 has no reviewer sub-grouping: one flat list.
			renderSegment(doc, sortItemsForSegment(block, priority))
			doc.addBlank()
			continue
		}

		segments := groupByReviewer(block)
		multi := len(segments) > 1
		for i, seg := range segments {
			prefix := ""
			if multi {
				prefix = text.Alpha(i+1) + " - "
			}
			revLabel := "REVISOR"
			if comp == "pleno" {
				revLabel = "REVISOR DESIGNADO"
			}
			revTitle := text.CounselorTitle(seg.reviewer)
			doc.addLeft(fmt.Sprintf("%s%s %s %s", prefix, revLabel, revTitle, seg.reviewer), true, 12)
			renderSegment(doc, sortItemsForSegment(seg.rows, priority))
			doc.addBlank()
		}
		doc.addBlank()
	}
}

type reviewerSegment struct {
	reviewer string
	rows     []extract.Row
}

// groupByReviewer splits a relator block into per-reviewer segments,
// preserving the order reviewers first appear in the sorted block.
func groupByReviewer(rows []extract.Row) []reviewerSegment {
	var segs []reviewerSegment
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.Reviewer]
		if !ok {
			i = len(segs)
			index[r.Reviewer] = i
			segs = append(segs, reviewerSegment{reviewer: r.Reviewer})
		}
		segs[i].rows = append(segs[i].rows, r)
	}
	return segs
}

// renderSegment emits the numbered case paragraphs of one segment. The
// position map and group map are computed over the already-sorted
// segment, so cross-reference sentences cite final item numbers.
func renderSegment(doc *Document, rows []extract.Row) {
	posMap := make(map[string]int, len(rows))
	for i, r := range rows {
		if p := normProc(r.ProcessID); p != "" {
			posMap[p] = i + 1
		}
	}
	groupMap := groups.Build(rows)
	for i, r := range rows {
		proc := normProc(r.ProcessID)
		subject := groups.PrepareSubject(
			r.Subject, proc, posMap, groupMap,
			text.Whitespace(r.Observation), text.Whitespace(r.Relator))
		addItemParagraph(doc, i+1, text.Whitespace(r.ProcessID), subject)
	}
}

func addItemParagraph(doc *Document, idx int, proc, subject string) {
	runs := []Run{
		{Text: fmt.Sprintf("%d) ", idx), Bold: true},
		{Text: proc, Bold: true},
		{Text: " - "},
	}
	runs = append(runs, subjectRuns(subject)...)
	doc.addJustified(runs, 12)
}

// subjectRuns splits subject text into bold and plain runs: the primary
// classifier match is bolded, plus the always-bold special phrases.
// Overlapping spans merge before splitting.
func subjectRuns(subject string) []Run {
	if subject == "" {
		return []Run{{Text: ""}}
	}
	var spans []classify.Span
	if m := classify.Classify(subject); m.Matched() {
		spans = append(spans, classify.Span{Start: m.Start, End: m.End})
	}
	spans = append(spans, classify.SpecialSpans(subject)...)
	if len(spans) == 0 {
		return []Run{{Text: subject}}
	}
	spans = mergeSpans(spans)

	var runs []Run
	pos := 0
	for _, s := range spans {
		if pos < s.Start {
			runs = append(runs, Run{Text: subject[pos:s.Start]})
		}
		runs = append(runs, Run{Text: subject[s.Start:s.End], Bold: true})
		pos = s.End
	}
	if pos < len(subject) {
		runs = append(runs, Run{Text: subject[pos:]})
	}
	return runs
}

func mergeSpans(spans []classify.Span) []classify.Span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
		} else {
			merged = append(merged, s)
		}
	}
	return merged
}
