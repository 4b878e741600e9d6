// Package extract ingests the per-counselor grid exports and produces
// canonical case rows. Column roles are detected per file because the
// exports are inconsistent: header labels first, fixed positions second,
// filename conventions last.
package extract

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rfgon/pautagen/internal/text"
)

// ErrNoRows marks a folder whose spreadsheets yielded no usable case
// rows. Callers that require a non-empty agenda treat it as fatal.
var ErrNoRows = errors.New("no valid case rows")

// Row is one judgable case item, fully normalized at ingestion and never
// re-parsed downstream.
type Row struct {
	ProcessID   string // raw id as exported; normalize with text.NormalizeTCID
	Subject     string
	Relator     string // canonical uppercase full name
	Reviewer    string // canonical uppercase full name, or "-" when unassigned
	Observation string
	Reason      string
	Reinclusion bool
	Competency  string // "pleno", "1c" or "2c"
	SourceFile  string // provenance only
}

// Result summarizes a folder ingestion.
type Result struct {
	Rows    []Row
	Files   int // spreadsheet files found
	Skipped int // files that failed to parse
}

// Folder reads every *.xlsx / *.xls in dir, in name order. A file that
// fails to parse is logged and skipped; the call itself only fails when
// the directory cannot be listed.
func Folder(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet folder: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".xlsx" || ext == ".xls" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	res := &Result{Files: len(paths)}
	for _, p := range paths {
		rows, err := File(p)
		if err != nil {
			log.Printf("Warning: skipping %s: %v", filepath.Base(p), err)
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, rows...)
	}
	sortRows(res.Rows)
	return res, nil
}

// defaultRelatorOrder is the institutional sequence used to order the
// combined row set before per-competency assembly.
var defaultRelatorOrder = map[string]int{
	"domingos dissei": 1,
	"ricardo torres":  2,
	"roberto braguim": 3,
	"joao antonio":    4,
	"eduardo tuma":    5,
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		oi, oj := relatorOrder(rows[i].Relator), relatorOrder(rows[j].Relator)
		if oi != oj {
			return oi < oj
		}
		if rows[i].Relator != rows[j].Relator {
			return rows[i].Relator < rows[j].Relator
		}
		return rows[i].Reviewer < rows[j].Reviewer
	})
}

func relatorOrder(name string) int {
	if o, ok := defaultRelatorOrder[text.NormNameKey(name)]; ok {
		return o
	}
	return 999
}

// File extracts the case rows of a single grid export.
func File(path string) ([]Row, error) {
	table, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, nil
	}

	header := normalizeHeader(table[0])
	body := table[1:]

	// The positional fallbacks assume at least 10 columns; pad short
	// sheets with synthetic empties so the indices always exist.
	for len(header) < 10 {
		header = append(header, fmt.Sprintf("_X%d", len(header)+1))
	}
	width := len(header)
	for i := range body {
		for len(body[i]) < width {
			body[i] = append(body[i], "")
		}
	}

	cols := detectColumns(header)
	obsIdx := findHeader(header, "observ")
	subjectAltIdx := findHeader(header, "assunto")

	fileComp := competencyFromFilename(path)
	fileRelator := ""

	relatorAllEmpty := true
	if cols.relator >= 0 {
		for _, r := range body {
			if text.Whitespace(r[cols.relator]) != "" {
				relatorAllEmpty = false
				break
			}
		}
	}
	if cols.relator < 0 || relatorAllEmpty {
		fileRelator = relatorFromFilename(path)
	}

	var out []Row
	comp := "" // competency marker latches until the next marker appears
	for _, cells := range body {
		if m := competencyFromMarker(cells[0]); m != "" {
			comp = m
		}

		proc := text.Whitespace(cells[cols.proc])
		subject := text.Whitespace(cells[cols.subject])
		if subject == "" && subjectAltIdx >= 0 {
			subject = text.Whitespace(cells[subjectAltIdx])
		}
		if proc == "" || subject == "" {
			continue
		}

		relator := fileRelator
		if relator == "" {
			relator = text.ExpandName(cells[cols.relator])
		}

		reviewer := ""
		if cols.reviewer >= 0 {
			reviewer = text.ExpandName(cells[cols.reviewer])
		}
		reviewer = reviewerOrFallback(relator, reviewer)

		reason := ""
		if cols.reason >= 0 {
			reason = text.Whitespace(cells[cols.reason])
		}

		obs := ""
		if obsIdx >= 0 {
			obs = text.Whitespace(cells[obsIdx])
		}

		rowComp := comp
		if rowComp == "" {
			rowComp = fileComp
		}

		out = append(out, Row{
			ProcessID:   proc,
			Subject:     subject,
			Relator:     relator,
			Reviewer:    reviewer,
			Observation: obs,
			Reason:      reason,
			Reinclusion: isReinclusion(reason),
			Competency:  normalizeCompetency(rowComp, relator),
			SourceFile:  filepath.Base(path),
		})
	}
	return out, nil
}

type columns struct {
	proc, subject, relator, reviewer, reason int
}

// detectColumns finds column roles by header label, falling back to the
// export's fixed positions (relator 7, reviewer 8, reason 10, 1-based).
func detectColumns(header []string) columns {
	c := columns{proc: 1, subject: 3, relator: -1, reviewer: -1, reason: -1}
	for i, h := range header {
		hl := strings.ToLower(h)
		switch {
		case strings.Contains(hl, "processo") || strings.Contains(hl, "proc."):
			c.proc = i
		case strings.Contains(hl, "objeto"):
			c.subject = i
		case strings.Contains(hl, "relator") || strings.Contains(hl, "conselheiro"):
			c.relator = i
		case strings.Contains(hl, "revisor"):
			c.reviewer = i
		case strings.Contains(hl, "motivo"):
			c.reason = i
		}
	}
	n := len(header)
	if c.proc >= n {
		c.proc = min(1, n-1)
	}
	if c.subject >= n {
		c.subject = min(3, n-1)
	}
	if c.relator < 0 && n >= 7 {
		c.relator = 6
	}
	if c.reviewer < 0 && n >= 8 {
		c.reviewer = 7
	}
	if c.reason < 0 && n >= 10 {
		c.reason = 9
	}
	return c
}

func findHeader(header []string, token string) int {
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), token) {
			return i
		}
	}
	return -1
}

// normalizeHeader repairs and dedupes header labels; duplicates get a
// numeric suffix so role detection stays unambiguous.
func normalizeHeader(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]int)
	for _, col := range raw {
		h := text.Clean(col)
		h = strings.NewReplacer("\r", " ", "\n", " ").Replace(h)
		h = text.Whitespace(h)
		if h == "" {
			h = "Coluna"
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			seen[h] = 1
		}
		out = append(out, h)
	}
	return out
}

func reviewerOrFallback(relator, reviewer string) string {
	r := text.Whitespace(reviewer)
	if r != "" && r != "-" {
		return r
	}
	if fb := text.ReviewerFor(relator); fb != "" {
		return fb
	}
	return "-"
}

var reincStripRe = regexp.MustCompile(`[-\s]`)

// isReinclusion detects reinclusion reasons regardless of accents,
// hyphens and case.
func isReinclusion(reason string) bool {
	if reason == "" {
		return false
	}
	t := reincStripRe.ReplaceAllString(text.StripAccentsLower(reason), "")
	return strings.Contains(t, "reinclus") || strings.Contains(t, "reinc")
}

var filenamePrefixRe = regexp.MustCompile(`(?i)^(PLENARIO|PLENO|1CAMARA|2CAMARA|CAMARA1|CAMARA2)_`)

// relatorFromFilename recovers the relator from the export's filename
// convention, e.g. PLENARIO_DOMINGOS_DISSEI.xlsx.
func relatorFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = filenamePrefixRe.ReplaceAllString(stem, "")
	stem = text.Whitespace(strings.NewReplacer("_", " ").Replace(stem))
	return text.ExpandName(stem)
}

func competencyFromFilename(path string) string {
	stem := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	switch {
	case strings.HasPrefix(stem, "PLENARIO_") || strings.HasPrefix(stem, "PLENO_"):
		return "pleno"
	case strings.HasPrefix(stem, "1CAMARA_") || strings.HasPrefix(stem, "CAMARA1_"):
		return "1c"
	case strings.HasPrefix(stem, "2CAMARA_") || strings.HasPrefix(stem, "CAMARA2_"):
		return "2c"
	}
	return ""
}

// competencyFromMarker interprets in-sheet marker cells such as
// "Competência: PLENO". Returns "" for non-marker cells.
func competencyFromMarker(cell string) string {
	if cell == "" {
		return ""
	}
	t := text.StripAccentsLower(text.Clean(cell))
	switch {
	case strings.Contains(t, "pleno"):
		return "pleno"
	case strings.Contains(t, "camara"):
		if strings.Contains(t, "1") {
			return "1c"
		}
		if strings.Contains(t, "2") {
			return "2c"
		}
		return "camara"
	}
	return ""
}

// normalizeCompetency resolves ambiguous markers via the relator-chamber
// table and defaults to the plenary.
func normalizeCompetency(comp, relator string) string {
	c := text.StripAccentsLower(text.Whitespace(comp))
	switch c {
	case "1c", "2c", "pleno":
		return c
	}
	if strings.Contains(c, "camara") {
		if ch := text.ChamberFor(relator); ch != "" {
			return ch
		}
		return "1c"
	}
	return "pleno"
}
