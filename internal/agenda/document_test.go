package agenda

import (
	"strings"
	"testing"
)

func TestTextJoinsRuns(t *testing.T) {
	var d Document
	d.addJustified([]Run{{Text: "1) ", Bold: true}, {Text: "TC/001234/2020"}}, 12)
	d.addBlank()
	d.addLeft("RELATOR", true, 12)

	got := d.Text()
	want := "1) TC/001234/2020\n\nRELATOR\n"
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestMarkdownHeadings(t *testing.T) {
	var d Document
	d.addCentered("PAUTA", true, 14)
	d.addCentered("ORDEM DO DIA", true, 12)

	got := d.Markdown()
	if !strings.Contains(got, "## PAUTA\n") {
		t.Errorf("large centered paragraph not a level-2 heading: %q", got)
	}
	if !strings.Contains(got, "### ORDEM DO DIA\n") {
		t.Errorf("small centered paragraph not a level-3 heading: %q", got)
	}
}

func TestMarkdownBoldRuns(t *testing.T) {
	var d Document
	d.addJustified([]Run{
		{Text: "1) ", Bold: true},
		{Text: "TC/001234/2020", Bold: true},
		{Text: " - "},
		{Text: "Recurso", Bold: true},
		{Text: " interposto contra o acórdão."},
	}, 12)

	got := d.Markdown()
	// Trailing spaces inside a bold run must move outside the markers,
	// otherwise the emphasis does not parse.
	if !strings.Contains(got, "**1)** **TC/001234/2020** - **Recurso** interposto") {
		t.Errorf("bold runs rendered wrong: %q", got)
	}
}

func TestMarkdownBlankParagraphs(t *testing.T) {
	var d Document
	d.addLeft("A", false, 12)
	d.addBlank()
	d.add(Paragraph{Runs: []Run{{Text: "   "}}})
	d.addLeft("B", false, 12)

	got := d.Markdown()
	if strings.Contains(got, "**") || strings.Contains(got, "#") {
		t.Errorf("unexpected styling: %q", got)
	}
	if !strings.Contains(got, "A\n") || !strings.Contains(got, "B\n") {
		t.Errorf("paragraph text lost: %q", got)
	}
}
