// Package agenda assembles the final session document: ordered relator
// and reviewer blocks, numbered case paragraphs with selective bold
// runs, and the closing signature block.
package agenda

import "strings"

// Align positions a paragraph on the page.
type Align int

const (
	AlignJustify Align = iota
	AlignLeft
	AlignCenter
)

// Run is a span of text with one style.
type Run struct {
	Text string
	Bold bool
}

// Paragraph is one styled line of the document. Size is the font point
// size applied to every run.
type Paragraph struct {
	Align Align
	Size  int
	Runs  []Run
}

// Document is the abstract agenda. A file-format collaborator turns it
// into whatever binary format is needed; this package only orders and
// styles content.
type Document struct {
	Paragraphs []Paragraph
}

func (d *Document) add(p Paragraph) {
	d.Paragraphs = append(d.Paragraphs, p)
}

func (d *Document) addCentered(text string, bold bool, size int) {
	d.add(Paragraph{Align: AlignCenter, Size: size, Runs: []Run{{Text: text, Bold: bold}}})
}

func (d *Document) addLeft(text string, bold bool, size int) {
	d.add(Paragraph{Align: AlignLeft, Size: size, Runs: []Run{{Text: text, Bold: bold}}})
}

func (d *Document) addJustified(runs []Run, size int) {
	d.add(Paragraph{Align: AlignJustify, Size: size, Runs: runs})
}

func (d *Document) addBlank() {
	d.add(Paragraph{Size: 12})
}

// Text renders the document as plain text, one paragraph per line.
// Styling is dropped; used for logging and golden comparisons.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Paragraphs {
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Markdown renders the document as Markdown for the preview server.
// Bold runs map to strong emphasis; centered paragraphs become
// headings sized by their font size.
func (d *Document) Markdown() string {
	var b strings.Builder
	for _, p := range d.Paragraphs {
		if len(p.Runs) == 0 || onlyWhitespace(p.Runs) {
			b.WriteByte('\n')
			continue
		}
		if p.Align == AlignCenter {
			if p.Size >= 14 {
				b.WriteString("## ")
			} else {
				b.WriteString("### ")
			}
		}
		for _, r := range p.Runs {
			if r.Text == "" {
				continue
			}
			if r.Bold && p.Align != AlignCenter {
				trimmed := strings.TrimSpace(r.Text)
				if strings.HasPrefix(r.Text, " ") {
					b.WriteByte(' ')
				}
				b.WriteString("**")
				b.WriteString(trimmed)
				b.WriteString("**")
				if strings.HasSuffix(r.Text, " ") {
					b.WriteByte(' ')
				}
			} else {
				b.WriteString(r.Text)
			}
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func onlyWhitespace(runs []Run) bool {
	for _, r := range runs {
		if strings.TrimSpace(r.Text) != "" {
			return false
		}
	}
	return true
}
