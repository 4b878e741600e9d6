// Package pipeline orchestrates an agenda build: extract rows from the
// grid exports, compute session metadata, assemble the document, write
// it out and record the run.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rfgon/pautagen/internal/agenda"
	"github.com/rfgon/pautagen/internal/config"
	"github.com/rfgon/pautagen/internal/extract"
	"github.com/rfgon/pautagen/internal/session"
	"github.com/rfgon/pautagen/internal/store"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps        []StepResult
	DocumentPath string
	RunID        int64
}

// Failed reports whether any step errored.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Options adjust a single run.
type Options struct {
	SpreadsheetDir string // overrides the configured input folder
	Meta           *session.Meta
	AllowEmpty     bool // emit a header-only document instead of failing on zero rows
}

// Pipeline orchestrates the 4-step agenda build.
type Pipeline struct {
	cfg *config.Config
	db  *store.DB
	now func() time.Time
}

// New creates a new pipeline. The clock is injectable because the
// in-person plenary scheduling rule depends on the real current date.
func New(cfg *config.Config, db *store.DB) *Pipeline {
	return &Pipeline{cfg: cfg, db: db, now: time.Now}
}

// WithClock replaces the pipeline clock. Test hook.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// MetaFromConfig builds the session metadata from the configured
// defaults. Returns nil when no session number is configured; the
// document then falls back to the static introduction.
func MetaFromConfig(cfg *config.Config) *session.Meta {
	s := cfg.Session
	if s.Number == "" {
		return nil
	}
	return &session.Meta{
		Number:     s.Number,
		Type:       s.Type,
		Format:     s.Format,
		Competency: s.Competency,
		Opening:    s.Opening,
		Closing:    s.Closing,
		StartTime:  s.StartTime,
	}
}

// Run executes the full pipeline.
func (p *Pipeline) Run(opts Options) *Result {
	r := &Result{}

	dir := opts.SpreadsheetDir
	if dir == "" {
		dir = p.cfg.Input.SpreadsheetDir
	}

	// Step 1: Extract
	log.Println("Step 1/4: Extracting case rows...")
	res, err := extract.Folder(dir)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Extract", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name: "Extract",
		Summary: fmt.Sprintf("Extracted %d rows from %d files (%d skipped)",
			len(res.Rows), res.Files, res.Skipped),
	})

	// Step 2: Session metadata
	log.Println("Step 2/4: Computing session metadata...")
	meta := opts.Meta
	if meta == nil {
		meta = MetaFromConfig(p.cfg)
	}
	if meta != nil {
		ov := session.Overrides{
			ForcedOpening: p.cfg.Overrides.ForcedOpening,
			ForcedClosing: p.cfg.Overrides.ForcedClosing,
		}
		meta.Normalize(ov, p.now())
		r.Steps = append(r.Steps, StepResult{
			Name: "Metadata",
			Summary: fmt.Sprintf("Session %s opens %s, closes %s",
				meta.Number, meta.Opening, meta.Closing),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Metadata",
			Summary: "No session metadata configured; using the default introduction",
		})
	}

	// Step 3: Assemble
	log.Println("Step 3/4: Assembling document...")
	docOpts := agenda.Options{
		Title: p.cfg.Output.Title,
		Signature: agenda.Signature{
			Name:     p.cfg.Signature.Name,
			Title:    p.cfg.Signature.Title,
			DateLine: p.cfg.Signature.DateLine,
		},
	}
	var doc *agenda.Document
	if len(res.Rows) == 0 {
		if !opts.AllowEmpty {
			var err error
			if res.Files == 0 {
				err = fmt.Errorf("%w: no spreadsheet files in %s", extract.ErrNoRows, dir)
			} else {
				err = fmt.Errorf("%w: %d files in %s, %d skipped",
					extract.ErrNoRows, res.Files, dir, res.Skipped)
			}
			r.Steps = append(r.Steps, StepResult{Name: "Assemble", Err: err})
			return r
		}
		doc = agenda.AssembleEmpty(meta, docOpts)
		r.Steps = append(r.Steps, StepResult{
			Name:    "Assemble",
			Summary: "No rows; emitted header-only document",
		})
	} else {
		doc, err = agenda.Assemble(res.Rows, meta, docOpts)
		if err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Assemble", Err: err})
			return r
		}
		r.Steps = append(r.Steps, StepResult{
			Name:    "Assemble",
			Summary: fmt.Sprintf("Assembled %d paragraphs", len(doc.Paragraphs)),
		})
	}

	// Step 4: Write and record
	log.Println("Step 4/4: Writing document and recording run...")
	name := documentName(meta, p.now())
	path := filepath.Join(p.cfg.GetDataDir(), name+".md")
	markdown := doc.Markdown()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Write", Err: err})
		return r
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Write", Err: err})
		return r
	}
	r.DocumentPath = path

	reinc := 0
	for _, row := range res.Rows {
		if row.Reinclusion {
			reinc++
		}
	}
	run := &store.Run{
		Files:            res.Files,
		Skipped:          res.Skipped,
		RowCount:         len(res.Rows),
		ReinclusionCount: reinc,
		DocumentName:     name,
		DocumentMarkdown: markdown,
	}
	if meta != nil {
		run.SessionNumber = meta.Number
		run.SessionType = meta.Type
		run.SessionFormat = meta.Format
		run.Competency = meta.Competency
		run.OpeningDate = meta.Opening
		run.ClosingDate = meta.Closing
	}
	id, err := p.db.InsertRun(run)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Write", Err: err})
		return r
	}
	r.RunID = id
	r.Steps = append(r.Steps, StepResult{
		Name:    "Write",
		Summary: fmt.Sprintf("Wrote %s (run %d)", path, id),
	})
	return r
}

// DryRun shows what a run would do without building anything.
func (p *Pipeline) DryRun(opts Options) *Result {
	r := &Result{}

	dir := opts.SpreadsheetDir
	if dir == "" {
		dir = p.cfg.Input.SpreadsheetDir
	}
	res, err := extract.Folder(dir)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Extract", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name: "Extract",
		Summary: fmt.Sprintf("[dry-run] %d rows from %d files (%d skipped)",
			len(res.Rows), res.Files, res.Skipped),
	})

	if n, err := p.db.CountRuns(); err == nil {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Record",
			Summary: fmt.Sprintf("[dry-run] %d runs recorded so far", n),
		})
	}
	return r
}

// documentName derives the output file stem from the session metadata,
// e.g. PAUTA_UNIFICADA_74_2025.
func documentName(meta *session.Meta, now time.Time) string {
	num := "SESSAO"
	year := now.Format("2006")
	if meta != nil {
		if n := strings.TrimSuffix(meta.Number, "ª"); n != "" {
			num = strings.ReplaceAll(n, ".", "")
		}
		if d, ok := session.ParseDateBR(meta.Opening); ok {
			year = d.Format("2006")
		}
	}
	return "PAUTA_UNIFICADA_" + num + "_" + year
}
