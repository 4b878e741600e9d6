// Package server serves the recorded agenda documents over HTTP for
// review before publication.
package server

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/rfgon/pautagen/internal/store"
)

var md = goldmark.New()

const basePage = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>pautagen</title>
<style>
body { font-family: Arial, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
.doc { line-height: 1.4; }
.doc h2, .doc h3 { text-align: center; }
</style>
</head>
<body>
<p><a href="/">Execuções</a> | <a href="/latest">Última pauta</a></p>
{{block "content" .}}{{end}}
</body>
</html>`

const indexPage = `{{define "content"}}
<h1>Execuções</h1>
{{if not .Runs}}<p>Nenhuma pauta gerada ainda.</p>{{end}}
{{if .Runs}}
<table>
<tr><th>#</th><th>Sessão</th><th>Abertura</th><th>Linhas</th><th>Documento</th><th>Gerada em</th></tr>
{{range .Runs}}
<tr>
<td><a href="/pauta/{{.ID}}">{{.ID}}</a></td>
<td>{{.SessionNumber}} {{.SessionType}}</td>
<td>{{.OpeningDate}}</td>
<td>{{.RowCount}}</td>
<td>{{.DocumentName}}</td>
<td>{{.CreatedAt}}</td>
</tr>
{{end}}
</table>
{{end}}
{{end}}`

const runPage = `{{define "content"}}
<h1>{{.Run.DocumentName}}</h1>
<p>Sessão {{.Run.SessionNumber}} · abertura {{.Run.OpeningDate}} · {{.Run.RowCount}} itens ({{.Run.ReinclusionCount}} reinclusões)</p>
<div class="doc">{{markdown .Run.DocumentMarkdown}}</div>
{{end}}`

// Server is the HTTP server for reviewing generated agendas.
type Server struct {
	db    *store.DB
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(db *store.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
	}

	base, err := template.New("base").Funcs(funcMap).Parse(basePage)
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	pages := make(map[string]*template.Template, 2)
	for name, body := range map[string]string{"index": indexPage, "run": runPage} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.Parse(body); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/pauta/", s.handleRun)
	s.mux.HandleFunc("/latest", s.handleLatest)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	runs, err := s.db.GetAllRuns()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index", map[string]any{
		"Runs": runs,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/pauta/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	run, err := s.db.GetRun(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}

	s.render(w, "run", map[string]any{
		"Run": run,
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	run, err := s.db.GetLatestRun()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}

	s.render(w, "run", map[string]any{
		"Run": run,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *store.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
