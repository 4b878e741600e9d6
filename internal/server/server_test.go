package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rfgon/pautagen/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertRun(t *testing.T, db *store.DB, number string) int64 {
	t.Helper()
	id, err := db.InsertRun(&store.Run{
		SessionNumber:    number,
		SessionType:      "ordinaria",
		SessionFormat:    "nao-presencial",
		Competency:       "pleno",
		OpeningDate:      "06/05/2025",
		ClosingDate:      "21/05/2025",
		RowCount:         2,
		DocumentName:     "PAUTA_UNIFICADA_" + number + "_2025",
		DocumentMarkdown: "## PAUTA\n\n**1)** **TC/001234/2020** - Recurso interposto",
	})
	if err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}
	return id
}

func TestIndexRoute(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Nenhuma pauta gerada") {
		t.Error("expected empty-state message in response body")
	}
}

func TestIndexListsRuns(t *testing.T) {
	db := openTestDB(t)
	insertRun(t, db, "73")
	insertRun(t, db, "74")

	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "PAUTA_UNIFICADA_73_2025") || !strings.Contains(body, "PAUTA_UNIFICADA_74_2025") {
		t.Error("expected both runs listed")
	}
}

func TestRunRoute(t *testing.T) {
	db := openTestDB(t)
	id := insertRun(t, db, "74")

	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", fmt.Sprintf("/pauta/%d", id), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "TC/001234/2020") {
		t.Error("expected rendered document content")
	}
	if !strings.Contains(body, "<strong>") {
		t.Error("expected markdown rendered to HTML")
	}
}

func TestRunRouteMissing(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/pauta/999", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestLatestRoute(t *testing.T) {
	db := openTestDB(t)
	insertRun(t, db, "73")
	insertRun(t, db, "74")

	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/latest", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "PAUTA_UNIFICADA_74_2025") {
		t.Error("expected the latest run's document")
	}
}

func TestLatestRouteEmpty(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/latest", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
