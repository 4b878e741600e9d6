package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Input.SpreadsheetDir != "planilhas" {
		t.Errorf("expected spreadsheet dir 'planilhas', got %q", cfg.Input.SpreadsheetDir)
	}

	if cfg.Session.Type != "ordinaria" {
		t.Errorf("expected type 'ordinaria', got %q", cfg.Session.Type)
	}

	if cfg.Session.Format != "nao-presencial" {
		t.Errorf("expected format 'nao-presencial', got %q", cfg.Session.Format)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
session:
  number: "74"
  opening_date: "30/04/2025"
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Session.Number != "74" {
		t.Errorf("expected number '74', got %q", cfg.Session.Number)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Session.Format != "nao-presencial" {
		t.Errorf("expected default format, got %q", cfg.Session.Format)
	}
	if cfg.Session.StartTime != "9h30min." {
		t.Errorf("expected default start time, got %q", cfg.Session.StartTime)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Input.SpreadsheetDir == "" {
		t.Error("expected spreadsheet dir to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
