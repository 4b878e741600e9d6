package store

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_number TEXT,
    session_type TEXT,
    session_format TEXT,
    competency TEXT,
    opening_date TEXT,
    closing_date TEXT,
    files INTEGER DEFAULT 0,
    skipped INTEGER DEFAULT 0,
    row_count INTEGER DEFAULT 0,
    reinclusion_count INTEGER DEFAULT 0,
    document_name TEXT NOT NULL,
    document_markdown TEXT NOT NULL,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`)
			return err
		},
	},
}

func latestVersion() int {
	return migrations[len(migrations)-1].Version
}
