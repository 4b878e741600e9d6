package store

import "database/sql"

// Run is one recorded agenda build.
type Run struct {
	ID               int64
	SessionNumber    string
	SessionType      string
	SessionFormat    string
	Competency       string
	OpeningDate      string
	ClosingDate      string
	Files            int
	Skipped          int
	RowCount         int
	ReinclusionCount int
	DocumentName     string
	DocumentMarkdown string
	CreatedAt        string
}

// InsertRun records a completed build.
func (db *DB) InsertRun(r *Run) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO runs
		(session_number, session_type, session_format, competency,
		 opening_date, closing_date, files, skipped, row_count,
		 reinclusion_count, document_name, document_markdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionNumber, r.SessionType, r.SessionFormat, r.Competency,
		r.OpeningDate, r.ClosingDate, r.Files, r.Skipped, r.RowCount,
		r.ReinclusionCount, r.DocumentName, r.DocumentMarkdown,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const runColumns = `id, session_number, session_type, session_format, competency,
opening_date, closing_date, files, skipped, row_count, reinclusion_count,
document_name, document_markdown, created_at`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.SessionNumber, &r.SessionType, &r.SessionFormat,
		&r.Competency, &r.OpeningDate, &r.ClosingDate, &r.Files, &r.Skipped,
		&r.RowCount, &r.ReinclusionCount, &r.DocumentName, &r.DocumentMarkdown,
		&r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRun returns one run by id, or nil when absent.
func (db *DB) GetRun(id int64) (*Run, error) {
	row := db.conn.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// GetLatestRun returns the most recent run, or nil when none exist.
func (db *DB) GetLatestRun() (*Run, error) {
	row := db.conn.QueryRow("SELECT " + runColumns + " FROM runs ORDER BY id DESC LIMIT 1")
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// GetAllRuns returns every recorded run, newest first.
func (db *DB) GetAllRuns() ([]Run, error) {
	rows, err := db.conn.Query("SELECT " + runColumns + " FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// CountRuns returns the number of recorded runs.
func (db *DB) CountRuns() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}
