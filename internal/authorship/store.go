// Package authorship keeps a per-project ledger of who was allowed to touch
// which region, backed by SQLite. Every gate decision lands here so that
// "which agent edited the auth package last month, and under what trust"
// stays answerable after the fact. The core never reads this ledger; it is
// collaborator state.
package authorship

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ts          TEXT NOT NULL,
	file        TEXT NOT NULL,
	line_start  INTEGER NOT NULL DEFAULT 0,
	line_end    INTEGER NOT NULL DEFAULT 0,
	level       TEXT NOT NULL,
	source      TEXT NOT NULL,
	behavior    TEXT NOT NULL,
	agent       TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_decisions_file ON decisions(file);
`

// Record is one row in the decisions ledger.
type Record struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
	File      string    `json:"file"`
	LineStart int       `json:"line_start,omitempty"`
	LineEnd   int       `json:"line_end,omitempty"`
	Level     string    `json:"level"`
	Source    string    `json:"source"`
	Behavior  string    `json:"behavior"`
	Agent     string    `json:"agent,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// Store wraps the SQLite ledger. Writes are serialized by the database;
// concurrent readers are fine.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the ledger path under a project root.
func DefaultPath(root string) string {
	return filepath.Join(root, ".collab", "authorship.db")
}

// Open opens (or creates) the ledger at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("authorship: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("authorship: open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY churn from concurrent gates.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("authorship: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Append inserts a decision record. Timestamp is filled when zero.
func (s *Store) Append(ctx context.Context, r Record) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (ts, file, line_start, line_end, level, source, behavior, agent, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339Nano), r.File, r.LineStart, r.LineEnd,
		r.Level, r.Source, r.Behavior, r.Agent, r.Reason)
	if err != nil {
		return fmt.Errorf("authorship: insert: %w", err)
	}
	return nil
}

// ByFile returns the most recent records for one file, newest first.
func (s *Store) ByFile(ctx context.Context, file string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, file, line_start, line_end, level, source, behavior, agent, reason
		 FROM decisions WHERE file = ? ORDER BY id DESC LIMIT ?`, file, limit)
	if err != nil {
		return nil, fmt.Errorf("authorship: query: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Recent returns the most recent records across all files, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, file, line_start, line_end, level, source, behavior, agent, reason
		 FROM decisions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("authorship: query: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.File, &r.LineStart, &r.LineEnd,
			&r.Level, &r.Source, &r.Behavior, &r.Agent, &r.Reason); err != nil {
			return nil, fmt.Errorf("authorship: scan: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.Timestamp = parsed
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
