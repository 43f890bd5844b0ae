// Package history persists per-compile records in SQLite so `stylebuild
// history` can show what was built, when, and how it went.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one compile pass.
type Record struct {
	ID         string
	StartedAt  time.Time
	DurationMS int64
	Trigger    string // initial|change|scheduled|manual
	Changed    string // changed path for watch-triggered compiles, else empty
	Files      int
	Output     string
	Status     string // success|failed
	Error      string
	Bytes      int64
}

// Store is a SQLite-backed compile history.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the history database at dbPath. Use
// ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS compiles (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		trigger_kind TEXT NOT NULL,
		changed TEXT,
		files INTEGER NOT NULL,
		output TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		bytes INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_compiles_started_at ON compiles(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores one compile record.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO compiles (id, started_at, duration_ms, trigger_kind, changed, files, output, status, error, bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.Unix(), r.DurationMS, r.Trigger, r.Changed, r.Files, r.Output, r.Status, r.Error, r.Bytes,
	)
	if err != nil {
		return fmt.Errorf("insert compile record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, trigger_kind, changed, files, output, status, error, bytes
		 FROM compiles ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query compile records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var started int64
		var changed, errMsg sql.NullString
		if err := rows.Scan(&r.ID, &started, &r.DurationMS, &r.Trigger, &changed, &r.Files, &r.Output, &r.Status, &errMsg, &r.Bytes); err != nil {
			return nil, fmt.Errorf("scan compile record: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		r.Changed = changed.String
		r.Error = errMsg.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
