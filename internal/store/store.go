// Package store persists extracted press releases in SQLite and answers
// whether a release URL has been processed before.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS press_releases (
	url       TEXT PRIMARY KEY,
	date      INTEGER NOT NULL,
	title     TEXT NOT NULL DEFAULT '',
	company   TEXT NOT NULL DEFAULT '',
	text      TEXT NOT NULL,
	topics    TEXT NOT NULL DEFAULT '',
	location  TEXT NOT NULL DEFAULT '',
	language  TEXT NOT NULL DEFAULT '',
	stored_at INTEGER NOT NULL
);
`

// Store is an append-only record store. Added records are buffered and
// written in one transaction by Flush; buffered URLs already count as seen.
type Store struct {
	db      *sql.DB
	pending []domain.Record
	queued  map[string]struct{}
}

// Open opens the database at path, creating it and its directory if needed.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create tables: %w", err)
	}

	return newStore(db), nil
}

func newStore(db *sql.DB) *Store {
	return &Store{db: db, queued: make(map[string]struct{})}
}

// Close closes the database. Unflushed records are dropped.
func (s *Store) Close() error {
	return s.db.Close()
}

// AlreadySeen reports whether url was stored or is waiting to be flushed.
func (s *Store) AlreadySeen(ctx context.Context, url string) (bool, error) {
	if _, ok := s.queued[url]; ok {
		return true, nil
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM press_releases WHERE url = ?`, url).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("store: lookup %s: %w", url, err)
	}
	return true, nil
}

// Add queues rec for the next Flush. Records whose URL is already queued are ignored.
func (s *Store) Add(_ context.Context, rec domain.Record) error {
	if rec.URL == "" {
		return errors.New("store: record url is empty")
	}
	if _, ok := s.queued[rec.URL]; ok {
		return nil
	}
	s.queued[rec.URL] = struct{}{}
	s.pending = append(s.pending, rec)
	return nil
}

// Pending returns the number of records waiting for Flush.
func (s *Store) Pending() int {
	return len(s.pending)
}

// Flush writes queued records in a single transaction. Rows that already
// exist are left untouched. On failure nothing is written and the queue is
// kept for a later attempt.
func (s *Store) Flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin flush: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO press_releases
			(url, date, title, company, text, topics, location, language, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	storedAt := time.Now().Unix()
	for _, rec := range s.pending {
		if _, err := stmt.ExecContext(ctx,
			rec.URL, rec.Date, rec.Title, rec.Company, rec.Text,
			rec.Topics, rec.Location, rec.Language, storedAt,
		); err != nil {
			return fmt.Errorf("store: insert %s: %w", rec.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit flush: %w", err)
	}

	s.pending = nil
	s.queued = make(map[string]struct{})
	return nil
}

// Get loads a stored record by URL.
func (s *Store) Get(ctx context.Context, url string) (domain.Record, error) {
	var rec domain.Record
	err := s.db.QueryRowContext(ctx, `
		SELECT url, date, title, company, text, topics, location, language
		FROM press_releases WHERE url = ?`, url).
		Scan(&rec.URL, &rec.Date, &rec.Title, &rec.Company, &rec.Text, &rec.Topics, &rec.Location, &rec.Language)
	if err != nil {
		return domain.Record{}, fmt.Errorf("store: get %s: %w", url, err)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM press_releases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}
