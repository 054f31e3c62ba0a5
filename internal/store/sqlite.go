package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/crimson-sun/sawmill/internal/model"
)

// SQLiteStore is a local SQLite-backed Store. The record body is stored as
// JSON next to the columns the API queries by; WAL supports concurrent
// reads while a write is in flight.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" {
		return nil, errors.New("store: missing db path")
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
PRAGMA journal_mode=WAL;
CREATE TABLE IF NOT EXISTS builds (
	build_id    TEXT PRIMARY KEY,
	label       TEXT NOT NULL,
	confidence  REAL NOT NULL,
	ingested_at INTEGER NOT NULL,
	record      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_builds_ingested_at ON builds(ingested_at);
`)
	return err
}

// Put inserts or replaces the record under its build id.
func (s *SQLiteStore) Put(ctx context.Context, rec model.BuildRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO builds (build_id, label, confidence, ingested_at, record)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(build_id) DO UPDATE SET
	label = excluded.label,
	confidence = excluded.confidence,
	ingested_at = excluded.ingested_at,
	record = excluded.record
`, rec.BuildID, rec.Label, rec.Confidence, rec.IngestedAt, string(body))
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Get returns the record for the build id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, buildID string) (model.BuildRecord, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM builds WHERE build_id = ?`, buildID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BuildRecord{}, ErrNotFound
	}
	if err != nil {
		return model.BuildRecord{}, fmt.Errorf("store: %w", err)
	}

	var rec model.BuildRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return model.BuildRecord{}, fmt.Errorf("store: %w", err)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
