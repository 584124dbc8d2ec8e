package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"heartcheck/provision"
)

// ErrNoFetch is returned when the ledger holds no artifact fetches yet.
var ErrNoFetch = errors.New("no artifact fetch recorded")

// Store keeps the provisioning ledger. Predictions are never written here.
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite database at path, creating it if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	database.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS artifact_fetches (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        source_id TEXT NOT NULL,
        path TEXT NOT NULL,
        bytes INTEGER NOT NULL,
        sha256 TEXT NOT NULL,
        duration_ms INTEGER NOT NULL,
        fetched_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_artifact_fetches_path ON artifact_fetches(path, fetched_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}
	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordFetch appends one provisioning event.
func (s *Store) RecordFetch(ctx context.Context, rec provision.Record) error {
	fetchedAt := rec.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO artifact_fetches (source_id, path, bytes, sha256, duration_ms, fetched_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SourceID, rec.Path, rec.Bytes, rec.SHA256, rec.Duration.Milliseconds(), fetchedAt)
	return err
}

// LatestFetch returns the most recent fetch recorded for path.
func (s *Store) LatestFetch(ctx context.Context, path string) (provision.Record, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT source_id, path, bytes, sha256, duration_ms, fetched_at
        FROM artifact_fetches
        WHERE path = ?
        ORDER BY fetched_at DESC, id DESC
        LIMIT 1`, path)

	var rec provision.Record
	var durationMs int64
	err := row.Scan(&rec.SourceID, &rec.Path, &rec.Bytes, &rec.SHA256, &durationMs, &rec.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return provision.Record{}, ErrNoFetch
	}
	if err != nil {
		return provision.Record{}, err
	}
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	return rec, nil
}
