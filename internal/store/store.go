package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed persistence layer for meals, workouts and the
// daily conversation transcript.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: logger}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meals (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT,
		ingredients TEXT NOT NULL DEFAULT '[]',
		calories    INTEGER,
		protein     INTEGER,
		carbs       INTEGER,
		fat         INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_meals_created ON meals(created_at);

	CREATE TABLE IF NOT EXISTS workouts (
		id              TEXT PRIMARY KEY,
		created_at      TEXT NOT NULL,
		name            TEXT NOT NULL,
		type            TEXT NOT NULL,
		duration        INTEGER,
		calories_burned INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_workouts_created ON workouts(created_at);

	CREATE TABLE IF NOT EXISTS transcripts (
		date       TEXT PRIMARY KEY,
		messages   TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// timeLayout is fixed-width so that lexicographic comparison of stored
// values matches chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
