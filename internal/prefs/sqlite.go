package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/temperature-quilt/internal/quilt"
)

const (
	keyPostalCode   = "zip"
	keyReminderTime = "reminder_time"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);`

// Store keeps the user's scalar preferences in a SQLite key-value table.
type Store struct {
	db *sql.DB
}

var _ quilt.PreferenceStore = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path and ensures the
// schema exists. ":memory:" is accepted for tests.
func Open(path string) (*Store, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	s, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle and ensures the schema exists.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init preferences schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) PostalCode(ctx context.Context) (string, bool, error) {
	return s.get(ctx, keyPostalCode)
}

func (s *Store) SetPostalCode(ctx context.Context, zip string) error {
	return s.set(ctx, keyPostalCode, zip)
}

func (s *Store) ReminderTime(ctx context.Context) (time.Time, bool, error) {
	v, ok, err := s.get(ctx, keyReminderTime)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse stored reminder time %q: %w", v, err)
	}
	return t, true, nil
}

func (s *Store) SetReminderTime(ctx context.Context, t time.Time) error {
	return s.set(ctx, keyReminderTime, t.Format(time.RFC3339))
}

// Load reads both preferences; missing keys leave zero values.
func (s *Store) Load(ctx context.Context) (quilt.Preferences, error) {
	var p quilt.Preferences

	zip, _, err := s.PostalCode(ctx)
	if err != nil {
		return p, err
	}
	p.PostalCode = zip

	at, _, err := s.ReminderTime(ctx)
	if err != nil {
		return p, err
	}
	p.ReminderTime = at
	return p, nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read preference %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO preferences (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`, key, value)
	if err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}

func buildDSN(path string) (string, error) {
	if path == "" || path == ":memory:" {
		return ":memory:", nil
	}
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path), nil
}
