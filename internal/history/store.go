// Package history keeps a local record of generated recaps so past runs can
// be reviewed without hitting the backend.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded recap run.
type Entry struct {
	ID          int64
	RecapID     string
	Profile     string
	RequestedAt time.Time
	From        string
	To          string
	Projects    string
	Tags        string
	EntryCount  int
	Content     string
}

// Store persists recap history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS recaps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recap_id TEXT NOT NULL,
	profile TEXT NOT NULL,
	requested_at TEXT NOT NULL,
	from_ts TEXT NOT NULL DEFAULT '',
	to_ts TEXT NOT NULL DEFAULT '',
	projects TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	entry_count INTEGER NOT NULL DEFAULT 0,
	content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recaps_requested_at ON recaps(requested_at);
`

// DefaultPath returns the history database location under the user data
// directory.
func DefaultPath() (string, error) {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "accomplish", "history.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "accomplish", "history.db"), nil
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Record stores a completed recap and returns its row ID.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	requestedAt := entry.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO recaps (recap_id, profile, requested_at, from_ts, to_ts, projects, tags, entry_count, content)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RecapID,
		entry.Profile,
		requestedAt.UTC().Format(time.RFC3339),
		entry.From,
		entry.To,
		entry.Projects,
		entry.Tags,
		entry.EntryCount,
		entry.Content,
	)
	if err != nil {
		return 0, fmt.Errorf("record recap: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record recap id: %w", err)
	}
	return id, nil
}

// List returns the most recent recaps, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
SELECT id, recap_id, profile, requested_at, from_ts, to_ts, projects, tags, entry_count, content
FROM recaps
ORDER BY requested_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recaps: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var requestedAt string
		if err := rows.Scan(
			&entry.ID,
			&entry.RecapID,
			&entry.Profile,
			&requestedAt,
			&entry.From,
			&entry.To,
			&entry.Projects,
			&entry.Tags,
			&entry.EntryCount,
			&entry.Content,
		); err != nil {
			return nil, fmt.Errorf("scan recap row: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, requestedAt)
		if err != nil {
			return nil, fmt.Errorf("parse requested_at %q: %w", requestedAt, err)
		}
		entry.RequestedAt = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recap rows: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
