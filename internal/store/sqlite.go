package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore caches generated summaries so a refresh does not pay the
// summarization provider again for mail it has already seen.
type SQLiteStore struct {
	db *sqlx.DB
}

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{version: 1, sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS summaries (
	message_id TEXT NOT NULL,
	model      TEXT NOT NULL,
	summary    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (message_id, model)
);

INSERT INTO schema_version (version) VALUES (1);
`},
}

// NewSQLiteStore opens (or creates) the database at the given path and runs migrations.
// ":memory:" opens a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	current := 0
	var tables int
	if err := s.db.Get(&tables, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'"); err != nil {
		return fmt.Errorf("check schema_version: %w", err)
	}
	if tables > 0 {
		if err := s.db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetSummary returns the cached summary for a message under a model.
func (s *SQLiteStore) GetSummary(ctx context.Context, messageID, model string) (string, bool, error) {
	var summary string
	err := s.db.GetContext(ctx, &summary,
		"SELECT summary FROM summaries WHERE message_id = ? AND model = ?", messageID, model)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get summary %s: %w", messageID, err)
	}
	return summary, true, nil
}

// PutSummary stores or replaces the summary for a message under a model.
func (s *SQLiteStore) PutSummary(ctx context.Context, messageID, model, summary string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (message_id, model, summary, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(message_id, model) DO UPDATE SET
			summary    = excluded.summary,
			created_at = excluded.created_at
	`, messageID, model, summary, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put summary %s: %w", messageID, err)
	}
	return nil
}

// DeleteSummaries drops every cached summary for the given messages.
func (s *SQLiteStore) DeleteSummaries(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM summaries WHERE message_id IN (?)", messageIDs)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete summaries: %w", err)
	}
	return nil
}

// CountSummaries reports how many summaries are cached.
func (s *SQLiteStore) CountSummaries(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM summaries")
	return count, err
}
