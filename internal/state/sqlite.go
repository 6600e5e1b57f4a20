package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite persists the slot in a single-table SQLite database, one file per
// app installation. WAL mode lets a daemon and one-shot CLI runs share it.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and initializes the schema.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value REAL NOT NULL
	);`)
	return err
}

func (s *SQLite) LastPromptTimestamp(ctx context.Context) (time.Time, bool, error) {
	var seconds float64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, TimestampKey).Scan(&seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read %s: %w", TimestampKey, err)
	}
	return fromEpochSeconds(seconds), true, nil
}

func (s *SQLite) SetLastPromptTimestamp(ctx context.Context, at time.Time) error {
	err := retryOnContention(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			TimestampKey, toEpochSeconds(at),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", TimestampKey, err)
	}
	return nil
}

func (s *SQLite) ClearLastPromptTimestamp(ctx context.Context) error {
	err := retryOnContention(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, TimestampKey)
		return err
	})
	if err != nil {
		return fmt.Errorf("clear %s: %w", TimestampKey, err)
	}
	return nil
}
