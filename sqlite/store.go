// Package sqlite provides a durable backend for the event log. One database
// serves both backend contracts: Content implements the content-addressed
// store, Index the range-queryable index.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store owns the database connection shared by both facades.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path. Idempotent.
//
// The database is configured with WAL mode for concurrent reads during
// writes, a busy timeout for lock contention, and a single-writer
// connection pool, since SQLite supports one writer at a time.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Content returns the content-addressed facade.
func (s *Store) Content() *Content {
	return &Content{db: s.db}
}

// Index returns the sorted-index facade.
func (s *Store) Index() *Index {
	return &Index{db: s.db}
}

// LastTimestamp returns the highest createdAt stored, used to seed the
// clock when reopening an existing log.
func (s *Store) LastTimestamp(ctx context.Context) (uint64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM content`).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("query last timestamp: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return uint64(last.Int64), nil
}

// Clear drops all stored content and index entries.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM content`); err != nil {
		return fmt.Errorf("clear content: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM index_entries`); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}

// Close closes the database connection. Idempotent.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
