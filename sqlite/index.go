package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/terraskye/eventlog"
)

// queryer is the subset of *sql.DB the facades need.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ eventlog.BatchIndexStore = (*Index)(nil)

// Index is the sorted-index facade over the shared database. BLOB keys
// compare bytewise in SQLite, so ORDER BY key yields the lexicographic
// order the range-query contract requires.
type Index struct {
	db queryer
}

// Get returns the value stored under key, or Undefined when absent.
func (ix *Index) Get(ctx context.Context, key []byte) (eventlog.CID, error) {
	var value string
	err := ix.db.QueryRowContext(ctx,
		`SELECT value FROM index_entries WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eventlog.Undefined, nil
		}
		return eventlog.Undefined, fmt.Errorf("select key: %w", err)
	}
	return eventlog.CID(value), nil
}

// Has reports whether key is present.
func (ix *Index) Has(ctx context.Context, key []byte) (bool, error) {
	var one int
	err := ix.db.QueryRowContext(ctx,
		`SELECT 1 FROM index_entries WHERE key = ?`, key,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select key: %w", err)
	}
	return true, nil
}

// Set writes key to value, replacing any previous value.
func (ix *Index) Set(ctx context.Context, key []byte, value eventlog.CID) error {
	if _, err := ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO index_entries (key, value) VALUES (?, ?)`,
		key, string(value),
	); err != nil {
		return fmt.Errorf("insert key: %w", err)
	}
	return nil
}

// Delete removes key; deleting an absent key is a no-op.
func (ix *Index) Delete(ctx context.Context, key []byte) error {
	if _, err := ix.db.ExecContext(ctx,
		`DELETE FROM index_entries WHERE key = ?`, key,
	); err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	return nil
}

// SetMany writes all entries.
func (ix *Index) SetMany(ctx context.Context, entries []eventlog.IndexEntry) error {
	for _, e := range entries {
		if err := ix.Set(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMany removes all keys; absent keys are no-ops.
func (ix *Index) DeleteMany(ctx context.Context, keys [][]byte) error {
	for _, k := range keys {
		if err := ix.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Scan produces the entries within r in lexicographic key order, or reverse
// order when r.Reverse is set, honoring r.Limit. Matching rows are read
// eagerly and the cursor is closed before the iterator is handed out: the
// pool is capped at one connection, so a live cursor would starve every
// lookup issued while the scan is being consumed.
func (ix *Index) Scan(ctx context.Context, r eventlog.Range) (*eventlog.Iterator[eventlog.IndexEntry], error) {
	var conds []string
	var args []any
	if r.GreaterThan != nil {
		conds = append(conds, "key > ?")
		args = append(args, r.GreaterThan)
	}
	if r.GreaterOrEqual != nil {
		conds = append(conds, "key >= ?")
		args = append(args, r.GreaterOrEqual)
	}
	if r.LessThan != nil {
		conds = append(conds, "key < ?")
		args = append(args, r.LessThan)
	}
	if r.LessOrEqual != nil {
		conds = append(conds, "key <= ?")
		args = append(args, r.LessOrEqual)
	}

	query := `SELECT key, value FROM index_entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if r.Reverse {
		query += " ORDER BY key DESC"
	} else {
		query += " ORDER BY key ASC"
	}
	if r.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, r.Limit)
	}

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan index: %w", err)
	}
	defer rows.Close()

	var matched []eventlog.IndexEntry
	for rows.Next() {
		var key []byte
		var value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		matched = append(matched, eventlog.IndexEntry{Key: key, Value: eventlog.CID(value)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan index: %w", err)
	}

	return eventlog.NewSliceIterator(matched), nil
}
