// Package memory provides an in-memory sorted index backend over a B-tree,
// the reference implementation of the range-query contract.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/terraskye/eventlog"
)

var _ eventlog.BatchIndexStore = (*IndexStore)(nil)

// btreeDegree is the fan-out of the backing tree. The log depends only on
// the range-query contract, never on this.
const btreeDegree = 32

func entryLess(a, b eventlog.IndexEntry) bool {
	return bytes.Compare(a.Key, b.Key) < 0
}

// IndexStore keeps entries in a B-tree ordered by bytes.Compare over their
// keys. Safe for concurrent use; scans snapshot the matching window under a
// read lock so concurrent writers never invalidate a running iteration.
type IndexStore struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[eventlog.IndexEntry]
}

// NewIndexStore creates an empty store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		tree: btree.NewG(btreeDegree, entryLess),
	}
}

// Get returns the value stored under key, or Undefined when absent.
func (s *IndexStore) Get(ctx context.Context, key []byte) (eventlog.CID, error) {
	if err := ctx.Err(); err != nil {
		return eventlog.Undefined, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.tree.Get(eventlog.IndexEntry{Key: key}); ok {
		return e.Value, nil
	}
	return eventlog.Undefined, nil
}

// Has reports whether key is present.
func (s *IndexStore) Has(ctx context.Context, key []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Has(eventlog.IndexEntry{Key: key}), nil
}

// Set writes key to value, replacing any previous value.
func (s *IndexStore) Set(ctx context.Context, key []byte, value eventlog.CID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.ReplaceOrInsert(eventlog.IndexEntry{Key: key, Value: value})
	return nil
}

// Delete removes key; deleting an absent key is a no-op.
func (s *IndexStore) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Delete(eventlog.IndexEntry{Key: key})
	return nil
}

// SetMany writes all entries under one lock acquisition.
func (s *IndexStore) SetMany(ctx context.Context, entries []eventlog.IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.tree.ReplaceOrInsert(e)
	}
	return nil
}

// DeleteMany removes all keys under one lock acquisition.
func (s *IndexStore) DeleteMany(ctx context.Context, keys [][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.tree.Delete(eventlog.IndexEntry{Key: k})
	}
	return nil
}

// Scan produces the entries within r in lexicographic key order, or reverse
// order when r.Reverse is set, honoring r.Limit.
func (s *IndexStore) Scan(ctx context.Context, r eventlog.Range) (*eventlog.Iterator[eventlog.IndexEntry], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []eventlog.IndexEntry
	add := func(e eventlog.IndexEntry) bool {
		matched = append(matched, e)
		return r.Limit <= 0 || len(matched) < r.Limit
	}

	if r.Reverse {
		visit := func(e eventlog.IndexEntry) bool {
			if !withinUpper(e.Key, r) {
				return true // pivot itself when the upper bound is exclusive
			}
			if !withinLower(e.Key, r) {
				return false
			}
			return add(e)
		}
		switch {
		case r.LessOrEqual != nil:
			s.tree.DescendLessOrEqual(eventlog.IndexEntry{Key: r.LessOrEqual}, visit)
		case r.LessThan != nil:
			s.tree.DescendLessOrEqual(eventlog.IndexEntry{Key: r.LessThan}, visit)
		default:
			s.tree.Descend(visit)
		}
	} else {
		visit := func(e eventlog.IndexEntry) bool {
			if !withinLower(e.Key, r) {
				return true // pivot itself when the lower bound is exclusive
			}
			if !withinUpper(e.Key, r) {
				return false
			}
			return add(e)
		}
		switch {
		case r.GreaterOrEqual != nil:
			s.tree.AscendGreaterOrEqual(eventlog.IndexEntry{Key: r.GreaterOrEqual}, visit)
		case r.GreaterThan != nil:
			s.tree.AscendGreaterOrEqual(eventlog.IndexEntry{Key: r.GreaterThan}, visit)
		default:
			s.tree.Ascend(visit)
		}
	}

	return eventlog.NewSliceIterator(matched), nil
}

func withinLower(key []byte, r eventlog.Range) bool {
	if r.GreaterThan != nil && bytes.Compare(key, r.GreaterThan) <= 0 {
		return false
	}
	if r.GreaterOrEqual != nil && bytes.Compare(key, r.GreaterOrEqual) < 0 {
		return false
	}
	return true
}

func withinUpper(key []byte, r eventlog.Range) bool {
	if r.LessThan != nil && bytes.Compare(key, r.LessThan) >= 0 {
		return false
	}
	if r.LessOrEqual != nil && bytes.Compare(key, r.LessOrEqual) > 0 {
		return false
	}
	return true
}

// Len reports the number of stored entries.
func (s *IndexStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// Clear drops every stored entry.
func (s *IndexStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Clear(false)
}
