package eventlog

import "context"

// IndexEntry is one row of the secondary index: a composite byte key mapping
// to a content address. Lexicographic key order corresponds to causal/time
// order within one key family.
type IndexEntry struct {
	Key   []byte
	Value CID
}

// Range bounds a scan over the index. At most one lower and one upper bound
// may be set; all bounds are optional. Limit <= 0 means unlimited.
type Range struct {
	GreaterThan    []byte
	GreaterOrEqual []byte
	LessThan       []byte
	LessOrEqual    []byte
	Reverse        bool
	Limit          int
}

// IndexStore is the sorted range-queryable backend the log writes its index
// entries to. Like the ContentStore it is externally owned and shared.
//
// Scan produces a lazy, finite, non-restartable sequence of entries in
// lexicographic byte order of their keys, or reverse-lexicographic order
// when Reverse is set. Any backend with these semantics is substitutable;
// the log depends only on this contract, never on the backing structure.
type IndexStore interface {
	Get(ctx context.Context, key []byte) (CID, error)
	Has(ctx context.Context, key []byte) (bool, error)
	Set(ctx context.Context, key []byte, value CID) error
	Delete(ctx context.Context, key []byte) error
	Scan(ctx context.Context, r Range) (*Iterator[IndexEntry], error)
}

// BatchIndexStore is the optional bulk extension of IndexStore. As with
// BatchContentStore, the package-level helpers fall back to sequential
// single-item calls for backends that do not implement it.
type BatchIndexStore interface {
	IndexStore

	SetMany(ctx context.Context, entries []IndexEntry) error
	DeleteMany(ctx context.Context, keys [][]byte) error
}

// SetAll writes every entry, using the backend's bulk API when it has one.
func SetAll(ctx context.Context, s IndexStore, entries []IndexEntry) error {
	if b, ok := s.(BatchIndexStore); ok {
		return b.SetMany(ctx, entries)
	}
	for _, e := range entries {
		if err := s.Set(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllKeys removes every key; absent keys are no-ops.
func DeleteAllKeys(ctx context.Context, s IndexStore, keys [][]byte) error {
	if b, ok := s.(BatchIndexStore); ok {
		return b.DeleteMany(ctx, keys)
	}
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
