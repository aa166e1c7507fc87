package eventlog

import "context"

// ContentStore is the deduplicating content-addressed backend consumed by
// the log. It is externally owned: the log holds a non-owning reference,
// performs no lifecycle management of it, and tolerates concurrent external
// mutation.
//
// Implementations must guarantee:
//   - Key is pure and deterministic over the event's canonical encoding.
//   - Put is idempotent: storing a value whose address already exists is a
//     successful no-op returning the existing CID without re-writing.
//   - Delete of an absent address is a successful no-op.
//   - Get returns (nil, nil) for an absent address.
type ContentStore interface {
	Key(ev *Event) (CID, error)
	Put(ctx context.Context, ev *Event) (CID, error)
	Get(ctx context.Context, id CID) (*Event, error)
	Has(ctx context.Context, id CID) (bool, error)
	Delete(ctx context.Context, id CID) error
}

// BatchContentStore is the optional bulk extension of ContentStore. Batch
// results preserve input order, one slot per input; absent addresses yield
// nil holes rather than errors.
//
// Backends without a native bulk API need not implement it: the package
// level PutAll/GetAll/HasAll/DeleteAll helpers fall back to sequential
// single-item calls, so callers always see a batch-shaped result.
type BatchContentStore interface {
	ContentStore

	PutMany(ctx context.Context, evs []*Event) ([]CID, error)
	GetMany(ctx context.Context, ids []CID) ([]*Event, error)
	HasMany(ctx context.Context, ids []CID) ([]bool, error)
	DeleteMany(ctx context.Context, ids []CID) error
}

// PutAll stores every event, using the backend's bulk API when it has one.
func PutAll(ctx context.Context, s ContentStore, evs []*Event) ([]CID, error) {
	if b, ok := s.(BatchContentStore); ok {
		return b.PutMany(ctx, evs)
	}
	ids := make([]CID, len(evs))
	for i, ev := range evs {
		id, err := s.Put(ctx, ev)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// GetAll resolves every address, with nil holes for absent ones.
func GetAll(ctx context.Context, s ContentStore, ids []CID) ([]*Event, error) {
	if b, ok := s.(BatchContentStore); ok {
		return b.GetMany(ctx, ids)
	}
	evs := make([]*Event, len(ids))
	for i, id := range ids {
		ev, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		evs[i] = ev
	}
	return evs, nil
}

// HasAll reports existence per address.
func HasAll(ctx context.Context, s ContentStore, ids []CID) ([]bool, error) {
	if b, ok := s.(BatchContentStore); ok {
		return b.HasMany(ctx, ids)
	}
	oks := make([]bool, len(ids))
	for i, id := range ids {
		ok, err := s.Has(ctx, id)
		if err != nil {
			return nil, err
		}
		oks[i] = ok
	}
	return oks, nil
}

// DeleteAll removes every address; absent addresses are no-ops.
func DeleteAll(ctx context.Context, s ContentStore, ids []CID) error {
	if b, ok := s.(BatchContentStore); ok {
		return b.DeleteMany(ctx, ids)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
