package eventlog

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// DefaultPageSize bounds how many content lookups Entries keeps in flight
// while resolving a streamed page of identifiers.
const DefaultPageSize = 50

// Log is a content-addressed, append-only store for causally ordered
// events. It orchestrates a Clock, a ContentStore and an IndexStore, all of
// which are externally constructed and externally owned; the Log never
// assumes exclusive ownership of the backends and performs no lifecycle
// management of them.
//
// Put serializes per Log instance (mutex), the recommended default for the
// multi-phase index/content/cleanup sequence, which is not wrapped in a
// cross-store transaction. Queries run without the lock and tolerate
// concurrent external mutation: identifiers whose content has since been
// deleted are skipped, not surfaced as errors.
type Log struct {
	mu        sync.Mutex
	clock     Clock
	content   ContentStore
	index     IndexStore
	separator string
	pageSize  int
}

// New creates a Log over the given backends.
func New(content ContentStore, index IndexStore, opts ...Option) *Log {
	l := &Log{
		clock:     NewLamportClock(),
		content:   content,
		index:     index,
		separator: DefaultTypeSeparator,
		pageSize:  DefaultPageSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// resolveTimestamp computes the causal timestamp of an event about to be
// stored. The floor is one past the newest parent; a caller-supplied
// CreatedAt acts as a further lower bound.
//
// Events carrying a CreatedAt hint are stamped deterministically with
// max(hint, floor) and the clock only observes the result; this is what
// keeps Put idempotent, since the timestamp is baked into the content
// address. Events without a hint receive a fresh strictly monotonic tick.
func (l *Log) resolveTimestamp(ev *Event, parents []*Event) uint64 {
	ref := ev.Meta.CreatedAt
	for _, p := range parents {
		if p.Meta.CreatedAt+1 > ref {
			ref = p.Meta.CreatedAt + 1
		}
	}
	if ev.Meta.CreatedAt == 0 {
		return l.clock.Tick(ref)
	}
	l.clock.Observe(ref)
	return ref
}

// Put validates and ingests one event, returning its content address.
//
// The sequence is: validate, resolve parents (all must exist), stamp the
// causal timestamp, address the stamped event, write the index entries,
// persist the content, and drop the head marker of every parent. When the
// address already exists Put returns it without touching the index.
// Each phase failure carries its own Phase tag in an OpError
// so a dangling index, a missing write and a stale head entry stay
// distinguishable. A head-cleanup failure means stale head markers were
// left behind and requires repair.
func (l *Log) Put(ctx context.Context, ev *Event) (CID, error) {
	if err := ctx.Err(); err != nil {
		return Undefined, err
	}
	if len(ev.Meta.Parents) > 0 && !ev.Meta.Root.Defined() {
		return Undefined, &ValidationError{Reason: "events with parents must carry a root"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	parents, err := GetAll(ctx, l.content, ev.Meta.Parents)
	if err != nil {
		return Undefined, fmt.Errorf("resolve parents: %w", err)
	}
	var missing []CID
	resolved := make([]*Event, 0, len(parents))
	for i, p := range parents {
		if p == nil {
			missing = append(missing, ev.Meta.Parents[i])
			continue
		}
		resolved = append(resolved, p)
	}
	if len(missing) > 0 {
		return Undefined, &MissingDependencyError{Missing: missing}
	}

	stamped := &Event{
		Payload: ev.Payload,
		Meta: Meta{
			Parents:   ev.Meta.Parents,
			Root:      ev.Meta.Root,
			Type:      ev.Meta.Type,
			CreatedAt: l.resolveTimestamp(ev, resolved),
		},
	}

	id, err := l.content.Key(stamped)
	if err != nil {
		return Undefined, err
	}
	exists, err := l.content.Has(ctx, id)
	if err != nil {
		return Undefined, fmt.Errorf("check %s: %w", id, err)
	}
	if exists {
		return id, nil
	}

	if err := ctx.Err(); err != nil {
		return Undefined, err
	}

	keys := DeriveKeys(id, stamped, false, l.separator)
	entries := make([]IndexEntry, len(keys))
	for i, k := range keys {
		entries[i] = IndexEntry{Key: k, Value: id}
	}
	if err := SetAll(ctx, l.index, entries); err != nil {
		return Undefined, &OpError{Phase: PhaseIndexWrite, CID: id, Keys: keys, Err: err}
	}

	if _, err := l.content.Put(ctx, stamped); err != nil {
		return Undefined, &OpError{Phase: PhaseContentWrite, CID: id, Err: err}
	}

	staleHeads := make([][]byte, len(stamped.Meta.Parents))
	for i, parent := range stamped.Meta.Parents {
		staleHeads[i] = DeriveKeys(parent, nil, true, l.separator)[0]
	}
	if err := DeleteAllKeys(ctx, l.index, staleHeads); err != nil {
		return Undefined, &OpError{Phase: PhaseHeadCleanup, CID: id, Keys: staleHeads, Err: err}
	}

	return id, nil
}

// PutMany applies Put per item, yielding one PutResult per input in input
// order. A failing item never aborts the batch; only cancellation
// terminates the stream early.
func (l *Log) PutMany(ctx context.Context, evs []*Event) *Iterator[PutResult] {
	index := 0
	return NewIteratorFunc(func(ctx context.Context) (PutResult, error) {
		if err := ctx.Err(); err != nil {
			return PutResult{}, err
		}
		if index >= len(evs) {
			return PutResult{}, io.EOF
		}
		ev := evs[index]
		index++
		id, err := l.Put(ctx, ev)
		if err != nil {
			return PutResult{Err: err}, nil
		}
		return PutResult{CID: id}, nil
	})
}

// Get resolves one address, returning (nil, nil) when absent.
func (l *Log) Get(ctx context.Context, id CID) (*Event, error) {
	return l.content.Get(ctx, id)
}

// GetMany resolves addresses in input order with nil holes for absent ones.
func (l *Log) GetMany(ctx context.Context, ids []CID) ([]*Event, error) {
	return GetAll(ctx, l.content, ids)
}

// Has reports whether an address is stored.
func (l *Log) Has(ctx context.Context, id CID) (bool, error) {
	return l.content.Has(ctx, id)
}

// HasMany reports existence per address in input order.
func (l *Log) HasMany(ctx context.Context, ids []CID) ([]bool, error) {
	return HasAll(ctx, l.content, ids)
}

// sinceCheckpoint resolves a Since set to the position to resume after: the
// stored member with the greatest (timestamp, identifier) pair, which is
// the furthest point along a family's key order. Addresses that no longer
// resolve count as the dawn of the log.
func (l *Log) sinceCheckpoint(ctx context.Context, since []CID) (uint64, CID, error) {
	if len(since) == 0 {
		return 0, Undefined, nil
	}
	evs, err := GetAll(ctx, l.content, since)
	if err != nil {
		return 0, Undefined, fmt.Errorf("resolve since set: %w", err)
	}
	var ts uint64
	id := Undefined
	for i, ev := range evs {
		if ev == nil {
			continue
		}
		if ev.Meta.CreatedAt > ts || (ev.Meta.CreatedAt == ts && since[i] > id) {
			ts = ev.Meta.CreatedAt
			id = since[i]
		}
	}
	return ts, id, nil
}

// Keys streams the addresses matching opts in time order (or reverse time
// order). The last address yielded is the resumption checkpoint: feeding it
// back as Since continues the scan with no overlap and no gap, even across
// events whose hinted stamps collide on one timestamp.
func (l *Log) Keys(ctx context.Context, opts QueryOptions) (*Iterator[CID], error) {
	sinceTS, sinceID, err := l.sinceCheckpoint(ctx, opts.Since)
	if err != nil {
		return nil, err
	}

	rng := DeriveQueryRange(sinceTS, sinceID, opts.Type, opts.Root, opts.Head)
	rng.Reverse = opts.Reverse
	rng.Limit = opts.Limit

	scan, err := l.index.Scan(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("scan index: %w", err)
	}

	return NewIteratorFunc(func(ctx context.Context) (CID, error) {
		if !scan.Next(ctx) {
			if err := scan.Err(); err != nil {
				return Undefined, err
			}
			return Undefined, io.EOF
		}
		return scan.Value().Value, nil
	}), nil
}

// Entries streams (address, event) pairs matching opts. Addresses are
// buffered into pages of the configured size before content resolution, to
// bound concurrent lookups without materializing the whole result set.
// Addresses that no longer resolve are skipped silently.
func (l *Log) Entries(ctx context.Context, opts QueryOptions) (*Iterator[Entry], error) {
	keys, err := l.Keys(ctx, opts)
	if err != nil {
		return nil, err
	}

	var page []Entry
	var pos int
	exhausted := false

	return NewIteratorFunc(func(ctx context.Context) (Entry, error) {
		for {
			if pos < len(page) {
				e := page[pos]
				pos++
				return e, nil
			}
			if exhausted {
				return Entry{}, io.EOF
			}

			ids := make([]CID, 0, l.pageSize)
			for len(ids) < l.pageSize && keys.Next(ctx) {
				ids = append(ids, keys.Value())
			}
			if err := keys.Err(); err != nil {
				return Entry{}, err
			}
			if len(ids) < l.pageSize {
				exhausted = true
			}
			if len(ids) == 0 {
				return Entry{}, io.EOF
			}

			evs, err := GetAll(ctx, l.content, ids)
			if err != nil {
				return Entry{}, fmt.Errorf("resolve page: %w", err)
			}
			page = page[:0]
			pos = 0
			for i, ev := range evs {
				if ev != nil {
					page = append(page, Entry{CID: ids[i], Event: ev})
				}
			}
		}
	}), nil
}

// Values streams just the events matching opts.
func (l *Log) Values(ctx context.Context, opts QueryOptions) (*Iterator[*Event], error) {
	entries, err := l.Entries(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewIteratorFunc(func(ctx context.Context) (*Event, error) {
		if !entries.Next(ctx) {
			if err := entries.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return entries.Value().Event, nil
	}), nil
}

// All yields every stored (address, event) pair in chronological order.
func (l *Log) All(ctx context.Context) (*Iterator[Entry], error) {
	return l.Entries(ctx, QueryOptions{})
}
