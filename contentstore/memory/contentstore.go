// Package memory provides an in-memory content-addressed backend, intended
// for tests and ephemeral logs.
package memory

import (
	"context"
	"sync"

	"github.com/terraskye/eventlog"
)

var _ eventlog.BatchContentStore = (*ContentStore)(nil)

// ContentStore keeps events in a map keyed by their content address.
// Safe for concurrent use.
type ContentStore struct {
	mu     sync.RWMutex
	events map[eventlog.CID]*eventlog.Event
}

// NewContentStore creates an empty store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		events: make(map[eventlog.CID]*eventlog.Event),
	}
}

// Key computes the content address without storing anything.
func (s *ContentStore) Key(ev *eventlog.Event) (eventlog.CID, error) {
	return eventlog.Identify(ev)
}

// Put stores the event under its content address. Re-storing existing
// content is a no-op returning the existing address.
func (s *ContentStore) Put(ctx context.Context, ev *eventlog.Event) (eventlog.CID, error) {
	if err := ctx.Err(); err != nil {
		return eventlog.Undefined, err
	}
	id, err := eventlog.Identify(ev)
	if err != nil {
		return eventlog.Undefined, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[id]; !exists {
		s.events[id] = ev
	}
	return id, nil
}

// Get returns the event stored under id, or (nil, nil) when absent.
func (s *ContentStore) Get(ctx context.Context, id eventlog.CID) (*eventlog.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events[id], nil
}

// Has reports whether id is stored.
func (s *ContentStore) Has(ctx context.Context, id eventlog.CID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.events[id]
	return ok, nil
}

// Delete removes id; deleting an absent address is a no-op.
func (s *ContentStore) Delete(ctx context.Context, id eventlog.CID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

// PutMany stores all events, returning their addresses in input order.
func (s *ContentStore) PutMany(ctx context.Context, evs []*eventlog.Event) ([]eventlog.CID, error) {
	ids := make([]eventlog.CID, len(evs))
	for i, ev := range evs {
		id, err := s.Put(ctx, ev)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// GetMany resolves all addresses in input order, nil holes for absent ones.
func (s *ContentStore) GetMany(ctx context.Context, ids []eventlog.CID) ([]*eventlog.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	evs := make([]*eventlog.Event, len(ids))
	for i, id := range ids {
		evs[i] = s.events[id]
	}
	return evs, nil
}

// HasMany reports existence per address in input order.
func (s *ContentStore) HasMany(ctx context.Context, ids []eventlog.CID) ([]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	oks := make([]bool, len(ids))
	for i, id := range ids {
		_, oks[i] = s.events[id]
	}
	return oks, nil
}

// DeleteMany removes all addresses; absent addresses are no-ops.
func (s *ContentStore) DeleteMany(ctx context.Context, ids []eventlog.CID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.events, id)
	}
	return nil
}

// Len reports the number of stored events.
func (s *ContentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Clear drops every stored event.
func (s *ContentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[eventlog.CID]*eventlog.Event)
}
