package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/terraskye/eventlog"
)

var _ eventlog.BatchContentStore = (*Content)(nil)

// Content is the content-addressed facade over the shared database.
type Content struct {
	db queryer
}

// Key computes the content address without storing anything.
func (c *Content) Key(ev *eventlog.Event) (eventlog.CID, error) {
	return eventlog.Identify(ev)
}

// Put stores the event under its content address. Re-storing existing
// content is a no-op returning the existing address.
func (c *Content) Put(ctx context.Context, ev *eventlog.Event) (eventlog.CID, error) {
	id, err := eventlog.Identify(ev)
	if err != nil {
		return eventlog.Undefined, err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return eventlog.Undefined, fmt.Errorf("marshal event: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO content (cid, data, created_at) VALUES (?, ?, ?)`,
		string(id), data, int64(ev.Meta.CreatedAt),
	)
	if err != nil {
		return eventlog.Undefined, fmt.Errorf("insert %s: %w", id, err)
	}
	return id, nil
}

// Get returns the event stored under id, or (nil, nil) when absent.
func (c *Content) Get(ctx context.Context, id eventlog.CID) (*eventlog.Event, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT data FROM content WHERE cid = ?`, string(id),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select %s: %w", id, err)
	}
	var ev eventlog.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", id, err)
	}
	return &ev, nil
}

// Has reports whether id is stored.
func (c *Content) Has(ctx context.Context, id eventlog.CID) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM content WHERE cid = ?`, string(id),
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select %s: %w", id, err)
	}
	return true, nil
}

// Delete removes id; deleting an absent address is a no-op.
func (c *Content) Delete(ctx context.Context, id eventlog.CID) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM content WHERE cid = ?`, string(id),
	); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// PutMany stores all events, returning their addresses in input order.
func (c *Content) PutMany(ctx context.Context, evs []*eventlog.Event) ([]eventlog.CID, error) {
	ids := make([]eventlog.CID, len(evs))
	for i, ev := range evs {
		id, err := c.Put(ctx, ev)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// GetMany resolves all addresses in input order, nil holes for absent ones.
func (c *Content) GetMany(ctx context.Context, ids []eventlog.CID) ([]*eventlog.Event, error) {
	evs := make([]*eventlog.Event, len(ids))
	for i, id := range ids {
		ev, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		evs[i] = ev
	}
	return evs, nil
}

// HasMany reports existence per address in input order.
func (c *Content) HasMany(ctx context.Context, ids []eventlog.CID) ([]bool, error) {
	oks := make([]bool, len(ids))
	for i, id := range ids {
		ok, err := c.Has(ctx, id)
		if err != nil {
			return nil, err
		}
		oks[i] = ok
	}
	return oks, nil
}

// DeleteMany removes all addresses; absent addresses are no-ops.
func (c *Content) DeleteMany(ctx context.Context, ids []eventlog.CID) error {
	for _, id := range ids {
		if err := c.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
