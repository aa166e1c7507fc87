package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraskye/eventlog"
	"github.com/terraskye/eventlog/fixtures"
	"github.com/terraskye/eventlog/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "eventlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eventlog.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestContent_RoundTrip(t *testing.T) {
	ctx := context.Background()
	content := openStore(t).Content()

	ev := fixtures.NewEvent().WithNote("durable").WithType("a/b").WithCreatedAt(3).Build()

	id, err := content.Put(ctx, ev)
	require.NoError(t, err)

	got, err := content.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ev.Meta, got.Meta)
	assert.JSONEq(t, string(ev.Payload), string(got.Payload))

	ok, err := content.Has(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	// Idempotent re-put.
	again, err := content.Put(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	require.NoError(t, content.Delete(ctx, id))
	got, err = content.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Absent delete is a no-op.
	require.NoError(t, content.Delete(ctx, id))
}

func TestIndex_RangeScans(t *testing.T) {
	ctx := context.Background()
	index := openStore(t).Index()

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, index.Set(ctx, []byte(k), eventlog.CID("cid-"+k)))
	}

	scan := func(r eventlog.Range) []string {
		iter, err := index.Scan(ctx, r)
		require.NoError(t, err)
		entries, err := iter.All(ctx)
		require.NoError(t, err)
		keys := make([]string, len(entries))
		for i, e := range entries {
			keys[i] = string(e.Key)
		}
		return keys
	}

	assert.Equal(t, []string{"b", "c", "d"}, scan(eventlog.Range{GreaterThan: []byte("a")}))
	assert.Equal(t, []string{"a", "b"}, scan(eventlog.Range{LessThan: []byte("c")}))
	assert.Equal(t, []string{"d", "c"}, scan(eventlog.Range{Reverse: true, Limit: 2}))
	assert.Equal(t, []string{"b", "c"},
		scan(eventlog.Range{GreaterOrEqual: []byte("b"), LessOrEqual: []byte("c")}))
}

func TestLog_OverSQLite(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	log := eventlog.New(store.Content(), store.Index())

	root, err := log.Put(ctx, fixtures.NewEvent().WithType("doc/create").Build())
	require.NoError(t, err)
	child, err := log.Put(ctx, fixtures.NewEvent().
		WithType("doc/update").
		WithParents(root).
		WithRoot(root).
		Build())
	require.NoError(t, err)

	headsIter, err := log.Keys(ctx, eventlog.QueryOptions{Head: true})
	require.NoError(t, err)
	heads, err := headsIter.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []eventlog.CID{child}, heads)

	docsIter, err := log.Keys(ctx, eventlog.QueryOptions{Type: "doc"})
	require.NoError(t, err)
	docs, err := docsIter.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []eventlog.CID{root, child}, docs)
}

func TestEntries_ResolvesContentWhileScanOutstanding(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	log := eventlog.New(store.Content(), store.Index())

	// More events than one content-resolution page forces Entries to issue
	// content lookups on the same single-connection database before the
	// index scan result is fully consumed.
	var stored []eventlog.CID
	for i := 0; i < eventlog.DefaultPageSize+10; i++ {
		id, err := log.Put(ctx, fixtures.NewEvent().Build())
		require.NoError(t, err)
		stored = append(stored, id)
	}

	iter, err := log.Entries(ctx, eventlog.QueryOptions{})
	require.NoError(t, err)
	entries, err := iter.All(ctx)
	require.NoError(t, err)

	require.Len(t, entries, len(stored))
	for i, e := range entries {
		assert.Equal(t, stored[i], e.CID)
	}
}

func TestLastTimestamp_SeedsClockAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "eventlog.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	log := eventlog.New(store.Content(), store.Index())

	first, err := log.Put(ctx, fixtures.NewEvent().Build())
	require.NoError(t, err)
	firstEv, err := log.Get(ctx, first)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	last, err := store.LastTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstEv.Meta.CreatedAt, last)

	reopened := eventlog.New(store.Content(), store.Index(),
		eventlog.WithClock(eventlog.NewLamportClockAt(last)))

	second, err := reopened.Put(ctx, fixtures.NewEvent().Build())
	require.NoError(t, err)
	secondEv, err := reopened.Get(ctx, second)
	require.NoError(t, err)
	assert.Greater(t, secondEv.Meta.CreatedAt, firstEv.Meta.CreatedAt)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	log := eventlog.New(store.Content(), store.Index())

	id, err := log.Put(ctx, fixtures.NewEvent().Build())
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))

	ok, err := store.Content().Has(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	last, err := store.LastTimestamp(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)
}
