package otel

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/terraskye/eventlog"
)

var _ eventlog.BatchIndexStore = (*TelemetryIndexStore)(nil)

// TelemetryIndexStore wraps an IndexStore with spans and metrics. Scans are
// traced with inline iterator middleware in the style of the store
// decorators: the span opens on the first Next and closes on exhaustion or
// error, recording the number of entries yielded.
type TelemetryIndexStore struct {
	next eventlog.IndexStore
}

// WithIndexStoreTelemetry decorates next.
func WithIndexStoreTelemetry(next eventlog.IndexStore) *TelemetryIndexStore {
	return &TelemetryIndexStore{next: next}
}

func (t *TelemetryIndexStore) Get(ctx context.Context, key []byte) (eventlog.CID, error) {
	id, err := t.next.Get(ctx, key)
	if err != nil {
		IndexErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("get")))
	}
	return id, err
}

func (t *TelemetryIndexStore) Has(ctx context.Context, key []byte) (bool, error) {
	ok, err := t.next.Has(ctx, key)
	if err != nil {
		IndexErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("has")))
	}
	return ok, err
}

func (t *TelemetryIndexStore) Set(ctx context.Context, key []byte, value eventlog.CID) error {
	err := t.next.Set(ctx, key, value)
	if err != nil {
		IndexErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("set")))
		return err
	}
	IndexWrites.Add(ctx, 1)
	return nil
}

func (t *TelemetryIndexStore) Delete(ctx context.Context, key []byte) error {
	err := t.next.Delete(ctx, key)
	if err != nil {
		IndexErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("delete")))
		return err
	}
	IndexDeletes.Add(ctx, 1)
	return nil
}

// SetMany with span + metrics.
func (t *TelemetryIndexStore) SetMany(ctx context.Context, entries []eventlog.IndexEntry) error {
	ctx, span := tracer.Start(ctx, "IndexStore.SetMany",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrOperation.String("set_many"), AttrBatchSize.Int(len(entries))),
	)
	defer span.End()

	err := eventlog.SetAll(ctx, t.next, entries)
	if err != nil {
		IndexErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("set_many")))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	IndexWrites.Add(ctx, int64(len(entries)))
	return nil
}

// DeleteMany with span + metrics.
func (t *TelemetryIndexStore) DeleteMany(ctx context.Context, keys [][]byte) error {
	ctx, span := tracer.Start(ctx, "IndexStore.DeleteMany",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrOperation.String("delete_many"), AttrBatchSize.Int(len(keys))),
	)
	defer span.End()

	err := eventlog.DeleteAllKeys(ctx, t.next, keys)
	if err != nil {
		IndexErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("delete_many")))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	IndexDeletes.Add(ctx, int64(len(keys)))
	return nil
}

// Scan with inline tracing middleware over the returned iterator.
func (t *TelemetryIndexStore) Scan(ctx context.Context, r eventlog.Range) (*eventlog.Iterator[eventlog.IndexEntry], error) {
	iter, err := t.next.Scan(ctx, r)
	if err != nil {
		IndexErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("scan")))
		return iter, err
	}
	IndexScans.Add(ctx, 1)

	started := false
	var startedAt time.Time
	var scanSpan trace.Span
	var entryCount int64

	return eventlog.NewIteratorFunc(func(ctx context.Context) (eventlog.IndexEntry, error) {
		if !started {
			started = true
			startedAt = time.Now()
			ctx, scanSpan = tracer.Start(ctx, "IndexStore.Scan",
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					AttrScanLimit.Int(r.Limit),
					AttrScanRev.Bool(r.Reverse),
				),
			)
		}

		if !iter.Next(ctx) {
			scanSpan.SetAttributes(AttrEntryCount.Int64(entryCount))

			err := iter.Err()
			if err == nil {
				IndexScanDuration.Record(ctx, float64(time.Since(startedAt).Milliseconds()))
				scanSpan.End()
				return eventlog.IndexEntry{}, io.EOF
			}

			IndexErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("scan")))
			scanSpan.RecordError(err)
			scanSpan.SetStatus(codes.Error, err.Error())
			scanSpan.End()
			return eventlog.IndexEntry{}, err
		}

		entryCount++
		IndexEntriesScanned.Add(ctx, 1)
		return iter.Value(), nil
	}), nil
}
