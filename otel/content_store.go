package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/terraskye/eventlog"
)

var _ eventlog.BatchContentStore = (*TelemetryContentStore)(nil)

// TelemetryContentStore wraps a ContentStore with spans and metrics. It
// always exposes the batch contract, delegating through the package-level
// fallback helpers when the wrapped store has no native bulk API.
type TelemetryContentStore struct {
	next eventlog.ContentStore
}

// WithContentStoreTelemetry decorates next.
func WithContentStoreTelemetry(next eventlog.ContentStore) *TelemetryContentStore {
	return &TelemetryContentStore{next: next}
}

func (t *TelemetryContentStore) record(ctx context.Context, op string, start time.Time, err error) {
	ContentDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(AttrOperation.String(op)),
	)
	if err != nil {
		ContentErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(op)))
	}
}

// Key forwards to the wrapped store; pure, so untraced.
func (t *TelemetryContentStore) Key(ev *eventlog.Event) (eventlog.CID, error) {
	return t.next.Key(ev)
}

// Put with span + metrics.
func (t *TelemetryContentStore) Put(ctx context.Context, ev *eventlog.Event) (eventlog.CID, error) {
	ctx, span := tracer.Start(ctx, "ContentStore.Put",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrOperation.String("put")),
	)
	defer span.End()

	start := time.Now()
	id, err := t.next.Put(ctx, ev)
	t.record(ctx, "put", start, err)
	ContentPuts.Add(ctx, 1)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return id, err
	}
	span.SetAttributes(AttrCID.String(id.String()))
	return id, nil
}

// Get with span + metrics; a miss is counted, not an error.
func (t *TelemetryContentStore) Get(ctx context.Context, id eventlog.CID) (*eventlog.Event, error) {
	ctx, span := tracer.Start(ctx, "ContentStore.Get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrOperation.String("get"), AttrCID.String(id.String())),
	)
	defer span.End()

	start := time.Now()
	ev, err := t.next.Get(ctx, id)
	t.record(ctx, "get", start, err)
	ContentGets.Add(ctx, 1)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if ev == nil {
		ContentMisses.Add(ctx, 1)
	}
	return ev, nil
}

// Has with metrics.
func (t *TelemetryContentStore) Has(ctx context.Context, id eventlog.CID) (bool, error) {
	start := time.Now()
	ok, err := t.next.Has(ctx, id)
	t.record(ctx, "has", start, err)
	return ok, err
}

// Delete with metrics.
func (t *TelemetryContentStore) Delete(ctx context.Context, id eventlog.CID) error {
	start := time.Now()
	err := t.next.Delete(ctx, id)
	t.record(ctx, "delete", start, err)
	return err
}

// PutMany with span + metrics.
func (t *TelemetryContentStore) PutMany(ctx context.Context, evs []*eventlog.Event) ([]eventlog.CID, error) {
	ctx, span := tracer.Start(ctx, "ContentStore.PutMany",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrOperation.String("put_many"), AttrBatchSize.Int(len(evs))),
	)
	defer span.End()

	start := time.Now()
	ids, err := eventlog.PutAll(ctx, t.next, evs)
	t.record(ctx, "put_many", start, err)
	ContentPuts.Add(ctx, int64(len(evs)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return ids, err
}

// GetMany with span + metrics.
func (t *TelemetryContentStore) GetMany(ctx context.Context, ids []eventlog.CID) ([]*eventlog.Event, error) {
	ctx, span := tracer.Start(ctx, "ContentStore.GetMany",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrOperation.String("get_many"), AttrBatchSize.Int(len(ids))),
	)
	defer span.End()

	start := time.Now()
	evs, err := eventlog.GetAll(ctx, t.next, ids)
	t.record(ctx, "get_many", start, err)
	ContentGets.Add(ctx, int64(len(ids)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	for _, ev := range evs {
		if ev == nil {
			ContentMisses.Add(ctx, 1)
		}
	}
	return evs, nil
}

// HasMany with metrics.
func (t *TelemetryContentStore) HasMany(ctx context.Context, ids []eventlog.CID) ([]bool, error) {
	start := time.Now()
	oks, err := eventlog.HasAll(ctx, t.next, ids)
	t.record(ctx, "has_many", start, err)
	return oks, err
}

// DeleteMany with metrics.
func (t *TelemetryContentStore) DeleteMany(ctx context.Context, ids []eventlog.CID) error {
	start := time.Now()
	err := eventlog.DeleteAll(ctx, t.next, ids)
	t.record(ctx, "delete_many", start, err)
	return err
}
