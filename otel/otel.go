// Package otel decorates the event log's backend contracts with
// OpenTelemetry traces and metrics. The decorators wrap externally owned
// stores; composition happens at construction time:
//
//	content := otel.WithContentStoreTelemetry(memory.NewContentStore())
//	index := otel.WithIndexStoreTelemetry(memory.NewIndexStore())
//	log := eventlog.New(content, index)
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/terraskye/eventlog"
)

const instrumentationName = "github.com/terraskye/eventlog"

// Semantic attribute keys following OpenTelemetry conventions
const (
	AttrOperation  = attribute.Key("eventlog.operation")
	AttrCID        = attribute.Key("eventlog.event.cid")
	AttrBatchSize  = attribute.Key("eventlog.batch.size")
	AttrScanLimit  = attribute.Key("eventlog.scan.limit")
	AttrScanRev    = attribute.Key("eventlog.scan.reverse")
	AttrEntryCount = attribute.Key("eventlog.scan.entry_count")
)

var (
	meter  = otel.Meter(instrumentationName, metric.WithInstrumentationVersion(eventlog.InstrumentationVersion))
	tracer = otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(eventlog.InstrumentationVersion))

	// ContentStore metrics
	ContentPuts, _ = meter.Int64Counter(
		"eventlog.contentstore.puts",
		metric.WithDescription("Number of content put operations"),
		metric.WithUnit("{operation}"),
	)

	ContentGets, _ = meter.Int64Counter(
		"eventlog.contentstore.gets",
		metric.WithDescription("Number of content get operations"),
		metric.WithUnit("{operation}"),
	)

	ContentMisses, _ = meter.Int64Counter(
		"eventlog.contentstore.misses",
		metric.WithDescription("Number of content gets that resolved nothing"),
		metric.WithUnit("{operation}"),
	)

	ContentErrors, _ = meter.Int64Counter(
		"eventlog.contentstore.errors",
		metric.WithDescription("Number of content store errors"),
		metric.WithUnit("{error}"),
	)

	ContentDuration, _ = meter.Float64Histogram(
		"eventlog.contentstore.duration",
		metric.WithDescription("Content store operation duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	// IndexStore metrics
	IndexWrites, _ = meter.Int64Counter(
		"eventlog.indexstore.writes",
		metric.WithDescription("Number of index entries written"),
		metric.WithUnit("{entry}"),
	)

	IndexDeletes, _ = meter.Int64Counter(
		"eventlog.indexstore.deletes",
		metric.WithDescription("Number of index entries deleted"),
		metric.WithUnit("{entry}"),
	)

	IndexScans, _ = meter.Int64Counter(
		"eventlog.indexstore.scans",
		metric.WithDescription("Number of index range scans"),
		metric.WithUnit("{operation}"),
	)

	IndexEntriesScanned, _ = meter.Int64Counter(
		"eventlog.indexstore.entries_scanned",
		metric.WithDescription("Number of index entries yielded by scans"),
		metric.WithUnit("{entry}"),
	)

	IndexErrors, _ = meter.Int64Counter(
		"eventlog.indexstore.errors",
		metric.WithDescription("Number of index store errors"),
		metric.WithUnit("{error}"),
	)

	IndexScanDuration, _ = meter.Float64Histogram(
		"eventlog.indexstore.scan.duration",
		metric.WithDescription("Index scan duration from first Next to exhaustion"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
)
