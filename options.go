package eventlog

// QueryOptions narrows and bounds the query surface of the log.
//
// Since is a set of content addresses whose maximum timestamp becomes the
// exclusive lower time bound; it defaults to the dawn of the log. Addresses
// in Since that no longer resolve are ignored. Root takes precedence over
// Type; Head selects the current DAG frontier and ignores the time bound.
// Limit <= 0 means unlimited.
type QueryOptions struct {
	Since   []CID
	Type    string
	Root    CID
	Head    bool
	Reverse bool
	Limit   int
}

// Option configures a Log.
type Option func(*Log)

// WithClock replaces the default Lamport clock.
func WithClock(c Clock) Option {
	return func(l *Log) { l.clock = c }
}

// WithTypeSeparator overrides the namespace separator used when splitting
// event types into scope segments.
func WithTypeSeparator(sep string) Option {
	return func(l *Log) { l.separator = sep }
}

// WithPageSize overrides the number of identifiers resolved per content
// lookup batch while streaming entries.
func WithPageSize(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.pageSize = n
		}
	}
}
