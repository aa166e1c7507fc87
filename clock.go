package eventlog

import "sync/atomic"

// Clock is the hybrid logical timestamp source stamped onto events.
//
// Tick returns a value strictly greater than every value it has previously
// returned and strictly greater than ref. Observe feeds an externally
// assigned timestamp back into the clock so that later Tick outputs sort
// after it. Both must uphold their bounds under concurrent callers sharing
// one instance.
type Clock interface {
	Tick(ref uint64) uint64
	Observe(ts uint64)
}

// LamportClock is the default Clock: an atomic counter advanced by
// compare-and-swap, so interleaved calls still observe strict monotonicity
// without a mutex.
type LamportClock struct {
	now atomic.Uint64
}

// NewLamportClock creates a clock starting at zero.
func NewLamportClock() *LamportClock {
	return &LamportClock{}
}

// NewLamportClockAt creates a clock whose next Tick exceeds start. Used to
// resume from the highest timestamp observed in an existing log.
func NewLamportClockAt(start uint64) *LamportClock {
	c := &LamportClock{}
	c.now.Store(start)
	return c
}

// Tick advances the clock past both its own prior output and ref, and
// returns the new value. Exhausting the uint64 range is unrecoverable and
// panics rather than handing out a non-monotonic timestamp.
func (c *LamportClock) Tick(ref uint64) uint64 {
	for {
		prev := c.now.Load()
		next := prev + 1
		if ref >= next {
			next = ref + 1
		}
		if next == 0 {
			panic("eventlog: logical clock exhausted")
		}
		if c.now.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Observe raises the clock to at least ts. Ticks that race with Observe may
// order before or after ts; all later Ticks sort after it.
func (c *LamportClock) Observe(ts uint64) {
	for {
		prev := c.now.Load()
		if prev >= ts {
			return
		}
		if c.now.CompareAndSwap(prev, ts) {
			return
		}
	}
}

// Now returns the last value handed out without advancing the clock.
func (c *LamportClock) Now() uint64 {
	return c.now.Load()
}
