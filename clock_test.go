package eventlog_test

import (
	"sync"
	"testing"

	"github.com/terraskye/eventlog"
)

func TestLamportClock_TickAdvances(t *testing.T) {
	clock := eventlog.NewLamportClock()

	a := clock.Tick(0)
	b := clock.Tick(0)
	c := clock.Tick(0)

	if !(a < b && b < c) {
		t.Errorf("expected strictly increasing ticks, got %d, %d, %d", a, b, c)
	}
}

func TestLamportClock_TickRespectsReference(t *testing.T) {
	clock := eventlog.NewLamportClock()

	got := clock.Tick(100)
	if got <= 100 {
		t.Errorf("expected tick > 100, got %d", got)
	}

	// A stale reference must not rewind the clock.
	next := clock.Tick(5)
	if next <= got {
		t.Errorf("expected tick > %d, got %d", got, next)
	}
}

func TestLamportClock_Observe(t *testing.T) {
	clock := eventlog.NewLamportClock()

	clock.Observe(50)
	if got := clock.Now(); got != 50 {
		t.Errorf("expected clock at 50, got %d", got)
	}

	// Observing the past is a no-op.
	clock.Observe(10)
	if got := clock.Now(); got != 50 {
		t.Errorf("expected clock still at 50, got %d", got)
	}

	if got := clock.Tick(0); got <= 50 {
		t.Errorf("expected tick > 50 after observe, got %d", got)
	}
}

func TestLamportClock_StartAt(t *testing.T) {
	clock := eventlog.NewLamportClockAt(1000)
	if got := clock.Tick(0); got != 1001 {
		t.Errorf("expected first tick 1001, got %d", got)
	}
}

func TestLamportClock_ConcurrentTicksUnique(t *testing.T) {
	clock := eventlog.NewLamportClock()

	const goroutines = 50
	const ticksEach = 200

	var wg sync.WaitGroup
	out := make(chan uint64, goroutines*ticksEach)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < ticksEach; j++ {
				out <- clock.Tick(0)
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[uint64]bool, goroutines*ticksEach)
	for ts := range out {
		if seen[ts] {
			t.Fatalf("timestamp %d handed out twice", ts)
		}
		seen[ts] = true
	}
	if len(seen) != goroutines*ticksEach {
		t.Errorf("expected %d unique timestamps, got %d", goroutines*ticksEach, len(seen))
	}
}
