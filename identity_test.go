package eventlog_test

import (
	"testing"

	"github.com/terraskye/eventlog"
	"github.com/terraskye/eventlog/fixtures"
)

func TestIdentify_Deterministic(t *testing.T) {
	ev := fixtures.NewEvent().WithNote("same").WithType("a/b").WithCreatedAt(3).Build()

	a, err := eventlog.Identify(ev)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	b, err := eventlog.Identify(ev)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}

	if a != b {
		t.Errorf("expected stable address, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected hex sha256 address, got %q", a)
	}
}

func TestIdentify_TimestampChangesAddress(t *testing.T) {
	payload := fixtures.Payload{ID: "fixed"}
	a, err := eventlog.Identify(fixtures.NewEvent().WithPayload(payload).WithCreatedAt(1).Build())
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	b, err := eventlog.Identify(fixtures.NewEvent().WithPayload(payload).WithCreatedAt(2).Build())
	if err != nil {
		t.Fatalf("identify: %v", err)
	}

	if a == b {
		t.Error("identical histories at different timestamps must not collide")
	}
}

func TestIdentify_PayloadChangesAddress(t *testing.T) {
	a, err := eventlog.Identify(fixtures.NewEvent().WithPayload(fixtures.Payload{ID: "x"}).WithCreatedAt(1).Build())
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	b, err := eventlog.Identify(fixtures.NewEvent().WithPayload(fixtures.Payload{ID: "y"}).WithCreatedAt(1).Build())
	if err != nil {
		t.Fatalf("identify: %v", err)
	}

	if a == b {
		t.Error("different payloads must not collide")
	}
}
