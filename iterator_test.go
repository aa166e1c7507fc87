package eventlog_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/terraskye/eventlog"
)

func TestSliceIterator_YieldsAll(t *testing.T) {
	iter := eventlog.NewSliceIterator([]int{1, 2, 3})

	got, err := iter.All(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("expected [1 2 3], got %v", got)
	}
}

func TestIterator_LastIsCheckpoint(t *testing.T) {
	ctx := context.Background()
	iter := eventlog.NewSliceIterator([]string{"a", "b", "c"})

	for iter.Next(ctx) {
	}
	if err := iter.Err(); err != nil {
		t.Fatalf("expected clean exhaustion, got %v", err)
	}

	last, ok := iter.Last()
	if !ok || last != "c" {
		t.Errorf("expected checkpoint %q, got %q (ok=%v)", "c", last, ok)
	}
}

func TestIterator_EmptyHasNoCheckpoint(t *testing.T) {
	iter := eventlog.NewSliceIterator([]string{})

	if iter.Next(context.Background()) {
		t.Fatal("expected no elements")
	}
	if _, ok := iter.Last(); ok {
		t.Error("expected no checkpoint from an empty sequence")
	}
}

func TestIterator_ErrorStopsIteration(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	iter := eventlog.NewIteratorFunc(func(ctx context.Context) (int, error) {
		calls++
		if calls > 2 {
			return 0, boom
		}
		return calls, nil
	})

	ctx := context.Background()
	var got []int
	for iter.Next(ctx) {
		got = append(got, iter.Value())
	}

	if !errors.Is(iter.Err(), boom) {
		t.Errorf("expected boom, got %v", iter.Err())
	}
	if len(got) != 2 {
		t.Errorf("expected 2 items before failure, got %v", got)
	}
	if iter.Next(ctx) {
		t.Error("expected iterator to stay stopped after error")
	}
}

func TestIterator_EOFNotSurfaced(t *testing.T) {
	iter := eventlog.NewIteratorFunc(func(ctx context.Context) (int, error) {
		return 0, io.EOF
	})

	if iter.Next(context.Background()) {
		t.Fatal("expected immediate exhaustion")
	}
	if err := iter.Err(); err != nil {
		t.Errorf("io.EOF must not surface from Err, got %v", err)
	}
}

func TestIterator_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	iter := eventlog.NewSliceIterator([]int{1, 2, 3})
	if iter.Next(ctx) {
		t.Fatal("expected no progress on cancelled context")
	}
	if !errors.Is(iter.Err(), context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", iter.Err())
	}
}
