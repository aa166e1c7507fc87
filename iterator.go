package eventlog

import (
	"context"
	"errors"
	"io"
)

// Iterator is a lazy, finite, non-restartable sequence. It is produced by
// the query surface of the log and by index-store range scans.
//
// The producing function returns io.EOF when the sequence is exhausted;
// io.EOF is consumed internally and never surfaced from Err. After
// exhaustion Value still returns the last yielded element, which the query
// surface uses as the resumption checkpoint.
type Iterator[T any] struct {
	nextFunc func(ctx context.Context) (T, error)
	current  T
	yielded  bool
	done     bool
	err      error
}

// NewIteratorFunc creates an Iterator from a producer function. The function
// should return io.EOF when the sequence is finished, or a non-nil error on
// failure.
func NewIteratorFunc[T any](nextFunc func(ctx context.Context) (T, error)) *Iterator[T] {
	return &Iterator[T]{nextFunc: nextFunc}
}

// NewSliceIterator creates an Iterator over an in-memory slice.
func NewSliceIterator[T any](items []T) *Iterator[T] {
	index := 0
	return NewIteratorFunc(func(ctx context.Context) (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if index >= len(items) {
			return zero, io.EOF
		}
		item := items[index]
		index++
		return item, nil
	})
}

// Next advances the iterator. It returns false once the sequence is
// exhausted, an error occurred, or the context was cancelled.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	v, err := it.nextFunc(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			it.done = true
		} else {
			it.err = err
		}
		return false
	}
	it.current = v
	it.yielded = true
	return true
}

// Value returns the element produced by the last successful Next. After
// exhaustion it keeps returning the final element of the sequence.
func (it *Iterator[T]) Value() T {
	return it.current
}

// Last returns the final element yielded, and whether the iterator yielded
// anything at all. Meaningful once Next has returned false.
func (it *Iterator[T]) Last() (T, bool) {
	return it.current, it.yielded
}

// Err returns the error that terminated iteration, or nil on clean
// exhaustion.
func (it *Iterator[T]) Err() error {
	return it.err
}

// All consumes the iterator and returns the remaining items.
func (it *Iterator[T]) All(ctx context.Context) ([]T, error) {
	var results []T
	for it.Next(ctx) {
		results = append(results, it.Value())
	}
	return results, it.Err()
}
