package fixtures

import (
	"context"
	"sync"

	"github.com/terraskye/eventlog"
)

// ContentSpy wraps a ContentStore, tracking calls and allowing error
// injection per operation. It deliberately exposes only the single-item
// contract so tests also cover the sequential batch fallback.
type ContentSpy struct {
	mu   sync.Mutex
	next eventlog.ContentStore

	PutCalls    int
	GetCalls    int
	HasCalls    int
	DeleteCalls int

	putErr    error
	getErr    error
	hasErr    error
	deleteErr error
}

var _ eventlog.ContentStore = (*ContentSpy)(nil)

// NewContentSpy wraps next.
func NewContentSpy(next eventlog.ContentStore) *ContentSpy {
	return &ContentSpy{next: next}
}

// FailOnPut makes Put return err.
func (s *ContentSpy) FailOnPut(err error) *ContentSpy { s.putErr = err; return s }

// FailOnGet makes Get return err.
func (s *ContentSpy) FailOnGet(err error) *ContentSpy { s.getErr = err; return s }

// FailOnHas makes Has return err.
func (s *ContentSpy) FailOnHas(err error) *ContentSpy { s.hasErr = err; return s }

// FailOnDelete makes Delete return err.
func (s *ContentSpy) FailOnDelete(err error) *ContentSpy { s.deleteErr = err; return s }

func (s *ContentSpy) Key(ev *eventlog.Event) (eventlog.CID, error) {
	return s.next.Key(ev)
}

func (s *ContentSpy) Put(ctx context.Context, ev *eventlog.Event) (eventlog.CID, error) {
	s.mu.Lock()
	s.PutCalls++
	s.mu.Unlock()
	if s.putErr != nil {
		return eventlog.Undefined, s.putErr
	}
	return s.next.Put(ctx, ev)
}

func (s *ContentSpy) Get(ctx context.Context, id eventlog.CID) (*eventlog.Event, error) {
	s.mu.Lock()
	s.GetCalls++
	s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.next.Get(ctx, id)
}

func (s *ContentSpy) Has(ctx context.Context, id eventlog.CID) (bool, error) {
	s.mu.Lock()
	s.HasCalls++
	s.mu.Unlock()
	if s.hasErr != nil {
		return false, s.hasErr
	}
	return s.next.Has(ctx, id)
}

func (s *ContentSpy) Delete(ctx context.Context, id eventlog.CID) error {
	s.mu.Lock()
	s.DeleteCalls++
	s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.next.Delete(ctx, id)
}

// IndexSpy wraps an IndexStore, tracking calls and allowing error injection
// per operation. Like ContentSpy it exposes only the single-item contract.
type IndexSpy struct {
	mu   sync.Mutex
	next eventlog.IndexStore

	SetCalls    int
	DeleteCalls int
	ScanCalls   int

	setErr    error
	deleteErr error
	scanErr   error
}

var _ eventlog.IndexStore = (*IndexSpy)(nil)

// NewIndexSpy wraps next.
func NewIndexSpy(next eventlog.IndexStore) *IndexSpy {
	return &IndexSpy{next: next}
}

// FailOnSet makes Set return err.
func (s *IndexSpy) FailOnSet(err error) *IndexSpy { s.setErr = err; return s }

// FailOnDelete makes Delete return err.
func (s *IndexSpy) FailOnDelete(err error) *IndexSpy { s.deleteErr = err; return s }

// FailOnScan makes Scan return err.
func (s *IndexSpy) FailOnScan(err error) *IndexSpy { s.scanErr = err; return s }

func (s *IndexSpy) Get(ctx context.Context, key []byte) (eventlog.CID, error) {
	return s.next.Get(ctx, key)
}

func (s *IndexSpy) Has(ctx context.Context, key []byte) (bool, error) {
	return s.next.Has(ctx, key)
}

func (s *IndexSpy) Set(ctx context.Context, key []byte, value eventlog.CID) error {
	s.mu.Lock()
	s.SetCalls++
	s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	return s.next.Set(ctx, key, value)
}

func (s *IndexSpy) Delete(ctx context.Context, key []byte) error {
	s.mu.Lock()
	s.DeleteCalls++
	s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.next.Delete(ctx, key)
}

func (s *IndexSpy) Scan(ctx context.Context, r eventlog.Range) (*eventlog.Iterator[eventlog.IndexEntry], error) {
	s.mu.Lock()
	s.ScanCalls++
	s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return s.next.Scan(ctx, r)
}
