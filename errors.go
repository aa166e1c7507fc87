package eventlog

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed event, such as parents without a root.
// It is surfaced immediately and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s", e.Reason)
}

// MissingDependencyError reports parents that could not be resolved from the
// content store. The event is not partially stored; the caller can fetch the
// listed addresses and resubmit.
type MissingDependencyError struct {
	Missing []CID
}

func (e *MissingDependencyError) Error() string {
	addrs := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		addrs[i] = string(id)
	}
	return fmt.Sprintf("missing dependencies: %s", strings.Join(addrs, ", "))
}

// Phase names the step of a multi-phase store operation that failed.
type Phase string

const (
	PhaseIndexWrite   Phase = "index write"
	PhaseContentWrite Phase = "content write"
	PhaseHeadCleanup  Phase = "head cleanup"
)

// OpError reports an I/O failure in one phase of Put, so callers can tell a
// dangling index entry from a missing content write from a stale head
// marker. A head-cleanup failure leaves stale head entries behind and needs
// repair; Keys lists the index keys the failed phase was operating on.
type OpError struct {
	Phase Phase
	CID   CID
	Keys  [][]byte
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Phase, e.CID, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
