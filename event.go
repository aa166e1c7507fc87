package eventlog

import (
	"encoding/json"
)

// CID is a content address: the hex-encoded digest of an event's canonical
// encoding. It is the primary key of the content store and the value stored
// under every index entry.
type CID string

// Undefined is the zero CID, returned where no identifier applies.
const Undefined CID = ""

// Defined reports whether the CID carries an address.
func (c CID) Defined() bool { return c != Undefined }

func (c CID) String() string { return string(c) }

// Event is an immutable record in the causal log. The payload is opaque to
// the log; all ordering and querying happens over Meta.
type Event struct {
	Payload json.RawMessage `json:"payload,omitempty"`
	Meta    Meta            `json:"meta"`
}

// Meta carries the causal metadata of an event.
//
// Parents lists the content addresses of the event's direct causal
// predecessors. Root names the DAG the event belongs to and is required
// whenever Parents is non-empty; an event without parents may leave Root
// undefined and act as its own root.
//
// CreatedAt is a hybrid logical timestamp. On Put the caller-supplied value
// is only a lower-bound hint; the log replaces it with the clock's output
// before the event is addressed and stored.
type Meta struct {
	Parents   []CID  `json:"parents,omitempty"`
	Root      CID    `json:"root,omitempty"`
	Type      string `json:"type,omitempty"`
	CreatedAt uint64 `json:"createdAt"`
}

// Entry pairs a content address with its resolved event.
type Entry struct {
	CID   CID
	Event *Event
}

// PutResult is one item of a PutMany stream: the address assigned to the
// event, or the error that kept it out of the log. Exactly one of the two
// fields is set.
type PutResult struct {
	CID CID
	Err error
}
