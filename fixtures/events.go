package fixtures

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/terraskye/eventlog"
)

// Payload is the application data carried by fixture events.
type Payload struct {
	ID   string `json:"id"`
	Note string `json:"note,omitempty"`
}

// EventBuilder provides a fluent API for constructing test events.
type EventBuilder struct {
	payload   any
	parents   []eventlog.CID
	root      eventlog.CID
	eventType string
	createdAt uint64
}

// NewEvent creates an EventBuilder with a fresh random payload and no
// causal metadata: built as-is it is a root event.
func NewEvent() *EventBuilder {
	return &EventBuilder{
		payload: Payload{ID: uuid.NewString()},
	}
}

// WithPayload sets custom payload data.
func (b *EventBuilder) WithPayload(payload any) *EventBuilder {
	b.payload = payload
	return b
}

// WithNote sets a recognizable payload note.
func (b *EventBuilder) WithNote(note string) *EventBuilder {
	b.payload = Payload{ID: uuid.NewString(), Note: note}
	return b
}

// WithParents sets the causal predecessors.
func (b *EventBuilder) WithParents(parents ...eventlog.CID) *EventBuilder {
	b.parents = parents
	return b
}

// WithRoot sets the DAG root.
func (b *EventBuilder) WithRoot(root eventlog.CID) *EventBuilder {
	b.root = root
	return b
}

// WithType sets the (optionally namespaced) event type.
func (b *EventBuilder) WithType(eventType string) *EventBuilder {
	b.eventType = eventType
	return b
}

// WithCreatedAt sets the timestamp hint. Events built with an explicit
// hint are stamped deterministically, which is what the idempotence tests
// rely on.
func (b *EventBuilder) WithCreatedAt(ts uint64) *EventBuilder {
	b.createdAt = ts
	return b
}

// Build constructs the event.
func (b *EventBuilder) Build() *eventlog.Event {
	raw, err := json.Marshal(b.payload)
	if err != nil {
		panic(fmt.Sprintf("fixtures: marshal payload: %v", err))
	}
	return &eventlog.Event{
		Payload: raw,
		Meta: eventlog.Meta{
			Parents:   b.parents,
			Root:      b.root,
			Type:      b.eventType,
			CreatedAt: b.createdAt,
		},
	}
}
