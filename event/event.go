// Package event implements the engine's per-tick event buffer: typed,
// immutable event data delivered to passive listeners at the end of each
// tick, in emission order, then discarded. Listeners observe; they must
// never mutate simulation state, or determinism breaks.
package event

import (
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
)

// Kind names one of the closed set of event types the engine emits.
type Kind int

const (
	ItemProduced Kind = iota
	ItemConsumed
	RecipeCompleted
	NodeStalled
	NodeUnstalled
	InventoryFull
	ItemTransferred
	// CommandRejected reports a command dropped at validation (e.g.
	// SetProcessor targeting a node freed since submission). Surfaced as an
	// event rather than an error return so that dropping stays silent to
	// the caller and deterministic across peers.
	CommandRejected
)

// Event is one immutable, timestamped occurrence. Exactly the fields
// relevant to Kind are populated; the rest are zero.
type Event struct {
	Kind Kind
	Tick uint64

	Node id.NodeId
	Edge id.EdgeId
	Item id.ItemTypeId
	Qty  fixed.Fixed64
}

// Listener is a passive observer for one event kind. Implementations must
// not mutate engine state; the event they're handed is immutable data.
type Listener func(Event)

// Bus buffers events for the current tick and dispatches them to
// registered listeners at tick end.
type Bus struct {
	listeners map[Kind][]Listener
	buffer    []Event
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[Kind][]Listener)}
}

// Subscribe registers a listener for one event kind, invoked in
// registration order relative to other listeners of the same kind.
func (b *Bus) Subscribe(kind Kind, l Listener) {
	b.listeners[kind] = append(b.listeners[kind], l)
}

// Emit appends an event to this tick's buffer. Events are not delivered
// until Flush runs, at the end of the tick.
func (b *Bus) Emit(e Event) {
	b.buffer = append(b.buffer, e)
}

// Flush delivers every buffered event, in emission order, to the
// listeners registered for its kind, then clears the buffer.
func (b *Bus) Flush() {
	for _, e := range b.buffer {
		for _, l := range b.listeners[e.Kind] {
			l(e)
		}
	}
	b.buffer = b.buffer[:0]
}

// Pending returns the events buffered so far this tick, for inspection
// (e.g. diagnostics) without triggering delivery.
func (b *Bus) Pending() []Event {
	return append([]Event(nil), b.buffer...)
}
