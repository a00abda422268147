// Package command implements the external mutation chokepoint: every
// structured command submitted by UI, scripting, or the network is queued
// and drained in submission order at the very start of the next tick.
// This is what makes lockstep multiplayer work — peers transmit commands,
// not state.
package command

import (
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
)

// Kind names one of the closed set of commands the engine accepts.
type Kind int

const (
	AddNode Kind = iota
	RemoveNode
	Connect
	Disconnect
	SetProcessor
	SetTransport
	SetInputInventory
	SetOutputInventory
	SetModifiers
)

// Command is one externally submitted mutation request. Exactly the
// fields relevant to Kind are populated.
type Command struct {
	Kind Kind

	Node id.NodeId
	Edge id.EdgeId
	From id.NodeId
	To   id.NodeId

	BuildingType id.BuildingTypeId
	Payload      any // variant-specific config: processor.Config, transport.Config, []processor.Modifier, etc.
	Amount       fixed.Fixed64
}

// HistoryEntry records a command alongside the tick it was submitted on,
// for replay and audit.
type HistoryEntry struct {
	Tick    uint64
	Command Command
}

// Queue buffers externally submitted commands and drains them in
// submission order at the start of each tick. An optional bounded history
// retains the most recent entries for replay/audit.
type Queue struct {
	pending []Command

	history     []HistoryEntry
	historyCap  int
	currentTick uint64
}

// NewQueue creates an empty command queue. historyCap bounds the retained
// history length; 0 disables history entirely.
func NewQueue(historyCap int) *Queue {
	return &Queue{historyCap: historyCap}
}

// SetTick records the tick number used to timestamp subsequently submitted
// commands in the history; the engine calls this once per tick.
func (q *Queue) SetTick(tick uint64) { q.currentTick = tick }

// Submit enqueues a command for application at the start of the next tick.
func (q *Queue) Submit(c Command) {
	q.pending = append(q.pending, c)
	if q.historyCap <= 0 {
		return
	}
	q.history = append(q.history, HistoryEntry{Tick: q.currentTick, Command: c})
	if len(q.history) > q.historyCap {
		q.history = q.history[len(q.history)-q.historyCap:]
	}
}

// Drain returns every queued command in submission order and empties the
// queue. Applying an empty queue is a no-op (returns nil).
func (q *Queue) Drain() []Command {
	if len(q.pending) == 0 {
		return nil
	}
	drained := q.pending
	q.pending = nil
	return drained
}

// History returns the retained (tick, command) history, oldest first.
func (q *Queue) History() []HistoryEntry {
	return append([]HistoryEntry(nil), q.history...)
}

// Pending reports how many commands are currently queued.
func (q *Queue) Pending() int { return len(q.pending) }
