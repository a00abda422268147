package engine

import (
	"github.com/nova-forge/factorial-sim/event"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/processor"
)

func stallEvent(tick uint64, n id.NodeId, s processor.Stall) event.Event {
	return event.Event{Kind: event.NodeStalled, Tick: tick, Node: n, Item: s.Item}
}

func unstalledEvent(tick uint64, n id.NodeId) event.Event {
	return event.Event{Kind: event.NodeUnstalled, Tick: tick, Node: n}
}
