package engine

import (
	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/event"
	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/transport"
)

// dispatchCommand applies one drained command. A Set* command whose target
// node or edge no longer exists, or whose payload has the wrong type, is
// dropped silently with a CommandRejected event rather than an error
// return, so that validation outcomes stay deterministic across peers
// replaying the same command sequence. AddNode, RemoveNode, Connect and
// Disconnect are passed to the graph's mutation queue unvalidated; no
// CommandRejected event is emitted for them.
func (e *Engine) dispatchCommand(cmd command.Command) {
	switch cmd.Kind {
	case command.AddNode:
		e.graph.AddNode(cmd.BuildingType)

	case command.RemoveNode:
		e.graph.RemoveNode(graph.RealNode(cmd.Node))

	case command.Connect:
		e.graph.Connect(graph.RealNode(cmd.From), graph.RealNode(cmd.To))

	case command.Disconnect:
		e.graph.Disconnect(cmd.Edge)

	case command.SetProcessor:
		cfg, ok := cmd.Payload.(processor.Config)
		if !ok || !e.graph.HasNode(cmd.Node) {
			e.rejectCommand(cmd)
			return
		}
		e.processors[cmd.Node] = processor.NewProcessor(cfg)

	case command.SetTransport:
		cfg, ok := cmd.Payload.(transport.Config)
		if !ok || !e.graph.HasEdge(cmd.Edge) {
			e.rejectCommand(cmd)
			return
		}
		e.transports[cmd.Edge] = transport.NewTransport(cfg)

	case command.SetInputInventory:
		inv, ok := cmd.Payload.(*inventory.Inventory)
		if !ok || !e.graph.HasNode(cmd.Node) {
			e.rejectCommand(cmd)
			return
		}
		e.inputs[cmd.Node] = inv

	case command.SetOutputInventory:
		inv, ok := cmd.Payload.(*inventory.Inventory)
		if !ok || !e.graph.HasNode(cmd.Node) {
			e.rejectCommand(cmd)
			return
		}
		e.outputs[cmd.Node] = inv

	case command.SetModifiers:
		mods, ok := cmd.Payload.([]processor.Modifier)
		if !ok || !e.graph.HasNode(cmd.Node) {
			e.rejectCommand(cmd)
			return
		}
		e.modifiers[cmd.Node] = mods
	}
}

func (e *Engine) rejectCommand(cmd command.Command) {
	e.events.Emit(event.Event{Kind: event.CommandRejected, Tick: e.tick, Node: cmd.Node, Edge: cmd.Edge})
	e.logRejected(cmd)
}
