package engine

import (
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/transport"
)

// NodeSnapshot is an owned copy of one node's visible state, safe for a
// host to inspect without holding any reference into engine-owned memory.
type NodeSnapshot struct {
	Node           id.NodeId
	BuildingType   id.BuildingTypeId
	ProcessorState processor.State
	InputTotal     uint32
	OutputTotal    uint32
	Modifiers      []processor.Modifier
}

// TransportSnapshot pairs an edge handle with its transport utilization
// summary.
type TransportSnapshot struct {
	Edge     id.EdgeId
	Endpoint struct{ From, To id.NodeId }
	transport.Snapshot
}

// DiagnosticInfo explains why a node is (or isn't) stalled: its current
// stall reason plus the supporting numbers a UI needs to render "why" —
// how much input it had vs. needed is left to the caller, who has the
// registry; this only reports what the engine already tracks.
type DiagnosticInfo struct {
	Node         id.NodeId
	State        processor.State
	InputTotal   uint32
	OutputRoom   uint32
	InEdgeCount  int
	OutEdgeCount int
}

// SnapshotNode returns an owned snapshot of one node's state, or false if
// the node does not exist.
func (e *Engine) SnapshotNode(n id.NodeId) (NodeSnapshot, bool) {
	rec, ok := e.graph.Node(n)
	if !ok {
		return NodeSnapshot{}, false
	}
	p := e.processors[n]
	snap := NodeSnapshot{
		Node:         n,
		BuildingType: rec.BuildingType,
		Modifiers:    append([]processor.Modifier(nil), e.modifiers[n]...),
	}
	if p != nil {
		snap.ProcessorState = p.State
	}
	if in, ok := e.inputs[n]; ok {
		snap.InputTotal = in.Total()
	}
	if out, ok := e.outputs[n]; ok {
		snap.OutputTotal = out.Total()
	}
	return snap, true
}

// SnapshotAllNodes returns an owned snapshot of every node, in handle
// order.
func (e *Engine) SnapshotAllNodes() []NodeSnapshot {
	nodes := e.graph.Nodes()
	out := make([]NodeSnapshot, 0, len(nodes))
	for _, n := range nodes {
		if snap, ok := e.SnapshotNode(n); ok {
			out = append(out, snap)
		}
	}
	return out
}

// SnapshotTransport returns an owned snapshot of one edge's transport
// utilization, or false if the edge does not exist.
func (e *Engine) SnapshotTransport(edgeID id.EdgeId) (TransportSnapshot, bool) {
	rec, ok := e.graph.Edge(edgeID)
	if !ok {
		return TransportSnapshot{}, false
	}
	t, ok := e.transports[edgeID]
	if !ok {
		return TransportSnapshot{}, false
	}
	snap := TransportSnapshot{Edge: edgeID, Snapshot: t.Snapshot()}
	snap.Endpoint.From = rec.From
	snap.Endpoint.To = rec.To
	return snap, true
}

// GetProcessorProgress reports a FixedRecipe processor's current
// progress/remaining, or (0,0,false) for a missing node or a processor
// that is not in the Working state (any other variant, or a FixedRecipe
// processor that is Idle or Stalled).
func (e *Engine) GetProcessorProgress(n id.NodeId) (progress, remaining uint64, ok bool) {
	p, exists := e.processors[n]
	if !exists || p.State.Kind != processor.Working {
		return 0, 0, false
	}
	return p.State.Progress, p.State.Remaining, true
}

// Diagnostic explains why a node is or isn't stalled.
func (e *Engine) Diagnostic(n id.NodeId) (DiagnosticInfo, bool) {
	p, ok := e.processors[n]
	if !ok {
		return DiagnosticInfo{}, false
	}
	info := DiagnosticInfo{Node: n, State: p.State}
	if in, ok := e.inputs[n]; ok {
		info.InputTotal = in.Total()
	}
	if out, ok := e.outputs[n]; ok {
		for _, slot := range out.Slots() {
			info.OutputRoom += slot.Capacity() - slot.Total()
		}
	}
	info.InEdgeCount = len(e.graph.InEdges(n))
	info.OutEdgeCount = len(e.graph.OutEdges(n))
	return info, true
}
