package graph

import "github.com/nova-forge/factorial-sim/id"

// NodeRef refers to a node either by an already-real handle or by a
// pending handle allocated earlier in the same mutation batch (so callers
// can connect nodes they just queued for creation, before the batch
// applies and real handles exist).
type NodeRef struct {
	real      id.NodeId
	pending   id.PendingNodeId
	isPending bool
}

// RealNode builds a NodeRef to an already-live node.
func RealNode(n id.NodeId) NodeRef { return NodeRef{real: n} }

// PendingNode builds a NodeRef to a node queued earlier in the same batch.
func PendingNode(p id.PendingNodeId) NodeRef { return NodeRef{pending: p, isPending: true} }

type mutationKind int

const (
	mutAddNode mutationKind = iota
	mutRemoveNode
	mutConnect
	mutDisconnect
)

type mutation struct {
	kind mutationKind

	// add
	pendingNode  id.PendingNodeId
	buildingType id.BuildingTypeId

	// remove
	removeRef NodeRef

	// connect
	pendingEdge id.PendingEdgeId
	from, to    NodeRef

	// disconnect
	edge id.EdgeId
}

// AddNode queues a node creation and returns a pending handle, resolved to
// a real NodeId when the batch applies.
func (g *Graph) AddNode(buildingType id.BuildingTypeId) id.PendingNodeId {
	p := g.nextPendingNode
	g.nextPendingNode++
	g.pending = append(g.pending, mutation{kind: mutAddNode, pendingNode: p, buildingType: buildingType})
	return p
}

// RemoveNode queues removal of a node (and, at apply time, every edge
// incident to it).
func (g *Graph) RemoveNode(ref NodeRef) {
	g.pending = append(g.pending, mutation{kind: mutRemoveNode, removeRef: ref})
}

// Connect queues creation of an edge from one node to another and returns
// a pending handle, resolved to a real EdgeId when the batch applies.
func (g *Graph) Connect(from, to NodeRef) id.PendingEdgeId {
	p := g.nextPendingEdge
	g.nextPendingEdge++
	g.pending = append(g.pending, mutation{kind: mutConnect, pendingEdge: p, from: from, to: to})
	return p
}

// Disconnect queues removal of an edge.
func (g *Graph) Disconnect(e id.EdgeId) {
	g.pending = append(g.pending, mutation{kind: mutDisconnect, edge: e})
}

// MutationResult maps the pending handles allocated during queueing to the
// real handles assigned when the batch applied.
type MutationResult struct {
	Nodes map[id.PendingNodeId]id.NodeId
	Edges map[id.PendingEdgeId]id.EdgeId
}

// ApplyMutations drains the queue in four ordered phases — adds, removes,
// connects, disconnects — and returns the pending-to-real resolution map.
// Applying an empty queue is a no-op. Unresolvable references (a pending
// handle never added, or a real handle removed earlier in the same batch)
// are silently skipped: callers are expected to queue coherent batches,
// and a skip here never corrupts graph state.
func (g *Graph) ApplyMutations() MutationResult {
	result := MutationResult{
		Nodes: make(map[id.PendingNodeId]id.NodeId),
		Edges: make(map[id.PendingEdgeId]id.EdgeId),
	}
	if len(g.pending) == 0 {
		return result
	}

	batch := g.pending
	g.pending = nil

	for _, m := range batch {
		if m.kind != mutAddNode {
			continue
		}
		index, gen := g.nodeAlloc.Alloc()
		n := id.NodeId{Index: index, Generation: gen}
		g.nodes[n] = &NodeRecord{BuildingType: m.buildingType}
		result.Nodes[m.pendingNode] = n
	}

	for _, m := range batch {
		if m.kind != mutRemoveNode {
			continue
		}
		n, ok := g.resolveNode(m.removeRef, result)
		if !ok {
			continue
		}
		g.removeNode(n)
	}

	for _, m := range batch {
		if m.kind != mutConnect {
			continue
		}
		from, ok1 := g.resolveNode(m.from, result)
		to, ok2 := g.resolveNode(m.to, result)
		if !ok1 || !ok2 || !g.HasNode(from) || !g.HasNode(to) {
			continue
		}
		index, gen := g.edgeAlloc.Alloc()
		e := id.EdgeId{Index: index, Generation: gen}
		g.edges[e] = &EdgeRecord{From: from, To: to}
		g.outEdges[from] = append(g.outEdges[from], e)
		g.inEdges[to] = append(g.inEdges[to], e)
		result.Edges[m.pendingEdge] = e
	}

	for _, m := range batch {
		if m.kind != mutDisconnect {
			continue
		}
		g.removeEdge(m.edge)
	}

	return result
}

func (g *Graph) resolveNode(ref NodeRef, result MutationResult) (id.NodeId, bool) {
	if !ref.isPending {
		return ref.real, true
	}
	n, ok := result.Nodes[ref.pending]
	return n, ok
}

func (g *Graph) removeNode(n id.NodeId) {
	if !g.HasNode(n) {
		return
	}
	for _, e := range append([]id.EdgeId(nil), g.outEdges[n]...) {
		g.removeEdge(e)
	}
	for _, e := range append([]id.EdgeId(nil), g.inEdges[n]...) {
		g.removeEdge(e)
	}
	delete(g.nodes, n)
	delete(g.outEdges, n)
	delete(g.inEdges, n)
	g.nodeAlloc.Free(n.Index)
}

func (g *Graph) removeEdge(e id.EdgeId) {
	rec, ok := g.edges[e]
	if !ok {
		return
	}
	g.outEdges[rec.From] = removeEdgeFromSlice(g.outEdges[rec.From], e)
	g.inEdges[rec.To] = removeEdgeFromSlice(g.inEdges[rec.To], e)
	delete(g.edges, e)
	g.edgeAlloc.Free(e.Index)
}

func removeEdgeFromSlice(s []id.EdgeId, e id.EdgeId) []id.EdgeId {
	for i, x := range s {
		if x == e {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
