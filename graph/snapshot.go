package graph

import "github.com/nova-forge/factorial-sim/id"

// Snapshot captures a graph's full state — both allocators, and every live
// node/edge record — so Restore can rebuild an identical graph, including
// future allocation behavior (an index freed before the snapshot stays
// free, with the same generation, after restore).
type Snapshot struct {
	NodeAlloc id.AllocatorSnapshot
	EdgeAlloc id.AllocatorSnapshot
	Nodes     map[id.NodeId]NodeRecord
	Edges     map[id.EdgeId]EdgeRecord
}

// Snapshot captures the graph's current state. Only called between ticks,
// when the pending mutation queue is always empty.
func (g *Graph) Snapshot() Snapshot {
	nodes := make(map[id.NodeId]NodeRecord, len(g.nodes))
	for n, rec := range g.nodes {
		nodes[n] = *rec
	}
	edges := make(map[id.EdgeId]EdgeRecord, len(g.edges))
	for e, rec := range g.edges {
		edges[e] = *rec
	}
	return Snapshot{
		NodeAlloc: g.nodeAlloc.Snapshot(),
		EdgeAlloc: g.edgeAlloc.Snapshot(),
		Nodes:     nodes,
		Edges:     edges,
	}
}

// Restore rebuilds a graph from a snapshot taken by Snapshot. Per-node
// out/in edge order is reconstructed by replaying edges in ascending edge
// index order, which reproduces the original connection order exactly:
// an edge's index is assigned strictly increasingly as it is connected.
func Restore(snap Snapshot) *Graph {
	g := &Graph{
		nodeAlloc: id.RestoreAllocator(snap.NodeAlloc),
		edgeAlloc: id.RestoreAllocator(snap.EdgeAlloc),
		nodes:     make(map[id.NodeId]*NodeRecord, len(snap.Nodes)),
		edges:     make(map[id.EdgeId]*EdgeRecord, len(snap.Edges)),
		outEdges:  make(map[id.NodeId][]id.EdgeId),
		inEdges:   make(map[id.NodeId][]id.EdgeId),
	}
	for n, rec := range snap.Nodes {
		r := rec
		g.nodes[n] = &r
	}
	edgeIds := make([]id.EdgeId, 0, len(snap.Edges))
	for e := range snap.Edges {
		edgeIds = append(edgeIds, e)
	}
	sortEdgeIds(edgeIds)
	for _, e := range edgeIds {
		rec := snap.Edges[e]
		r := rec
		g.edges[e] = &r
		g.outEdges[rec.From] = append(g.outEdges[rec.From], e)
		g.inEdges[rec.To] = append(g.inEdges[rec.To], e)
	}
	return g
}
