// Package graph implements the production graph: a directed multigraph of
// nodes (buildings) and edges (transport links), mutated only through a
// queued-mutation batch applied atomically at the start of each tick.
package graph

import (
	"sort"

	"github.com/nova-forge/factorial-sim/id"
)

// NodeRecord is the per-node data the graph itself owns. Processor,
// inventory, and modifier state live in their own packages, keyed by the
// same NodeId.
type NodeRecord struct {
	BuildingType id.BuildingTypeId
}

// EdgeRecord is the per-edge data the graph itself owns.
type EdgeRecord struct {
	From id.NodeId
	To   id.NodeId
}

// Graph is a directed multigraph with queued, batch-applied mutations.
type Graph struct {
	nodeAlloc *id.Allocator
	edgeAlloc *id.Allocator

	nodes map[id.NodeId]*NodeRecord
	edges map[id.EdgeId]*EdgeRecord

	outEdges map[id.NodeId][]id.EdgeId
	inEdges  map[id.NodeId][]id.EdgeId

	pending         []mutation
	nextPendingNode id.PendingNodeId
	nextPendingEdge id.PendingEdgeId
}

// New creates an empty production graph.
func New() *Graph {
	return &Graph{
		nodeAlloc: id.NewAllocator(),
		edgeAlloc: id.NewAllocator(),
		nodes:     make(map[id.NodeId]*NodeRecord),
		edges:     make(map[id.EdgeId]*EdgeRecord),
		outEdges:  make(map[id.NodeId][]id.EdgeId),
		inEdges:   make(map[id.NodeId][]id.EdgeId),
	}
}

// HasNode is an O(1) containment test for a node handle.
func (g *Graph) HasNode(n id.NodeId) bool {
	_, ok := g.nodes[n]
	return ok
}

// HasEdge is an O(1) containment test for an edge handle.
func (g *Graph) HasEdge(e id.EdgeId) bool {
	_, ok := g.edges[e]
	return ok
}

// Node returns the record for a live node handle.
func (g *Graph) Node(n id.NodeId) (NodeRecord, bool) {
	r, ok := g.nodes[n]
	if !ok {
		return NodeRecord{}, false
	}
	return *r, true
}

// Edge returns the record for a live edge handle.
func (g *Graph) Edge(e id.EdgeId) (EdgeRecord, bool) {
	r, ok := g.edges[e]
	if !ok {
		return EdgeRecord{}, false
	}
	return *r, true
}

// OutEdges returns the edges leaving n, in the order they were connected.
func (g *Graph) OutEdges(n id.NodeId) []id.EdgeId {
	return append([]id.EdgeId(nil), g.outEdges[n]...)
}

// InEdges returns the edges entering n, in the order they were connected.
func (g *Graph) InEdges(n id.NodeId) []id.EdgeId {
	return append([]id.EdgeId(nil), g.inEdges[n]...)
}

// NodeCount and EdgeCount report the number of live nodes/edges.
func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns every live node handle in ascending handle-index order.
func (g *Graph) Nodes() []id.NodeId {
	out := make([]id.NodeId, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sortNodeIds(out)
	return out
}

// Edges returns every live edge handle in ascending handle-index order.
func (g *Graph) Edges() []id.EdgeId {
	out := make([]id.EdgeId, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	sortEdgeIds(out)
	return out
}

func sortNodeIds(s []id.NodeId) {
	sort.Slice(s, func(i, j int) bool { return s[i].Index < s[j].Index })
}

func sortEdgeIds(s []id.EdgeId) {
	sort.Slice(s, func(i, j int) bool { return s[i].Index < s[j].Index })
}
