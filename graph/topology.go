package graph

import (
	"sort"

	"github.com/nova-forge/factorial-sim/id"
)

// TopologicalOrder is the result of collapsing the graph's strongly
// connected components (Tarjan's algorithm) and linearizing them: Order is
// every live node in an order where, for every edge not in FeedbackEdges,
// the source precedes the target; FeedbackEdges are the edges that close a
// cycle (both endpoints in the same non-trivial SCC, or a self-loop) and
// must be evaluated with one tick of latency by the processor pipeline.
//
// Within an SCC, nodes are ordered by ascending handle index. This is the
// fixed tie-break policy: stable and cheap, and it never changes once a
// save file depends on it (changing it is a migration-requiring breaking
// change, per the versioning policy in serialize/migration).
type TopologicalOrder struct {
	Order         []id.NodeId
	FeedbackEdges map[id.EdgeId]bool
}

// Topology runs Tarjan's SCC algorithm and returns the linearized order.
func (g *Graph) Topology() TopologicalOrder {
	t := &tarjan{
		g:       g,
		index:   make(map[id.NodeId]int),
		lowlink: make(map[id.NodeId]int),
		onStack: make(map[id.NodeId]bool),
	}
	for _, n := range g.Nodes() {
		if _, visited := t.index[n]; !visited {
			t.strongConnect(n)
		}
	}

	result := TopologicalOrder{FeedbackEdges: make(map[id.EdgeId]bool)}
	sccOf := make(map[id.NodeId]int)
	for sccID, scc := range t.sccs {
		for _, n := range scc {
			sccOf[n] = sccID
		}
	}

	// Tarjan emits SCCs in reverse topological order; reverse to get a
	// forward topological order of components.
	for i := len(t.sccs) - 1; i >= 0; i-- {
		scc := append([]id.NodeId(nil), t.sccs[i]...)
		sort.Slice(scc, func(a, b int) bool { return scc[a].Index < scc[b].Index })
		result.Order = append(result.Order, scc...)
	}

	for e, rec := range g.edges {
		if sccOf[rec.From] == sccOf[rec.To] {
			result.FeedbackEdges[e] = true
		}
	}

	return result
}

type tarjan struct {
	g       *Graph
	index   map[id.NodeId]int
	lowlink map[id.NodeId]int
	onStack map[id.NodeId]bool
	stack   []id.NodeId
	counter int
	sccs    [][]id.NodeId
}

func (t *tarjan) strongConnect(v id.NodeId) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, e := range t.g.outEdges[v] {
		rec, ok := t.g.edges[e]
		if !ok {
			continue
		}
		w := rec.To
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []id.NodeId
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
