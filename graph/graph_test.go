package graph_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/id"
)

var _ = Describe("Graph mutations", func() {
	It("is a no-op when applying an empty queue", func() {
		g := graph.New()
		result := g.ApplyMutations()
		Expect(result.Nodes).To(BeEmpty())
		Expect(result.Edges).To(BeEmpty())
	})

	It("resolves pending node handles to real handles in submission order", func() {
		g := graph.New()
		p1 := g.AddNode(1)
		p2 := g.AddNode(2)
		result := g.ApplyMutations()

		n1, ok1 := result.Nodes[p1]
		n2, ok2 := result.Nodes[p2]
		Expect(ok1).To(BeTrue())
		Expect(ok2).To(BeTrue())
		Expect(n1).NotTo(Equal(n2))
		Expect(g.NodeCount()).To(Equal(2))
	})

	It("connects nodes queued for creation in the same batch via pending refs", func() {
		g := graph.New()
		pa := g.AddNode(1)
		pb := g.AddNode(2)
		pe := g.Connect(graph.PendingNode(pa), graph.PendingNode(pb))
		result := g.ApplyMutations()

		a := result.Nodes[pa]
		b := result.Nodes[pb]
		e := result.Edges[pe]

		edge, ok := g.Edge(e)
		Expect(ok).To(BeTrue())
		Expect(edge.From).To(Equal(a))
		Expect(edge.To).To(Equal(b))
	})

	It("removes incident edges in the same batch as the node", func() {
		g := graph.New()
		pa := g.AddNode(1)
		pb := g.AddNode(2)
		pe := g.Connect(graph.PendingNode(pa), graph.PendingNode(pb))
		first := g.ApplyMutations()

		a := first.Nodes[pa]
		_ = first.Edges[pe]

		g.RemoveNode(graph.RealNode(a))
		g.ApplyMutations()

		Expect(g.HasNode(a)).To(BeFalse())
		Expect(g.EdgeCount()).To(Equal(0))
	})

	It("never resurrects a freed node handle", func() {
		g := graph.New()
		pa := g.AddNode(1)
		first := g.ApplyMutations()
		a := first.Nodes[pa]

		g.RemoveNode(graph.RealNode(a))
		g.ApplyMutations()

		pb := g.AddNode(1)
		second := g.ApplyMutations()
		b := second.Nodes[pb]

		Expect(b).NotTo(Equal(a))
		Expect(g.HasNode(a)).To(BeFalse())
	})

	It("skips a disconnect of an already-removed edge without error", func() {
		g := graph.New()
		pa := g.AddNode(1)
		pb := g.AddNode(2)
		pe := g.Connect(graph.PendingNode(pa), graph.PendingNode(pb))
		result := g.ApplyMutations()
		e := result.Edges[pe]

		g.Disconnect(e)
		g.Disconnect(e)
		Expect(func() { g.ApplyMutations() }).NotTo(Panic())
		Expect(g.EdgeCount()).To(Equal(0))
	})

	It("iterates nodes and edges in ascending handle order", func() {
		g := graph.New()
		for i := 0; i < 5; i++ {
			g.AddNode(id.BuildingTypeId(i))
		}
		g.ApplyMutations()

		nodes := g.Nodes()
		for i := 1; i < len(nodes); i++ {
			Expect(nodes[i-1].Index).To(BeNumerically("<", nodes[i].Index))
		}
	})
})

var _ = Describe("Topology", func() {
	It("orders an acyclic chain topologically", func() {
		g := graph.New()
		pa := g.AddNode(1)
		pb := g.AddNode(2)
		pc := g.AddNode(3)
		g.Connect(graph.PendingNode(pa), graph.PendingNode(pb))
		g.Connect(graph.PendingNode(pb), graph.PendingNode(pc))
		result := g.ApplyMutations()
		a, b, c := result.Nodes[pa], result.Nodes[pb], result.Nodes[pc]

		topo := g.Topology()
		Expect(topo.Order).To(HaveLen(3))
		Expect(indexOf(topo.Order, a)).To(BeNumerically("<", indexOf(topo.Order, b)))
		Expect(indexOf(topo.Order, b)).To(BeNumerically("<", indexOf(topo.Order, c)))
		Expect(topo.FeedbackEdges).To(BeEmpty())
	})

	It("flags edges within a cycle as feedback edges", func() {
		g := graph.New()
		pa := g.AddNode(1)
		pb := g.AddNode(2)
		pc := g.AddNode(3)
		g.Connect(graph.PendingNode(pa), graph.PendingNode(pb))
		peBC := g.Connect(graph.PendingNode(pb), graph.PendingNode(pc))
		peCA := g.Connect(graph.PendingNode(pc), graph.PendingNode(pa))
		result := g.ApplyMutations()

		topo := g.Topology()
		Expect(topo.Order).To(HaveLen(3))
		Expect(topo.FeedbackEdges[result.Edges[peBC]]).To(BeTrue())
		Expect(topo.FeedbackEdges[result.Edges[peCA]]).To(BeTrue())
	})

	It("produces an order covering every live node after a mutation storm", func() {
		g := graph.New()
		var pendings []id.PendingNodeId
		for i := 0; i < 50; i++ {
			pendings = append(pendings, g.AddNode(id.BuildingTypeId(i)))
		}
		result := g.ApplyMutations()
		for i := 0; i+1 < len(pendings); i++ {
			g.Connect(graph.RealNode(result.Nodes[pendings[i]]), graph.RealNode(result.Nodes[pendings[i+1]]))
		}
		g.ApplyMutations()

		topo := g.Topology()
		Expect(topo.Order).To(HaveLen(g.NodeCount()))
	})
})

func indexOf(s []id.NodeId, n id.NodeId) int {
	for i, x := range s {
		if x == n {
			return i
		}
	}
	return -1
}
