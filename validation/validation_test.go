package validation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/engine"
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/registry"
	"github.com/nova-forge/factorial-sim/transport"
	"github.com/nova-forge/factorial-sim/validation"
)

const ore = id.ItemTypeId(0)
const plate = id.ItemTypeId(1)

func newRegistry() *registry.Registry {
	b := registry.NewBuilder()
	b.RegisterItem("ore", nil)
	b.RegisterItem("plate", nil)
	b.RegisterRecipe("smelt",
		[]registry.RecipeEntry{{Item: ore, Quantity: 2}},
		[]registry.RecipeEntry{{Item: plate, Quantity: 1}},
		3)
	return b.Build()
}

// twoNodeFactory builds a source -> flow transport -> fixed-recipe smelter,
// stepping once to resolve the mutations and once more to install the
// configs.
func twoNodeFactory(reg *registry.Registry, opts ...engine.Option) (e *engine.Engine, src, dst id.NodeId, edgeID id.EdgeId) {
	e = engine.New(reg, opts...)
	pendingSrc := e.Graph().AddNode(0)
	pendingDst := e.Graph().AddNode(0)
	pendingEdge := e.Graph().Connect(graph.PendingNode(pendingSrc), graph.PendingNode(pendingDst))
	result := e.Step()

	src = result.Mutations.Nodes[pendingSrc]
	dst = result.Mutations.Nodes[pendingDst]
	edgeID = result.Mutations.Edges[pendingEdge]

	e.Commands().Submit(command.Command{
		Kind: command.SetProcessor,
		Node: src,
		Payload: processor.Config{
			Variant:    processor.Source,
			OutputItem: ore,
			BaseRate:   fixed.FromFloat64(10),
			Depletion:  processor.Depletion{Infinite: true},
		},
	})
	e.Commands().Submit(command.Command{
		Kind: command.SetProcessor,
		Node: dst,
		Payload: processor.Config{
			Variant: processor.FixedRecipe,
			Recipe:  0,
		},
	})
	e.Commands().Submit(command.Command{
		Kind: command.SetTransport,
		Edge: edgeID,
		Payload: transport.Config{
			Kind:           transport.Flow,
			Item:           ore,
			Rate:           fixed.FromFloat64(10),
			BufferCapacity: fixed.FromFloat64(100),
		},
	})
	e.Step()

	return e, src, dst, edgeID
}

var _ = Describe("QuickCompare", func() {
	It("reports every subsystem matching for two identical runs", func() {
		reg := newRegistry()
		a, _, _, _ := twoNodeFactory(reg, engine.WithSeed(7))
		b, _, _, _ := twoNodeFactory(reg, engine.WithSeed(7))
		for i := 0; i < 10; i++ {
			a.Step()
			b.Step()
		}

		diff := validation.QuickCompare(a, b)
		Expect(diff.GraphMatches).To(BeTrue())
		Expect(diff.ProcessorsMatch).To(BeTrue())
		Expect(diff.InventoriesMatch).To(BeTrue())
		Expect(diff.TransportsMatch).To(BeTrue())
		Expect(diff.SimStateMatches).To(BeTrue())
	})

	It("flags a mismatch once the two runs diverge", func() {
		reg := newRegistry()
		a, _, _, _ := twoNodeFactory(reg, engine.WithSeed(7))
		b, _, _, _ := twoNodeFactory(reg, engine.WithSeed(7))
		for i := 0; i < 10; i++ {
			a.Step()
			b.Step()
		}
		b.Step() // b runs one tick further than a

		diff := validation.QuickCompare(a, b)
		Expect(diff.SimStateMatches).To(BeFalse())
	})
})

var _ = Describe("Diff", func() {
	It("reports no diffs for two identical runs", func() {
		reg := newRegistry()
		a, _, _, _ := twoNodeFactory(reg, engine.WithSeed(3))
		b, _, _, _ := twoNodeFactory(reg, engine.WithSeed(3))
		for i := 0; i < 5; i++ {
			a.Step()
			b.Step()
		}

		d := validation.Diff(a, b)
		Expect(d.IsIdentical).To(BeTrue())
		Expect(d.NodeDiffs).To(BeEmpty())
		Expect(d.EdgeDiffs).To(BeEmpty())
	})

	It("reports a node-only-in-one diff when one engine has an extra node", func() {
		reg := newRegistry()
		a, _, _, _ := twoNodeFactory(reg)
		b, _, _, _ := twoNodeFactory(reg)
		b.Graph().AddNode(0)
		b.Step()

		d := validation.Diff(a, b)
		Expect(d.IsIdentical).To(BeFalse())
		found := false
		for _, nd := range d.NodeDiffs {
			if nd.Kind == validation.OnlyInB {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("reports an edge-only-in-one diff when one engine has an extra edge", func() {
		reg := newRegistry()
		a, _, _, _ := twoNodeFactory(reg)
		b, bSrc, bDst, _ := twoNodeFactory(reg)
		_ = bSrc
		extra := b.Graph().AddNode(0)
		result := b.Step()
		extraID := result.Mutations.Nodes[extra]
		b.Graph().Connect(graph.RealNode(bDst), graph.RealNode(extraID))
		b.Step()

		d := validation.Diff(a, b)
		Expect(d.IsIdentical).To(BeFalse())
		found := false
		for _, ed := range d.EdgeDiffs {
			if ed.Kind == validation.EdgeOnlyInB {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("reports a node state mismatch when inventories diverge", func() {
		reg := newRegistry()
		a, _, dst, _ := twoNodeFactory(reg)
		b, _, bDst, _ := twoNodeFactory(reg)
		for i := 0; i < 20; i++ {
			a.Step()
		}
		for i := 0; i < 5; i++ {
			b.Step()
		}

		d := validation.Diff(a, b)
		found := false
		for _, nd := range d.NodeDiffs {
			if nd.Kind == validation.NodeStateMismatch && nd.Node == dst {
				found = true
				Expect(nd.Description).NotTo(BeEmpty())
			}
		}
		_ = bDst
		Expect(found).To(BeTrue())
	})
})

var _ = Describe("CheckDeterminism", func() {
	It("confirms two independent replays of the same snapshot never diverge", func() {
		reg := newRegistry()
		e, _, _, _ := twoNodeFactory(reg, engine.WithSeed(99))
		for i := 0; i < 5; i++ {
			e.Step()
		}
		data := e.Serialize()

		result, err := validation.CheckDeterminism(reg, data, 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsDeterministic).To(BeTrue())
		Expect(result.Diverged).To(BeFalse())
		Expect(result.HashLog).To(HaveLen(30))
	})

	It("returns an error when the snapshot fails to deserialize", func() {
		reg := newRegistry()
		_, err := validation.CheckDeterminism(reg, []byte("not a real snapshot"), 5)
		Expect(err).To(HaveOccurred())
	})
})
