package processor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/registry"
	"github.com/nova-forge/factorial-sim/serialize"
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

var _ = Describe("CombineModifiers", func() {
	withRule := func(rule processor.StackRule) []processor.Modifier {
		return []processor.Modifier{
			{ID: 2, Kind: processor.SpeedModifier, Value: fixed.FromFloat64(1.5), Rule: rule},
			{ID: 1, Kind: processor.SpeedModifier, Value: fixed.FromFloat64(2.0), Rule: rule},
		}
	}

	It("multiplies under the default zero-value rule", func() {
		got := processor.CombineModifiers(withRule(processor.Multiplicative), processor.SpeedModifier)
		Expect(got.ToFloat64()).To(Equal(3.0))
	})

	It("sums as 1+sum under Additive", func() {
		got := processor.CombineModifiers(withRule(processor.Additive), processor.SpeedModifier)
		Expect(got.ToFloat64()).To(Equal(1.0 + 1.5 + 2.0))
	})

	It("takes the largest under Max", func() {
		got := processor.CombineModifiers(withRule(processor.Max), processor.SpeedModifier)
		Expect(got.ToFloat64()).To(Equal(2.0))
	})

	It("takes the rule from whichever same-kind modifier sorts first by ID", func() {
		mods := []processor.Modifier{
			{ID: 5, Kind: processor.SpeedModifier, Value: fixed.FromFloat64(1.5), Rule: processor.Max},
			{ID: 1, Kind: processor.SpeedModifier, Value: fixed.FromFloat64(2.0), Rule: processor.Additive},
		}
		got := processor.CombineModifiers(mods, processor.SpeedModifier)
		Expect(got.ToFloat64()).To(Equal(1.0 + 1.5 + 2.0))
	})

	It("returns one (identity) when no modifiers of that kind exist", func() {
		got := processor.CombineModifiers(withRule(processor.Multiplicative), processor.ProductivityModifier)
		Expect(got).To(Equal(fixed.One64))
	})
})

var _ = Describe("Source processor", func() {
	It("emits base_rate items per tick into its output", func() {
		p := processor.NewProcessor(processor.Config{
			Variant:    processor.Source,
			OutputItem: ore,
			BaseRate:   fixed.FromFloat64(5),
			Depletion:  processor.Depletion{Infinite: true},
		})
		out := inventory.NewInventory(1, 1000)
		p.Step(processor.StepContext{Output: out})
		Expect(out.Quantity(ore)).To(Equal(uint32(5)))
		Expect(p.State.Kind).To(Equal(processor.Idle))
	})

	It("accumulates fractional rate across ticks instead of losing it", func() {
		p := processor.NewProcessor(processor.Config{
			Variant:    processor.Source,
			OutputItem: ore,
			BaseRate:   fixed.FromFloat64(0.5),
			Depletion:  processor.Depletion{Infinite: true},
		})
		out := inventory.NewInventory(1, 1000)
		for i := 0; i < 4; i++ {
			p.Step(processor.StepContext{Output: out})
		}
		Expect(out.Quantity(ore)).To(Equal(uint32(2)))
	})

	It("stalls with OutputFull and leaves unproduced items unaccounted", func() {
		p := processor.NewProcessor(processor.Config{
			Variant:    processor.Source,
			OutputItem: ore,
			BaseRate:   fixed.FromFloat64(10),
			Depletion:  processor.Depletion{Infinite: true},
		})
		out := inventory.NewInventory(1, 4)
		p.Step(processor.StepContext{Output: out})
		Expect(p.State.Kind).To(Equal(processor.Stalled))
		Expect(p.State.Stall.Reason).To(Equal(processor.OutputFull))
		Expect(out.Quantity(ore)).To(Equal(uint32(4)))
	})

	It("stops at depletion when finite", func() {
		p := processor.NewProcessor(processor.Config{
			Variant:    processor.Source,
			OutputItem: ore,
			BaseRate:   fixed.FromFloat64(10),
			Depletion:  processor.Depletion{Remaining: 15},
		})
		out := inventory.NewInventory(1, 1000)
		p.Step(processor.StepContext{Output: out})
		p.Step(processor.StepContext{Output: out})
		Expect(out.Quantity(ore)).To(Equal(uint32(15)))
	})
})

var _ = Describe("Demand processor", func() {
	It("removes base_rate items per tick and tracks lifetime consumed", func() {
		p := processor.NewProcessor(processor.Config{
			Variant:    processor.Demand,
			DemandItem: ore,
			BaseRate:   fixed.FromFloat64(3),
		})
		in := inventory.NewInventory(1, 1000)
		in.Add(ore, 100)
		p.Step(processor.StepContext{Input: in})
		Expect(in.Quantity(ore)).To(Equal(uint32(97)))
		Expect(p.LifetimeConsumed()).To(Equal(uint64(3)))
	})

	It("stalls with MissingInput when the input runs dry", func() {
		p := processor.NewProcessor(processor.Config{
			Variant:    processor.Demand,
			DemandItem: ore,
			BaseRate:   fixed.FromFloat64(10),
		})
		in := inventory.NewInventory(1, 1000)
		in.Add(ore, 4)
		p.Step(processor.StepContext{Input: in})
		Expect(p.State.Kind).To(Equal(processor.Stalled))
		Expect(p.State.Stall.Reason).To(Equal(processor.MissingInput))
	})
})

var _ = Describe("FixedRecipe processor", func() {
	It("stalls with MissingInput when ingredients are absent", func() {
		reg := newRegistry()
		recipeID, _ := reg.RecipeByName("smelt")
		p := processor.NewProcessor(processor.Config{Variant: processor.FixedRecipe, Recipe: recipeID})
		in := inventory.NewInventory(1, 1000)
		out := inventory.NewInventory(1, 1000)
		p.Step(processor.StepContext{Registry: reg, Input: in, Output: out})
		Expect(p.State.Kind).To(Equal(processor.Stalled))
		Expect(p.State.Stall.Reason).To(Equal(processor.MissingInput))
	})

	It("consumes inputs and starts Working once ingredients are present", func() {
		reg := newRegistry()
		recipeID, _ := reg.RecipeByName("smelt")
		p := processor.NewProcessor(processor.Config{Variant: processor.FixedRecipe, Recipe: recipeID})
		in := inventory.NewInventory(1, 1000)
		in.Add(ore, 2)
		out := inventory.NewInventory(1, 1000)
		p.Step(processor.StepContext{Registry: reg, Input: in, Output: out})
		Expect(p.State.Kind).To(Equal(processor.Working))
		Expect(in.Quantity(ore)).To(Equal(uint32(0)))
	})

	It("completes after duration ticks and writes outputs", func() {
		reg := newRegistry()
		recipeID, _ := reg.RecipeByName("smelt")
		p := processor.NewProcessor(processor.Config{Variant: processor.FixedRecipe, Recipe: recipeID})
		in := inventory.NewInventory(1, 1000)
		in.Add(ore, 2)
		out := inventory.NewInventory(1, 1000)
		ctx := processor.StepContext{Registry: reg, Input: in, Output: out}

		p.Step(ctx) // start
		var completedAt = -1
		for i := 0; i < 3; i++ {
			res := p.Step(ctx)
			if res.RecipeCompleted {
				completedAt = i
				break
			}
		}
		Expect(completedAt).To(BeNumerically(">=", 0))
		Expect(out.Quantity(plate)).To(Equal(uint32(1)))
		Expect(p.State.Kind).To(Equal(processor.Idle))
	})

	It("stalls with NoRecipe when the recipe id is unknown", func() {
		reg := newRegistry()
		p := processor.NewProcessor(processor.Config{Variant: processor.FixedRecipe, Recipe: id.RecipeId(999)})
		p.Step(processor.StepContext{Registry: reg, Input: inventory.NewInventory(1, 10), Output: inventory.NewInventory(1, 10)})
		Expect(p.State.Stall.Reason).To(Equal(processor.NoRecipe))
	})
})

var _ = Describe("Passthrough processor", func() {
	It("never leaves Idle", func() {
		p := processor.NewProcessor(processor.Config{Variant: processor.Passthrough})
		p.Step(processor.StepContext{})
		Expect(p.State.Kind).To(Equal(processor.Idle))
	})
})

var _ = Describe("Encode/Decode", func() {
	It("round-trips config, state, and residue accumulators", func() {
		reg := newRegistry()
		recipeID, _ := reg.RecipeByName("smelt")
		p := processor.NewProcessor(processor.Config{
			Variant:       processor.FixedRecipe,
			Recipe:        recipeID,
			AcceptedTypes: []id.ItemTypeId{ore},
		})
		in := inventory.NewInventory(1, 1000)
		in.Add(ore, 2)
		out := inventory.NewInventory(1, 1000)
		p.Step(processor.StepContext{Registry: reg, Input: in, Output: out})

		w := serialize.NewWriter()
		p.Encode(w)

		loaded, err := processor.Decode(serialize.NewReader(w.Bake()))
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Config).To(Equal(p.Config))
		Expect(loaded.State).To(Equal(p.State))
	})
})
