package scenarios_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/engine"
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/transport"
)

// S4: two engines given identical commands stay hash-identical; a modifier
// applied to only one then diverges their hashes on the very next tick.
// Grounded on factorial-core/examples/multiplayer_desync.rs.
var _ = Describe("S4 desync detection", func() {
	setupFactory := func(e *engine.Engine) (mine, smelter id.NodeId) {
		mine, smelter, belt := resolvedPair(e)
		e.Commands().Submit(command.Command{
			Kind: command.SetProcessor,
			Node: mine,
			Payload: processor.Config{
				Variant:    processor.Source,
				OutputItem: ironOre,
				BaseRate:   fixed.FromFloat64(3),
				Depletion:  processor.Depletion{Infinite: true},
			},
		})
		e.Commands().Submit(command.Command{
			Kind: command.SetProcessor,
			Node: smelter,
			Payload: processor.Config{
				Variant: processor.FixedRecipe,
				Recipe:  0,
			},
		})
		e.Commands().Submit(command.Command{
			Kind: command.SetTransport,
			Edge: belt,
			Payload: transport.Config{
				Kind:           transport.Flow,
				Item:           ironOre,
				Rate:           fixed.FromFloat64(5),
				BufferCapacity: fixed.FromFloat64(100),
			},
		})
		e.Step()
		return mine, smelter
	}

	It("keeps two engines hash-identical under identical commands, then diverges after a one-sided modifier", func() {
		a := engine.New(minimalFactoryRegistry())
		b := engine.New(minimalFactoryRegistry())

		setupFactory(a)
		_, smelterB := setupFactory(b)

		for i := 0; i < 10; i++ {
			a.Step()
			b.Step()
		}
		Expect(a.LastHash()).To(Equal(b.LastHash()))

		b.Commands().Submit(command.Command{
			Kind: command.SetModifiers,
			Node: smelterB,
			Payload: []processor.Modifier{
				{ID: 0, Kind: processor.SpeedModifier, Value: fixed.FromFloat64(2)},
			},
		})

		a.Step()
		b.Step()
		Expect(a.LastHash()).NotTo(Equal(b.LastHash()), "a one-sided speed modifier must diverge state on the tick it takes effect")

		for i := 0; i < 4; i++ {
			a.Step()
			b.Step()
		}
		Expect(a.LastHash()).NotTo(Equal(b.LastHash()))
	})
})
