package benchmarks

import (
	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/engine"
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/registry"
	"github.com/nova-forge/factorial-sim/transport"
)

const (
	ironOre  = id.ItemTypeId(0)
	ironGear = id.ItemTypeId(1)
)

func minimalFactoryRegistry() *registry.Registry {
	b := registry.NewBuilder()
	b.RegisterItem("iron_ore", nil)
	b.RegisterItem("iron_gear", nil)
	b.RegisterRecipe("smelt_gear",
		[]registry.RecipeEntry{{Item: ironOre, Quantity: 2}},
		[]registry.RecipeEntry{{Item: ironGear, Quantity: 1}},
		5)
	return b.Build()
}

func resolvedPair(e *engine.Engine) (src, dst id.NodeId, edgeID id.EdgeId) {
	pendingSrc := e.Graph().AddNode(0)
	pendingDst := e.Graph().AddNode(0)
	pendingEdge := e.Graph().Connect(graph.PendingNode(pendingSrc), graph.PendingNode(pendingDst))
	result := e.Step()
	return result.Mutations.Nodes[pendingSrc], result.Mutations.Nodes[pendingDst], result.Mutations.Edges[pendingEdge]
}

// GetMicroScenarios returns the standard small-factory calibration
// scenarios: a single mine-to-assembler chain, and a chain with a
// continuous Speed modifier, at two throughput-relevant scales.
func GetMicroScenarios() []Scenario {
	buildMineWithAssembler := func() (*engine.Engine, id.NodeId) {
		e := engine.New(minimalFactoryRegistry(), engine.WithProfiling(true))
		mine, assembler, belt := resolvedPair(e)
		e.Commands().Submit(command.Command{
			Kind: command.SetProcessor,
			Node: mine,
			Payload: processor.Config{
				Variant:    processor.Source,
				OutputItem: ironOre,
				BaseRate:   fixed.FromFloat64(2),
				Depletion:  processor.Depletion{Infinite: true},
			},
		})
		e.Commands().Submit(command.Command{
			Kind:    command.SetProcessor,
			Node:    assembler,
			Payload: processor.Config{Variant: processor.FixedRecipe, Recipe: 0},
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
		return e, assembler
	}

	buildMine := func() *engine.Engine {
		e, _ := buildMineWithAssembler()
		return e
	}

	buildSped := func() *engine.Engine {
		e, assembler := buildMineWithAssembler()
		e.Commands().Submit(command.Command{
			Kind: command.SetModifiers,
			Node: assembler,
			Payload: []processor.Modifier{
				{ID: 0, Kind: processor.SpeedModifier, Value: fixed.FromFloat64(2)},
			},
		})
		e.Step()
		return e
	}

	return []Scenario{
		{
			Name:        "minimal_factory",
			Description: "mine (rate=2) -> flow belt -> Fixed-recipe assembler (2 ore -> 1 gear, duration=5)",
			Build:       buildMine,
			Ticks:       1000,
		},
		{
			Name:        "minimal_factory_speed_x2",
			Description: "minimal_factory with a 2x Speed modifier on the assembler",
			Build:       buildSped,
			Ticks:       1000,
		},
	}
}
