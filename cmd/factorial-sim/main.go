// Package main provides the entry point for factorial-sim's demo factory:
// an iron mine feeding an assembler over a flow belt, stepped for a
// configurable number of ticks.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/engine"
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/registry"
	"github.com/nova-forge/factorial-sim/transport"
)

var (
	ticks   = flag.Int("ticks", 10, "number of ticks to run")
	seed    = flag.Uint64("seed", 0, "PRNG seed")
	verbose = flag.Bool("v", false, "print a snapshot after every tick")
)

const (
	ironOre  = id.ItemTypeId(0)
	ironGear = id.ItemTypeId(1)
)

func main() {
	flag.Parse()

	if *ticks < 1 {
		fmt.Fprintln(os.Stderr, "ticks must be >= 1")
		os.Exit(1)
	}

	e := buildMinimalFactory()

	fmt.Printf("Running %d ticks of minimal factory...\n\n", *ticks)

	for tick := 0; tick < *ticks; tick++ {
		e.Step()

		if *verbose {
			fmt.Printf("=== Tick %d ===\n", tick+1)
			for _, snap := range e.SnapshotAllNodes() {
				fmt.Printf("  Node %v (building %v): state=%v input=%d output=%d\n",
					snap.Node, snap.BuildingType, snap.ProcessorState.Kind, snap.InputTotal, snap.OutputTotal)
			}
			fmt.Println()
		}
	}

	fmt.Printf("Final tick: %d\n", e.Tick())
	fmt.Printf("Final state hash: %d\n", e.LastHash())
}

// buildMinimalFactory wires an iron mine (Source, rate=2, infinite) into an
// assembler (Fixed recipe: 2 iron_ore -> 1 iron_gear, duration=5) over a
// zero-latency flow belt.
func buildMinimalFactory() *engine.Engine {
	b := registry.NewBuilder()
	b.RegisterItem("iron_ore", nil)
	b.RegisterItem("iron_gear", nil)
	b.RegisterRecipe("smelt_gear",
		[]registry.RecipeEntry{{Item: ironOre, Quantity: 2}},
		[]registry.RecipeEntry{{Item: ironGear, Quantity: 1}},
		5)

	e := engine.New(b.Build(), engine.WithSeed(*seed))

	pendingMine := e.Graph().AddNode(0)
	pendingAssembler := e.Graph().AddNode(1)
	result := e.Step()
	mine := result.Mutations.Nodes[pendingMine]
	assembler := result.Mutations.Nodes[pendingAssembler]

	pendingBelt := e.Graph().Connect(graph.RealNode(mine), graph.RealNode(assembler))
	result = e.Step()
	belt := result.Mutations.Edges[pendingBelt]

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

	return e
}
