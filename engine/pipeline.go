package engine

import (
	"github.com/nova-forge/factorial-sim/event"
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/itemprops"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/sim"
	"github.com/nova-forge/factorial-sim/transport"
)

// StepResult reports what one Step call did: the graph's pending-to-real
// resolution from this tick's mutation batch, the new tick number, and the
// state hash computed at tick end.
type StepResult struct {
	Mutations graph.MutationResult
	Tick      uint64
	Hash      uint64
}

// Step executes exactly one tick in six phases: pre-tick (drain commands
// and mutations), transport, process, module, post-tick (flush events),
// bookkeeping (advance tick, recompute hash). Content-level problems
// (missing input, full output) never panic here; they surface as
// processor Stalled states and events. A dangling edge or a double-applied
// pending handle is a programmer error in a caller and is not defended
// against beyond what the graph package already guarantees.
func (e *Engine) Step() StepResult {
	e.profile = TickProfile{}

	// 1. Pre-tick.
	mutations := timedPhase(e, func() graph.MutationResult {
		e.queue.SetTick(e.tick)
		for _, cmd := range e.queue.Drain() {
			e.dispatchCommand(cmd)
		}
		result := e.graph.ApplyMutations()
		e.reconcileNodeTables()
		e.reconcileEdgeTables()
		return result
	}, &e.profile.PreTick)

	// 2. Transport: edges in EdgeId order, so this tick's deliveries are
	// visible to processors in phase 3.
	e.timedPhaseVoid(func() {
		for _, edgeID := range e.graph.Edges() {
			t, ok := e.transports[edgeID]
			if !ok {
				continue
			}
			rec, ok := e.graph.Edge(edgeID)
			if !ok {
				continue
			}
			src, srcOK := e.outputs[rec.From]
			sink, sinkOK := e.inputs[rec.To]
			if !srcOK || !sinkOK {
				continue
			}
			before := sink.Quantity(t.Config.Item)
			t.Step(transport.StepContext{Source: src, Sink: sink})
			delivered := sink.Quantity(t.Config.Item) - before
			if delivered > 0 {
				e.events.Emit(event.Event{
					Kind: event.ItemTransferred,
					Tick: e.tick,
					Edge: edgeID,
					Item: t.Config.Item,
					Qty:  fixed.FromInt64(int64(delivered)),
				})
			}
		}
	}, &e.profile.Transport)

	// 3. Process: nodes in topological order (feedback edges broken
	// deterministically by ascending NodeId.Index within an SCC, see
	// graph.Topology).
	e.timedPhaseVoid(func() {
		order := e.graph.Topology().Order
		for _, nodeID := range order {
			e.stepNode(nodeID)
		}
	}, &e.profile.Process)

	// 4. Component / Module.
	e.timedPhaseVoid(func() {
		e.modules.OnTick(e.moduleContext())
	}, &e.profile.Module)

	// 5. Post-tick: flush events to passive listeners, in emission order.
	e.timedPhaseVoid(func() {
		e.events.Flush()
	}, &e.profile.PostTick)

	// 6. Bookkeeping.
	var hash uint64
	e.timedPhaseVoid(func() {
		e.tick++
		hash = e.computeHash()
		e.lastHash = hash
	}, &e.profile.Bookkeeping)

	return StepResult{Mutations: mutations, Tick: e.tick, Hash: hash}
}

// Advance runs zero or more Step calls according to the configured
// sim.Strategy: exactly one under TickStrategy, or one per accumulated
// FixedTimestep under DeltaStrategy (remainder carried forward).
func (e *Engine) Advance(dt fixed.Fixed64) sim.AdvanceResult {
	steps := e.driver.StepsFor(dt)
	result := sim.AdvanceResult{}
	for i := uint64(0); i < steps; i++ {
		r := e.Step()
		result.StepsRun++
		result.Hashes = append(result.Hashes, r.Hash)
	}
	return result
}

func (e *Engine) stepNode(n id.NodeId) {
	p, ok := e.processors[n]
	if !ok {
		return
	}
	in := e.inputs[n]
	out := e.outputs[n]
	mods := e.modifiers[n]

	wasStalled := p.State.Kind == processor.Stalled
	result := p.Step(processor.StepContext{
		Registry:  e.registry,
		Input:     in,
		Output:    out,
		Modifiers: mods,
	})

	for _, a := range result.Consumed {
		e.events.Emit(event.Event{Kind: event.ItemConsumed, Tick: e.tick, Node: n, Item: a.Item, Qty: fixed.FromInt64(int64(a.Qty))})
	}
	for _, a := range result.Produced {
		e.events.Emit(event.Event{Kind: event.ItemProduced, Tick: e.tick, Node: n, Item: a.Item, Qty: fixed.FromInt64(int64(a.Qty))})
	}
	if p.Config.Variant == processor.Source && len(p.Config.InitialProperties) > 0 {
		e.stampProducedInstances(n, result.Produced)
	}
	if result.RecipeCompleted {
		e.events.Emit(event.Event{Kind: event.RecipeCompleted, Tick: e.tick, Node: n})
	}
	if result.OutputFull {
		e.events.Emit(event.Event{Kind: event.InventoryFull, Tick: e.tick, Node: n, Item: result.OutputItem})
	}

	switch {
	case p.State.Kind == processor.Stalled:
		e.events.Emit(stallEvent(e.tick, n, p.State.Stall))
		e.logStall(n, p.State.Stall)
	case wasStalled:
		e.events.Emit(unstalledEvent(e.tick, n))
		e.logUnstalled(n)
	}
}

// stampProducedInstances mints one InstanceId per item a Source with
// InitialProperties produced this tick and stores the stamped properties in
// the engine's bounded itemprops cache. The produced items themselves stay
// ordinary fungible stock in the output inventory — only the cache entry
// records that a given instance id carries these properties, for a caller
// to look up by whatever identifies the instance downstream (e.g. a UI
// assigning serial numbers to quality-tracked output).
func (e *Engine) stampProducedInstances(n id.NodeId, produced []processor.ItemAmount) {
	props := e.processors[n].Config.InitialProperties
	for _, a := range produced {
		for i := uint32(0); i < a.Qty; i++ {
			idx, gen := e.instanceAlloc.Alloc()
			inst := id.InstanceId{Index: idx, Generation: gen}
			e.itemProps.Set(inst, itemprops.Properties(props))
		}
	}
}

// reconcileNodeTables brings the per-node tables in line with the current
// graph: new nodes get a default Passthrough processor and empty
// inventories; nodes removed by this tick's mutation batch have their
// associated state dropped.
func (e *Engine) reconcileNodeTables() {
	live := make(map[id.NodeId]bool, e.graph.NodeCount())
	for _, n := range e.graph.Nodes() {
		live[n] = true
		if _, ok := e.processors[n]; ok {
			continue
		}
		e.processors[n] = processor.NewProcessor(processor.Config{Variant: processor.Passthrough})
		e.inputs[n] = inventory.NewInventory(DefaultInputSlots, DefaultSlotCapacity)
		e.outputs[n] = inventory.NewInventory(DefaultOutputSlots, DefaultSlotCapacity)
	}
	for n := range e.processors {
		if live[n] {
			continue
		}
		delete(e.processors, n)
		delete(e.inputs, n)
		delete(e.outputs, n)
		delete(e.modifiers, n)
	}
}

// reconcileEdgeTables mirrors reconcileNodeTables for per-edge transport
// state. A freshly connected edge gets a zero-rate Flow transport until a
// SetTransport command configures it.
func (e *Engine) reconcileEdgeTables() {
	live := make(map[id.EdgeId]bool, e.graph.EdgeCount())
	for _, edgeID := range e.graph.Edges() {
		live[edgeID] = true
		if _, ok := e.transports[edgeID]; ok {
			continue
		}
		e.transports[edgeID] = transport.NewTransport(transport.Config{Kind: transport.Flow})
	}
	for edgeID := range e.transports {
		if live[edgeID] {
			continue
		}
		delete(e.transports, edgeID)
	}
}
