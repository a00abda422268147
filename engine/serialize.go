package engine

import (
	"fmt"

	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/serialize"
	"github.com/nova-forge/factorial-sim/transport"
)

// Serialize encodes the engine's full state into a versioned snapshot
// frame: a sim section (tick, PRNG state, driver accumulator), a nodes
// section (graph node/processor/inventory/modifier state), and an edges
// section (graph edge/transport state) — in the same canonical order
// computeHash walks. The frame header carries the registry's fingerprint,
// so Deserialize can reject loading against a mismatched registry before
// touching any section.
func (e *Engine) Serialize() []byte {
	enc := serialize.NewEncoder()

	simW := serialize.NewWriter()
	simW.Uint64(e.tick)
	simW.Uint64(e.rng.State())
	simW.Int64(e.driver.Accumulator().Bits())
	enc.Section(serialize.SectionSim, simW.Bake())

	gs := e.graph.Snapshot()

	nodesW := serialize.NewWriter()
	encodeAllocator(nodesW, gs.NodeAlloc)
	nodeIds := e.graph.Nodes()
	nodesW.Uint32(uint32(len(nodeIds)))
	for _, n := range nodeIds {
		nodesW.Uint32(n.Index)
		nodesW.Uint32(n.Generation)
		rec := gs.Nodes[n]
		nodesW.Uint32(uint32(rec.BuildingType))

		hasProc := e.processors[n] != nil
		nodesW.Bool(hasProc)
		if hasProc {
			e.processors[n].Encode(nodesW)
		}

		hasIn := e.inputs[n] != nil
		nodesW.Bool(hasIn)
		if hasIn {
			e.inputs[n].Encode(nodesW)
		}

		hasOut := e.outputs[n] != nil
		nodesW.Bool(hasOut)
		if hasOut {
			e.outputs[n].Encode(nodesW)
		}

		mods := e.modifiers[n]
		nodesW.Uint32(uint32(len(mods)))
		for _, m := range mods {
			nodesW.Uint32(uint32(m.ID))
			nodesW.Uint32(uint32(m.Kind))
			nodesW.Int64(m.Value.Bits())
			nodesW.Uint32(uint32(m.Rule))
		}
	}
	enc.Section(serialize.SectionNodes, nodesW.Bake())

	edgesW := serialize.NewWriter()
	encodeAllocator(edgesW, gs.EdgeAlloc)
	edgeIds := e.graph.Edges()
	edgesW.Uint32(uint32(len(edgeIds)))
	for _, edgeID := range edgeIds {
		edgesW.Uint32(edgeID.Index)
		edgesW.Uint32(edgeID.Generation)
		rec := gs.Edges[edgeID]
		edgesW.Uint32(rec.From.Index)
		edgesW.Uint32(rec.From.Generation)
		edgesW.Uint32(rec.To.Index)
		edgesW.Uint32(rec.To.Generation)

		hasTransport := e.transports[edgeID] != nil
		edgesW.Bool(hasTransport)
		if hasTransport {
			e.transports[edgeID].Encode(edgesW)
		}
	}
	enc.Section(serialize.SectionEdges, edgesW.Bake())

	return enc.Finish(e.registry.Fingerprint())
}

// Deserialize replaces the engine's entire mutable state (graph, processors,
// inventories, modifiers, transports, tick, PRNG, driver accumulator) with
// what was encoded in data by Serialize. The engine's registry, command
// queue, event bus, module registry, and options (logger, profiling) are
// left untouched — only simulation state is replaced. Returns a
// *serialize.Error (never panics) if data is corrupt, the wrong version,
// or was produced against a different-content registry.
func (e *Engine) Deserialize(data []byte) error {
	frame, err := serialize.ParseFrame(data)
	if err != nil {
		return err
	}
	if want := e.registry.Fingerprint(); frame.Header.Fingerprint != want {
		return &serialize.Error{
			Kind: serialize.FingerprintMismatch,
			Msg:  fmt.Sprintf("snapshot fingerprint %#x does not match this engine's registry %#x", frame.Header.Fingerprint, want),
		}
	}

	simPayload, ok := frame.Sections[serialize.SectionSim]
	if !ok {
		return &serialize.Error{Kind: serialize.Corruption, Msg: "missing sim section"}
	}
	simR := serialize.NewReader(simPayload)
	tick, err := simR.Uint64()
	if err != nil {
		return err
	}
	rngState, err := simR.Uint64()
	if err != nil {
		return err
	}
	accBits, err := simR.Int64()
	if err != nil {
		return err
	}

	nodesPayload, ok := frame.Sections[serialize.SectionNodes]
	if !ok {
		return &serialize.Error{Kind: serialize.Corruption, Msg: "missing nodes section"}
	}
	nodesR := serialize.NewReader(nodesPayload)
	nodeAlloc, err := decodeAllocator(nodesR)
	if err != nil {
		return err
	}
	nodeCount, err := nodesR.Uint32()
	if err != nil {
		return err
	}

	nodes := make(map[id.NodeId]graph.NodeRecord, nodeCount)
	processors := make(map[id.NodeId]*processor.Processor, nodeCount)
	inputs := make(map[id.NodeId]*inventory.Inventory, nodeCount)
	outputs := make(map[id.NodeId]*inventory.Inventory, nodeCount)
	modifiers := make(map[id.NodeId][]processor.Modifier, nodeCount)

	for i := uint32(0); i < nodeCount; i++ {
		idx, err := nodesR.Uint32()
		if err != nil {
			return err
		}
		gen, err := nodesR.Uint32()
		if err != nil {
			return err
		}
		n := id.NodeId{Index: idx, Generation: gen}

		buildingType, err := nodesR.Uint32()
		if err != nil {
			return err
		}
		nodes[n] = graph.NodeRecord{BuildingType: id.BuildingTypeId(buildingType)}

		hasProc, err := nodesR.Bool()
		if err != nil {
			return err
		}
		if hasProc {
			p, err := processor.Decode(nodesR)
			if err != nil {
				return err
			}
			processors[n] = p
		}

		hasIn, err := nodesR.Bool()
		if err != nil {
			return err
		}
		if hasIn {
			inv, err := inventory.Decode(nodesR)
			if err != nil {
				return err
			}
			inputs[n] = inv
		}

		hasOut, err := nodesR.Bool()
		if err != nil {
			return err
		}
		if hasOut {
			inv, err := inventory.Decode(nodesR)
			if err != nil {
				return err
			}
			outputs[n] = inv
		}

		modCount, err := nodesR.Uint32()
		if err != nil {
			return err
		}
		if modCount > 0 {
			mods := make([]processor.Modifier, modCount)
			for j := range mods {
				modID, err := nodesR.Uint32()
				if err != nil {
					return err
				}
				kind, err := nodesR.Uint32()
				if err != nil {
					return err
				}
				value, err := nodesR.Int64()
				if err != nil {
					return err
				}
				rule, err := nodesR.Uint32()
				if err != nil {
					return err
				}
				mods[j] = processor.Modifier{
					ID:    id.ModifierId(modID),
					Kind:  processor.ModifierKind(kind),
					Value: fixed.Fixed64FromBits(value),
					Rule:  processor.StackRule(rule),
				}
			}
			modifiers[n] = mods
		}
	}

	edgesPayload, ok := frame.Sections[serialize.SectionEdges]
	if !ok {
		return &serialize.Error{Kind: serialize.Corruption, Msg: "missing edges section"}
	}
	edgesR := serialize.NewReader(edgesPayload)
	edgeAlloc, err := decodeAllocator(edgesR)
	if err != nil {
		return err
	}
	edgeCount, err := edgesR.Uint32()
	if err != nil {
		return err
	}

	edges := make(map[id.EdgeId]graph.EdgeRecord, edgeCount)
	transports := make(map[id.EdgeId]*transport.Transport, edgeCount)

	for i := uint32(0); i < edgeCount; i++ {
		idx, err := edgesR.Uint32()
		if err != nil {
			return err
		}
		gen, err := edgesR.Uint32()
		if err != nil {
			return err
		}
		edgeID := id.EdgeId{Index: idx, Generation: gen}

		fromIdx, err := edgesR.Uint32()
		if err != nil {
			return err
		}
		fromGen, err := edgesR.Uint32()
		if err != nil {
			return err
		}
		toIdx, err := edgesR.Uint32()
		if err != nil {
			return err
		}
		toGen, err := edgesR.Uint32()
		if err != nil {
			return err
		}
		edges[edgeID] = graph.EdgeRecord{
			From: id.NodeId{Index: fromIdx, Generation: fromGen},
			To:   id.NodeId{Index: toIdx, Generation: toGen},
		}

		hasTransport, err := edgesR.Bool()
		if err != nil {
			return err
		}
		if hasTransport {
			t, err := transport.Decode(edgesR)
			if err != nil {
				return err
			}
			transports[edgeID] = t
		}
	}

	e.graph = graph.Restore(graph.Snapshot{
		NodeAlloc: nodeAlloc,
		EdgeAlloc: edgeAlloc,
		Nodes:     nodes,
		Edges:     edges,
	})
	e.processors = processors
	e.inputs = inputs
	e.outputs = outputs
	e.modifiers = modifiers
	e.transports = transports

	e.tick = tick
	e.rng.SetState(rngState)
	e.driver.SetAccumulator(fixed.Fixed64FromBits(accBits))

	return nil
}

func encodeAllocator(w *serialize.Writer, snap id.AllocatorSnapshot) {
	w.Uint32(uint32(len(snap.Generations)))
	for _, g := range snap.Generations {
		w.Uint32(g)
	}
	w.Uint32(uint32(len(snap.Free)))
	for _, f := range snap.Free {
		w.Uint32(f)
	}
	w.Uint32(snap.Live)
}

func decodeAllocator(r *serialize.Reader) (id.AllocatorSnapshot, error) {
	genCount, err := r.Uint32()
	if err != nil {
		return id.AllocatorSnapshot{}, err
	}
	generations := make([]uint32, genCount)
	for i := range generations {
		v, err := r.Uint32()
		if err != nil {
			return id.AllocatorSnapshot{}, err
		}
		generations[i] = v
	}

	freeCount, err := r.Uint32()
	if err != nil {
		return id.AllocatorSnapshot{}, err
	}
	free := make([]uint32, freeCount)
	for i := range free {
		v, err := r.Uint32()
		if err != nil {
			return id.AllocatorSnapshot{}, err
		}
		free[i] = v
	}

	live, err := r.Uint32()
	if err != nil {
		return id.AllocatorSnapshot{}, err
	}

	return id.AllocatorSnapshot{Generations: generations, Free: free, Live: live}, nil
}
