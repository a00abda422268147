package engine

import (
	"github.com/nova-forge/factorial-sim/sim"
)

// computeHash recomputes the FNV-1a state hash over the canonical
// serialization: tick, PRNG state, then node list in handle order (each
// with processor config+state, input inventory, output inventory,
// modifiers), then edge list in handle order (endpoints, transport config
// + runtime). Hash-table iteration never drives this order: node/edge
// lists come from graph.Nodes()/graph.Edges(), both already sorted by
// handle index.
func (e *Engine) computeHash() uint64 {
	h := sim.NewHasher()
	h.WriteUint64(e.tick)
	h.WriteUint64(e.rng.State())

	for _, n := range e.graph.Nodes() {
		h.WriteUint32(n.Index)
		h.WriteUint32(n.Generation)
		if p, ok := e.processors[n]; ok {
			p.HashState(h)
		}
		if in, ok := e.inputs[n]; ok {
			in.HashState(h)
		}
		if out, ok := e.outputs[n]; ok {
			out.HashState(h)
		}
		mods := e.modifiers[n]
		h.WriteUint64(uint64(len(mods)))
		for _, m := range mods {
			h.WriteUint32(uint32(m.ID))
			h.WriteUint64(uint64(m.Kind))
			h.WriteInt64(m.Value.Bits())
			h.WriteUint64(uint64(m.Rule))
		}
	}

	for _, edgeID := range e.graph.Edges() {
		h.WriteUint32(edgeID.Index)
		h.WriteUint32(edgeID.Generation)
		if rec, ok := e.graph.Edge(edgeID); ok {
			h.WriteUint32(rec.From.Index)
			h.WriteUint32(rec.From.Generation)
			h.WriteUint32(rec.To.Index)
			h.WriteUint32(rec.To.Generation)
		}
		if t, ok := e.transports[edgeID]; ok {
			t.HashState(h)
		}
	}

	return h.Sum64()
}

// SubsystemHashes exposes per-subsystem digests so a caller can localize a
// desync instead of only knowing the overall hash diverged.
type SubsystemHashes struct {
	Graph       uint64
	Processors  uint64
	Inventories uint64
	Transports  uint64
	Sim         uint64
}

// Subsystems computes independent hashes over each subsystem's state,
// using the same canonical ordering as computeHash.
func (e *Engine) Subsystems() SubsystemHashes {
	graphHash := sim.NewHasher()
	procHash := sim.NewHasher()
	invHash := sim.NewHasher()
	transportHash := sim.NewHasher()
	simHash := sim.NewHasher()

	simHash.WriteUint64(e.tick)
	simHash.WriteUint64(e.rng.State())

	for _, n := range e.graph.Nodes() {
		graphHash.WriteUint32(n.Index)
		graphHash.WriteUint32(n.Generation)
		if p, ok := e.processors[n]; ok {
			p.HashState(procHash)
		}
		if in, ok := e.inputs[n]; ok {
			in.HashState(invHash)
		}
		if out, ok := e.outputs[n]; ok {
			out.HashState(invHash)
		}
		mods := e.modifiers[n]
		procHash.WriteUint64(uint64(len(mods)))
		for _, m := range mods {
			procHash.WriteUint32(uint32(m.ID))
			procHash.WriteUint64(uint64(m.Kind))
			procHash.WriteInt64(m.Value.Bits())
			procHash.WriteUint64(uint64(m.Rule))
		}
	}
	for _, edgeID := range e.graph.Edges() {
		graphHash.WriteUint32(edgeID.Index)
		graphHash.WriteUint32(edgeID.Generation)
		if rec, ok := e.graph.Edge(edgeID); ok {
			graphHash.WriteUint32(rec.From.Index)
			graphHash.WriteUint32(rec.From.Generation)
			graphHash.WriteUint32(rec.To.Index)
			graphHash.WriteUint32(rec.To.Generation)
		}
		if t, ok := e.transports[edgeID]; ok {
			t.HashState(transportHash)
		}
	}

	return SubsystemHashes{
		Graph:       graphHash.Sum64(),
		Processors:  procHash.Sum64(),
		Inventories: invHash.Sum64(),
		Transports:  transportHash.Sum64(),
		Sim:         simHash.Sum64(),
	}
}
