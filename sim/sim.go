// Package sim holds the advance-strategy bookkeeping and the canonical
// state-hash primitive shared by the engine's tick pipeline: how many
// ticks a call to Advance(dt) should run, and the FNV-1a digest used for
// desync detection.
package sim

import (
	"hash"
	"hash/fnv"

	"github.com/nova-forge/factorial-sim/fixed"
)

// Strategy selects how Advance(dt) maps wall/logical time onto ticks.
type Strategy int

const (
	// TickStrategy runs exactly one Step per Advance call, ignoring dt.
	TickStrategy Strategy = iota
	// DeltaStrategy accumulates dt and runs one Step per FixedTimestep
	// that has accumulated, carrying any remainder forward.
	DeltaStrategy
)

// Config configures a Driver's advance behavior.
type Config struct {
	Strategy      Strategy
	FixedTimestep fixed.Fixed64 // only consulted under DeltaStrategy
}

// Driver tracks the delta-time accumulator across Advance calls. It
// decides how many Step calls an Advance(dt) should perform; it does not
// run them itself (the engine owns Step).
type Driver struct {
	cfg         Config
	accumulator fixed.Fixed64
}

// NewDriver creates a Driver under the given strategy configuration.
func NewDriver(cfg Config) *Driver {
	return &Driver{cfg: cfg}
}

// Accumulator reports the current carried-forward delta-time remainder
// (always zero under TickStrategy).
func (d *Driver) Accumulator() fixed.Fixed64 { return d.accumulator }

// SetAccumulator restores a previously serialized accumulator value.
func (d *Driver) SetAccumulator(v fixed.Fixed64) { d.accumulator = v }

// StepsFor reports how many Step calls Advance(dt) should perform, and
// mutates the internal accumulator accordingly.
func (d *Driver) StepsFor(dt fixed.Fixed64) uint64 {
	switch d.cfg.Strategy {
	case DeltaStrategy:
		d.accumulator = d.accumulator.Add(dt)
		var steps uint64
		for d.accumulator.Cmp(d.cfg.FixedTimestep) >= 0 {
			d.accumulator = d.accumulator.Sub(d.cfg.FixedTimestep)
			steps++
		}
		return steps
	default: // TickStrategy
		return 1
	}
}

// AdvanceResult reports what a single Advance(dt) call did.
type AdvanceResult struct {
	// StepsRun is how many Step calls Advance actually executed.
	StepsRun uint64
	// Hashes holds the state hash computed at the end of each Step,
	// in execution order.
	Hashes []uint64
}

// Hasher accumulates a canonical byte stream and reduces it to an FNV-1a
// 64-bit digest. The engine feeds it tick, PRNG state, and per-node/edge
// fields in handle order; this type only owns the reduction, not the
// serialization policy.
type Hasher struct {
	h hash.Hash64
}

// HashSink is the minimal write surface a subsystem needs to fold its
// runtime state into the canonical state hash, without that subsystem
// importing the concrete Hasher type (processor, inventory, and transport
// each implement a HashState(sim.HashSink) method against this interface).
type HashSink interface {
	WriteUint64(uint64)
	WriteUint32(uint32)
	WriteInt64(int64)
	WriteBytes([]byte)
}

// NewHasher creates an empty FNV-1a accumulator.
func NewHasher() *Hasher {
	return &Hasher{h: fnv.New64a()}
}

// WriteUint64 folds a uint64 into the digest, little-endian.
func (h *Hasher) WriteUint64(v uint64) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	_, _ = h.h.Write(b[:])
}

// WriteInt64 folds an int64 into the digest via its bit pattern.
func (h *Hasher) WriteInt64(v int64) { h.WriteUint64(uint64(v)) }

// WriteUint32 folds a uint32 into the digest, little-endian.
func (h *Hasher) WriteUint32(v uint32) {
	var b [4]byte
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
	_, _ = h.h.Write(b[:])
}

// WriteBytes folds raw bytes into the digest (e.g. a name or tag byte).
func (h *Hasher) WriteBytes(b []byte) { _, _ = h.h.Write(b) }

// Sum64 returns the current digest without resetting the accumulator.
func (h *Hasher) Sum64() uint64 { return h.h.Sum64() }
