// Package rng provides the deterministic pseudo-random source used by the
// simulation kernel. Every stochastic decision anywhere in the engine
// draws from a single SplitMix64 stream; the order of draws is fully
// determined by the tick pipeline, and the RNG state is part of the
// serialized snapshot so a resumed engine continues the same sequence.
package rng

import "github.com/nova-forge/factorial-sim/fixed"

const goldenGamma = 0x9E3779B97F4A7C15

// Rng is a SplitMix64 pseudo-random number generator: 64 bits of state,
// no allocation, trivially serializable, deterministic across platforms.
type Rng struct {
	state uint64
}

// New creates a new Rng seeded with the given value.
func New(seed uint64) *Rng {
	return &Rng{state: seed}
}

// State returns the internal state, for hashing and serialization.
func (r *Rng) State() uint64 { return r.state }

// SetState restores the internal state from a serialized snapshot.
func (r *Rng) SetState(state uint64) { r.state = state }

// NextUint64 generates the next uint64 in the sequence.
func (r *Rng) NextUint64() uint64 {
	r.state += goldenGamma
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Chance returns true with the given probability, a Q32.32 value clamped
// to [0,1]. Compares the top 32 bits of the next draw against the
// fractional bits of p, so p<=0 always returns false and p>=1 always
// returns true.
func (r *Rng) Chance(p fixed.Fixed64) bool {
	if p <= fixed.Zero64 {
		return false
	}
	if p >= fixed.One64 {
		return true
	}
	draw := r.NextUint64()
	upper := uint32(draw >> 32)
	raw := uint64(p.Bits())
	return uint64(upper) < raw
}
