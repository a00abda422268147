package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/sim"
)

var _ = Describe("Driver", func() {
	It("runs exactly one step per Advance under TickStrategy", func() {
		d := sim.NewDriver(sim.Config{Strategy: sim.TickStrategy})
		Expect(d.StepsFor(fixed.FromInt64(5))).To(Equal(uint64(1)))
		Expect(d.StepsFor(fixed.FromInt64(0))).To(Equal(uint64(1)))
	})

	It("accumulates dt and runs one step per fixed timestep, carrying remainder", func() {
		d := sim.NewDriver(sim.Config{
			Strategy:      sim.DeltaStrategy,
			FixedTimestep: fixed.FromInt64(1),
		})
		// 2.5 time units in one shot: two steps, 0.5 remainder.
		half := fixed.FromInt64(1).Div(fixed.FromInt64(2))
		Expect(d.StepsFor(fixed.FromInt64(2).Add(half))).To(Equal(uint64(2)))
		Expect(d.Accumulator()).To(Equal(half))

		// Feeding another 0.5 crosses the next whole timestep.
		Expect(d.StepsFor(half)).To(Equal(uint64(1)))
		Expect(d.Accumulator()).To(Equal(fixed.FromInt64(0)))
	})

	It("restores a serialized accumulator", func() {
		d := sim.NewDriver(sim.Config{Strategy: sim.DeltaStrategy, FixedTimestep: fixed.FromInt64(1)})
		d.SetAccumulator(fixed.FromInt64(1))
		half := fixed.FromInt64(1).Div(fixed.FromInt64(2))
		Expect(d.StepsFor(half)).To(Equal(uint64(1)))
	})
})

var _ = Describe("Hasher", func() {
	It("produces identical digests for identical input sequences", func() {
		h1 := sim.NewHasher()
		h1.WriteUint64(42)
		h1.WriteBytes([]byte("node"))

		h2 := sim.NewHasher()
		h2.WriteUint64(42)
		h2.WriteBytes([]byte("node"))

		Expect(h1.Sum64()).To(Equal(h2.Sum64()))
	})

	It("produces different digests for different input", func() {
		h1 := sim.NewHasher()
		h1.WriteUint64(42)

		h2 := sim.NewHasher()
		h2.WriteUint64(43)

		Expect(h1.Sum64()).NotTo(Equal(h2.Sum64()))
	})

	It("is order-sensitive", func() {
		h1 := sim.NewHasher()
		h1.WriteUint32(1)
		h1.WriteUint32(2)

		h2 := sim.NewHasher()
		h2.WriteUint32(2)
		h2.WriteUint32(1)

		Expect(h1.Sum64()).NotTo(Equal(h2.Sum64()))
	})
})
