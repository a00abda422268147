package id_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/id"
)

var _ = Describe("handle types", func() {
	It("compares equal by value", func() {
		a := id.NodeId{Index: 3, Generation: 1}
		b := id.NodeId{Index: 3, Generation: 1}
		Expect(a).To(Equal(b))
	})

	It("is usable as a map key", func() {
		m := map[id.NodeId]string{}
		m[id.NodeId{Index: 1, Generation: 0}] = "a"
		m[id.NodeId{Index: 2, Generation: 0}] = "b"
		Expect(m[id.NodeId{Index: 1, Generation: 0}]).To(Equal("a"))
	})

	It("distinguishes same index with different generation", func() {
		a := id.NodeId{Index: 5, Generation: 0}
		b := id.NodeId{Index: 5, Generation: 1}
		Expect(a).NotTo(Equal(b))
	})

	It("renders a readable string", func() {
		n := id.NodeId{Index: 7, Generation: 2}
		Expect(n.String()).To(Equal("Node(7:2)"))
	})
})

var _ = Describe("Allocator", func() {
	It("allocates increasing indices starting at zero generation", func() {
		a := id.NewAllocator()
		i0, g0 := a.Alloc()
		i1, g1 := a.Alloc()
		Expect(i0).To(Equal(uint32(0)))
		Expect(i1).To(Equal(uint32(1)))
		Expect(g0).To(Equal(uint32(0)))
		Expect(g1).To(Equal(uint32(0)))
		Expect(a.Len()).To(Equal(uint32(2)))
	})

	It("recycles a freed index with a bumped generation", func() {
		a := id.NewAllocator()
		i0, g0 := a.Alloc()
		a.Free(i0)
		Expect(a.Len()).To(Equal(uint32(0)))

		i1, g1 := a.Alloc()
		Expect(i1).To(Equal(i0))
		Expect(g1).To(Equal(g0 + 1))
	})

	It("rejects a stale generation after reuse", func() {
		a := id.NewAllocator()
		i0, g0 := a.Alloc()
		a.Free(i0)
		_, _ = a.Alloc()

		Expect(a.IsLive(i0, g0)).To(BeFalse())
	})

	It("confirms a live slot", func() {
		a := id.NewAllocator()
		i0, g0 := a.Alloc()
		Expect(a.IsLive(i0, g0)).To(BeTrue())
	})

	It("reports capacity as the high-water mark of allocated indices", func() {
		a := id.NewAllocator()
		a.Alloc()
		i1, _ := a.Alloc()
		a.Free(i1)
		a.Alloc()
		Expect(a.Capacity()).To(Equal(2))
	})
})
