package inventory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/serialize"
)

const ore = id.ItemTypeId(0)
const plate = id.ItemTypeId(1)

var _ = Describe("Slot", func() {
	It("accepts up to capacity and reports no overflow", func() {
		s := inventory.NewSlot(100)
		overflow := s.Add(ore, 60)
		Expect(overflow).To(Equal(uint32(0)))
		Expect(s.Quantity(ore)).To(Equal(uint32(60)))
	})

	It("reports overflow beyond capacity", func() {
		s := inventory.NewSlot(50)
		overflow := s.Add(ore, 80)
		Expect(overflow).To(Equal(uint32(30)))
		Expect(s.Quantity(ore)).To(Equal(uint32(50)))
	})

	It("holds separate stacks per item type", func() {
		s := inventory.NewSlot(100)
		s.Add(ore, 10)
		s.Add(plate, 20)
		Expect(s.Total()).To(Equal(uint32(30)))
		Expect(s.Items()).To(Equal([]id.ItemTypeId{ore, plate}))
	})

	It("removes up to the amount present", func() {
		s := inventory.NewSlot(100)
		s.Add(ore, 10)
		removed := s.Remove(ore, 30)
		Expect(removed).To(Equal(uint32(10)))
		Expect(s.Quantity(ore)).To(Equal(uint32(0)))
	})

	It("drops an item type from iteration once fully removed", func() {
		s := inventory.NewSlot(100)
		s.Add(ore, 10)
		s.Remove(ore, 10)
		Expect(s.Items()).To(BeEmpty())
	})
})

var _ = Describe("Inventory", func() {
	It("distributes across slots first-fit in declared order", func() {
		inv := inventory.NewInventory(2, 50)
		overflow := inv.Add(ore, 80)
		Expect(overflow).To(Equal(uint32(0)))
		Expect(inv.Slots()[0].Quantity(ore)).To(Equal(uint32(50)))
		Expect(inv.Slots()[1].Quantity(ore)).To(Equal(uint32(30)))
	})

	It("reports overflow once all slots are full", func() {
		inv := inventory.NewInventory(2, 50)
		overflow := inv.Add(ore, 150)
		Expect(overflow).To(Equal(uint32(50)))
	})

	It("removes draining slots in declared order", func() {
		inv := inventory.NewInventory(2, 50)
		inv.Add(ore, 80)
		removed := inv.Remove(ore, 60)
		Expect(removed).To(Equal(uint32(60)))
		Expect(inv.Slots()[0].Quantity(ore)).To(Equal(uint32(0)))
		Expect(inv.Slots()[1].Quantity(ore)).To(Equal(uint32(20)))
	})

	It("aggregates quantity and total across slots", func() {
		inv := inventory.NewInventory(2, 50)
		inv.Add(ore, 30)
		inv.Add(plate, 10)
		Expect(inv.Quantity(ore)).To(Equal(uint32(30)))
		Expect(inv.Total()).To(Equal(uint32(40)))
	})

	It("reports remaining room across all slots", func() {
		inv := inventory.NewInventory(2, 50)
		inv.Add(ore, 30)
		Expect(inv.Room(ore)).To(Equal(uint32(70)))
	})

	It("round-trips through Encode/Decode", func() {
		inv := inventory.NewInventory(2, 50)
		inv.Add(ore, 30)
		inv.Add(plate, 10)

		w := serialize.NewWriter()
		inv.Encode(w)

		loaded, err := inventory.Decode(serialize.NewReader(w.Bake()))
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Quantity(ore)).To(Equal(inv.Quantity(ore)))
		Expect(loaded.Quantity(plate)).To(Equal(inv.Quantity(plate)))
		Expect(loaded.Total()).To(Equal(inv.Total()))
		Expect(loaded.Slots()[0].Items()).To(Equal(inv.Slots()[0].Items()))
	})
})
