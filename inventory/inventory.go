// Package inventory implements capacity-bounded item storage: slots that
// hold one stack per distinct item type, and ordered inventories of slots
// with deterministic first-fit assignment.
package inventory

import (
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/serialize"
	"github.com/nova-forge/factorial-sim/sim"
)

// Slot is a capacity-bounded multi-stack: it can hold at most one entry
// per distinct item type currently present, each up to capacity.
type Slot struct {
	capacity uint32
	stacks   map[id.ItemTypeId]uint32
	// order preserves first-insertion order, so iteration (and conservation
	// accounting) is deterministic across hosts.
	order []id.ItemTypeId
}

// NewSlot creates an empty slot with the given per-item-type capacity.
func NewSlot(capacity uint32) *Slot {
	return &Slot{capacity: capacity, stacks: make(map[id.ItemTypeId]uint32)}
}

// Add inserts up to amount of item into the slot, returning the overflow
// (the portion that did not fit because capacity was reached).
func (s *Slot) Add(item id.ItemTypeId, amount uint32) (overflow uint32) {
	have := s.stacks[item]
	room := uint32(0)
	if s.capacity > have {
		room = s.capacity - have
	}
	accepted := amount
	if accepted > room {
		accepted = room
	}
	if accepted > 0 {
		if have == 0 {
			s.order = append(s.order, item)
		}
		s.stacks[item] = have + accepted
	}
	return amount - accepted
}

// Remove takes up to amount of item out of the slot, returning the amount
// actually removed.
func (s *Slot) Remove(item id.ItemTypeId, amount uint32) (removed uint32) {
	have, ok := s.stacks[item]
	if !ok {
		return 0
	}
	removed = amount
	if removed > have {
		removed = have
	}
	remaining := have - removed
	if remaining == 0 {
		delete(s.stacks, item)
		s.removeFromOrder(item)
	} else {
		s.stacks[item] = remaining
	}
	return removed
}

func (s *Slot) removeFromOrder(item id.ItemTypeId) {
	for i, it := range s.order {
		if it == item {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Quantity reports how much of item is currently stored in the slot.
func (s *Slot) Quantity(item id.ItemTypeId) uint32 { return s.stacks[item] }

// Total reports the sum across all item types stored in the slot.
func (s *Slot) Total() uint32 {
	var total uint32
	for _, q := range s.stacks {
		total += q
	}
	return total
}

// Capacity reports the per-item-type capacity of the slot.
func (s *Slot) Capacity() uint32 { return s.capacity }

// Room reports how much more of item the slot can accept before it hits
// capacity for that item type.
func (s *Slot) Room(item id.ItemTypeId) uint32 {
	have := s.stacks[item]
	if s.capacity <= have {
		return 0
	}
	return s.capacity - have
}

// Items returns the item types currently present, in first-insertion order.
func (s *Slot) Items() []id.ItemTypeId {
	out := make([]id.ItemTypeId, len(s.order))
	copy(out, s.order)
	return out
}

// Inventory is an ordered list of slots. Assignment of items to slots
// during Add is first-fit in declared order: the first slot with room
// takes as much as it can, then the remainder spills to the next slot.
type Inventory struct {
	slots []*Slot
}

// NewInventory creates an inventory with the given number of slots, each
// with the given per-item-type capacity.
func NewInventory(slotCount int, capacityPerSlot uint32) *Inventory {
	slots := make([]*Slot, slotCount)
	for i := range slots {
		slots[i] = NewSlot(capacityPerSlot)
	}
	return &Inventory{slots: slots}
}

// Slots exposes the underlying slot list in declared order.
func (inv *Inventory) Slots() []*Slot { return inv.slots }

// Add distributes amount of item across slots by first-fit in declared
// order, returning the overflow that did not fit anywhere.
func (inv *Inventory) Add(item id.ItemTypeId, amount uint32) (overflow uint32) {
	remaining := amount
	for _, slot := range inv.slots {
		if remaining == 0 {
			break
		}
		remaining = slot.Add(item, remaining)
	}
	return remaining
}

// Remove takes up to amount of item out of the inventory, draining slots
// in declared order, and returns the amount actually removed.
func (inv *Inventory) Remove(item id.ItemTypeId, amount uint32) (removed uint32) {
	remaining := amount
	for _, slot := range inv.slots {
		if remaining == 0 {
			break
		}
		got := slot.Remove(item, remaining)
		removed += got
		remaining -= got
	}
	return removed
}

// Quantity reports how much of item is stored across all slots.
func (inv *Inventory) Quantity(item id.ItemTypeId) uint32 {
	var total uint32
	for _, slot := range inv.slots {
		total += slot.Quantity(item)
	}
	return total
}

// Room reports the total remaining capacity for item across every slot,
// i.e. the most that Add(item, ...) could place without overflow.
func (inv *Inventory) Room(item id.ItemTypeId) uint32 {
	var total uint32
	for _, slot := range inv.slots {
		total += slot.Room(item)
	}
	return total
}

// Total reports the sum across every item type and every slot.
func (inv *Inventory) Total() uint32 {
	var total uint32
	for _, slot := range inv.slots {
		total += slot.Total()
	}
	return total
}

// HashState folds the inventory's contents into a canonical state hash, in
// declared slot order and first-insertion item order within each slot —
// both already deterministic, so no sorting is needed here.
func (inv *Inventory) HashState(w sim.HashSink) {
	w.WriteUint64(uint64(len(inv.slots)))
	for _, slot := range inv.slots {
		w.WriteUint32(slot.capacity)
		items := slot.Items()
		w.WriteUint64(uint64(len(items)))
		for _, item := range items {
			w.WriteUint32(uint32(item))
			w.WriteUint32(slot.stacks[item])
		}
	}
}

// Encode writes the inventory's full contents — slot count, each slot's
// capacity and contents in first-insertion order — so Decode can rebuild
// an identical inventory.
func (inv *Inventory) Encode(w *serialize.Writer) {
	w.Uint32(uint32(len(inv.slots)))
	for _, slot := range inv.slots {
		w.Uint32(slot.capacity)
		items := slot.Items()
		w.Uint32(uint32(len(items)))
		for _, item := range items {
			w.Uint32(uint32(item))
			w.Uint32(slot.stacks[item])
		}
	}
}

// Decode rebuilds an inventory from bytes written by Encode.
func Decode(r *serialize.Reader) (*Inventory, error) {
	slotCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	inv := &Inventory{slots: make([]*Slot, slotCount)}
	for i := range inv.slots {
		capacity, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		slot := NewSlot(capacity)
		itemCount, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < itemCount; j++ {
			item, err := r.Uint32()
			if err != nil {
				return nil, err
			}
			qty, err := r.Uint32()
			if err != nil {
				return nil, err
			}
			slot.order = append(slot.order, id.ItemTypeId(item))
			slot.stacks[id.ItemTypeId(item)] = qty
		}
		inv.slots[i] = slot
	}
	return inv, nil
}
