package id

// Allocator hands out generation-indexed slots backed by a reusable index
// space: a freed index is recycled on the next allocation, with its
// generation bumped so any handle still referencing the old occupant is
// detected as stale rather than silently aliasing the new one. Mirrors the
// teacher's file descriptor table (a small integer handed to callers,
// backed by a map of live entries), generalized with a generation counter.
type Allocator struct {
	generations []uint32
	free        []uint32
	live        uint32
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Alloc reserves a slot and returns its index and current generation.
func (a *Allocator) Alloc() (index uint32, generation uint32) {
	a.live++
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
		return index, a.generations[index]
	}
	index = uint32(len(a.generations))
	a.generations = append(a.generations, 0)
	return index, 0
}

// Free releases a slot, bumping its generation so stale handles referring
// to it are rejected by IsLive.
func (a *Allocator) Free(index uint32) {
	if int(index) >= len(a.generations) {
		return
	}
	a.generations[index]++
	a.free = append(a.free, index)
	a.live--
}

// IsLive reports whether (index, generation) still addresses a live slot.
func (a *Allocator) IsLive(index, generation uint32) bool {
	if int(index) >= len(a.generations) {
		return false
	}
	return a.generations[index] == generation
}

// Len reports the number of currently live slots.
func (a *Allocator) Len() uint32 { return a.live }

// Capacity reports the total number of indices ever allocated, live or free.
func (a *Allocator) Capacity() int { return len(a.generations) }

// AllocatorSnapshot captures an Allocator's internal state, so a restored
// allocator continues handing out exactly the indices and generations the
// original would have.
type AllocatorSnapshot struct {
	Generations []uint32
	Free        []uint32
	Live        uint32
}

// Snapshot captures the allocator's current internal state.
func (a *Allocator) Snapshot() AllocatorSnapshot {
	return AllocatorSnapshot{
		Generations: append([]uint32(nil), a.generations...),
		Free:        append([]uint32(nil), a.free...),
		Live:        a.live,
	}
}

// RestoreAllocator rebuilds an Allocator from a snapshot taken by Snapshot.
func RestoreAllocator(snap AllocatorSnapshot) *Allocator {
	return &Allocator{
		generations: append([]uint32(nil), snap.Generations...),
		free:        append([]uint32(nil), snap.Free...),
		live:        snap.Live,
	}
}
