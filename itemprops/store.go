// Package itemprops provides a bounded, LRU-evicting cache of the
// per-instance properties stamped onto stateful item instances (items
// that are not pure fungible stacks — e.g. a quality value set by a
// source's initial properties). The number of instances live over a long
// session is unbounded, so properties are kept in a fixed-capacity cache
// rather than an ever-growing map: once capacity is reached, storing a
// new instance's properties evicts the least-recently-used one.
package itemprops

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
)

// Properties holds the Q16.16 property values stamped onto one stateful
// item instance, keyed by property id.
type Properties map[id.PropertyId]fixed.Fixed32

// Config controls the size of a Store.
type Config struct {
	// Capacity is the maximum number of live entries kept resident
	// before the LRU victim finder evicts the least-recently-used one.
	Capacity int
	// Associativity is the number of ways per set. Capacity must be an
	// exact multiple of it.
	Associativity int
}

// DefaultConfig returns a size adequate for a single production line's
// worth of concurrently in-flight stateful items.
func DefaultConfig() Config {
	return Config{Capacity: 4096, Associativity: 8}
}

// Store is a bounded cache of per-instance properties addressed by
// id.InstanceId, built on the same Akita cache-directory machinery the
// timing model uses for its L1/L2 caches: one directory entry per
// instance, with the instance's index as the lookup address and a
// single-block line (properties aren't addressed sub-block).
type Store struct {
	config      Config
	directory   *akitacache.DirectoryImpl
	slots       []Properties
	generations []uint32
	evictions   uint64
}

// New creates an empty Store.
func New(config Config) *Store {
	numSets := config.Capacity / config.Associativity
	totalSlots := numSets * config.Associativity
	return &Store{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			1,
			akitacache.NewLRUVictimFinder(),
		),
		slots:       make([]Properties, totalSlots),
		generations: make([]uint32, totalSlots),
	}
}

func (s *Store) slotIndex(block *akitacache.Block) int {
	return block.SetID*s.config.Associativity + block.WayID
}

// Get returns the properties stamped on instance and whether they were
// found. A generation mismatch — the index was recycled into a newer
// instance after the old one's entry aged out — is reported as not
// found, same as an outright cache miss.
func (s *Store) Get(instance id.InstanceId) (Properties, bool) {
	block := s.directory.Lookup(0, uint64(instance.Index))
	if block == nil || !block.IsValid {
		return nil, false
	}
	idx := s.slotIndex(block)
	if s.generations[idx] != instance.Generation {
		return nil, false
	}
	s.directory.Visit(block)
	return s.slots[idx], true
}

// Set stamps instance's properties, evicting the least-recently-used
// entry under capacity pressure if instance was not already resident.
func (s *Store) Set(instance id.InstanceId, props Properties) {
	if block := s.directory.Lookup(0, uint64(instance.Index)); block != nil && block.IsValid {
		idx := s.slotIndex(block)
		if s.generations[idx] == instance.Generation {
			s.slots[idx] = props
			s.directory.Visit(block)
			return
		}
	}

	victim := s.directory.FindVictim(uint64(instance.Index))
	if victim == nil {
		return
	}
	if victim.IsValid {
		s.evictions++
	}
	victim.Tag = uint64(instance.Index)
	victim.IsValid = true
	victim.IsDirty = false

	idx := s.slotIndex(victim)
	s.slots[idx] = props
	s.generations[idx] = instance.Generation
	s.directory.Visit(victim)
}

// Remove evicts instance's properties if present, e.g. when the instance
// itself is destroyed rather than merely aged out by LRU pressure.
func (s *Store) Remove(instance id.InstanceId) {
	block := s.directory.Lookup(0, uint64(instance.Index))
	if block == nil || !block.IsValid {
		return
	}
	idx := s.slotIndex(block)
	if s.generations[idx] != instance.Generation {
		return
	}
	block.IsValid = false
	s.slots[idx] = nil
}

// Evictions reports how many entries have been evicted under capacity
// pressure since the store was created.
func (s *Store) Evictions() uint64 { return s.evictions }

// Len reports the number of entries currently resident.
func (s *Store) Len() int {
	n := 0
	for _, set := range s.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid {
				n++
			}
		}
	}
	return n
}

// Reset clears every entry without counting evictions.
func (s *Store) Reset() {
	s.directory.Reset()
	for i := range s.slots {
		s.slots[i] = nil
		s.generations[i] = 0
	}
	s.evictions = 0
}
