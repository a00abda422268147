// Package processor implements the per-node processing state machine:
// source, fixed-recipe, demand, and passthrough variants, each advancing
// through Idle/Working/Stalled states once per tick in topological order.
package processor

import (
	"sort"

	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/serialize"
	"github.com/nova-forge/factorial-sim/sim"
)

// Variant selects which processing rule a node runs.
type Variant int

const (
	Source Variant = iota
	FixedRecipe
	Demand
	Passthrough
)

// Depletion describes a source's remaining supply.
type Depletion struct {
	Infinite  bool
	Remaining uint64
}

// Config is the immutable per-node processor configuration.
type Config struct {
	Variant Variant

	// Source
	OutputItem id.ItemTypeId
	BaseRate   fixed.Fixed64
	Depletion  Depletion
	// InitialProperties, when non-empty, makes this Source stamp every
	// produced item with these property values rather than emitting plain
	// fungible stock; nil means Source produces ordinary fungible items.
	InitialProperties map[id.PropertyId]fixed.Fixed32

	// FixedRecipe
	Recipe id.RecipeId

	// Demand
	DemandItem    id.ItemTypeId
	AcceptedTypes []id.ItemTypeId // nil means accept any type
}

// Reason names why a processor is stalled.
type Reason int

const (
	ReasonNone Reason = iota
	MissingInput
	OutputFull
	NoPower
	NoRecipe
	NoFluid
)

// Stall carries a stall reason plus, for MissingInput, which item is short.
type Stall struct {
	Reason Reason
	Item   id.ItemTypeId
}

// Kind names which of the three states a processor is in.
type Kind int

const (
	Idle Kind = iota
	Working
	Stalled
)

// State is a processor's runtime state: exactly one of Idle, Working (with
// Progress/Remaining populated), or Stalled (with Stall populated).
type State struct {
	Kind      Kind
	Progress  uint64
	Remaining uint64
	Stall     Stall
}

// IdleState, WorkingState, and StalledState build a State of the named kind.
func IdleState() State { return State{Kind: Idle} }

func WorkingState(progress, remaining uint64) State {
	return State{Kind: Working, Progress: progress, Remaining: remaining}
}

func StalledState(reason Reason, item id.ItemTypeId) State {
	return State{Kind: Stalled, Stall: Stall{Reason: reason, Item: item}}
}

// Processor is the mutable per-node processing unit: fixed configuration
// plus evolving state and fractional-output accumulators.
type Processor struct {
	Config Config
	State  State

	// sourceResidue accumulates the fractional remainder of base_rate ×
	// modifiers across ticks, so a sub-1-item-per-tick rate still produces
	// whole items over time instead of truncating to zero forever.
	sourceResidue fixed.Fixed64
	// demandResidue is the Demand variant's equivalent accumulator.
	demandResidue fixed.Fixed64
	// recipeProgressResidue is the FixedRecipe variant's equivalent
	// accumulator for fractional progress-per-tick under speed modifiers.
	recipeProgressResidue fixed.Fixed64

	lifetimeConsumed uint64
}

// NewProcessor creates a processor in the Idle state with the given config.
func NewProcessor(cfg Config) *Processor {
	return &Processor{Config: cfg, State: IdleState()}
}

// LifetimeConsumed reports the total items a Demand processor has removed
// since creation.
func (p *Processor) LifetimeConsumed() uint64 { return p.lifetimeConsumed }

// HashState folds the processor's config and runtime state — including the
// fractional-residue accumulators, since two processors with equal visible
// state but different residue will diverge on a later tick — into a
// canonical state hash.
func (p *Processor) HashState(w sim.HashSink) {
	w.WriteUint64(uint64(p.Config.Variant))
	w.WriteUint32(uint32(p.Config.OutputItem))
	w.WriteInt64(p.Config.BaseRate.Bits())
	w.WriteUint64(boolToUint64(p.Config.Depletion.Infinite))
	w.WriteUint64(p.Config.Depletion.Remaining)
	w.WriteUint32(uint32(p.Config.Recipe))
	w.WriteUint32(uint32(p.Config.DemandItem))
	w.WriteUint64(uint64(len(p.Config.AcceptedTypes)))
	for _, item := range p.Config.AcceptedTypes {
		w.WriteUint32(uint32(item))
	}
	w.WriteUint64(uint64(len(p.Config.InitialProperties)))
	for _, propID := range sortedPropertyIds(p.Config.InitialProperties) {
		w.WriteUint32(uint32(propID))
		w.WriteInt64(int64(p.Config.InitialProperties[propID].Bits()))
	}

	w.WriteUint64(uint64(p.State.Kind))
	w.WriteUint64(p.State.Progress)
	w.WriteUint64(p.State.Remaining)
	w.WriteUint64(uint64(p.State.Stall.Reason))
	w.WriteUint32(uint32(p.State.Stall.Item))

	w.WriteInt64(p.sourceResidue.Bits())
	w.WriteInt64(p.demandResidue.Bits())
	w.WriteInt64(p.recipeProgressResidue.Bits())
	w.WriteUint64(p.lifetimeConsumed)
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Encode writes the processor's full config and runtime state, including
// the fractional-residue accumulators, so Decode reconstructs a processor
// that continues identically from where Encode observed it.
func (p *Processor) Encode(w *serialize.Writer) {
	w.Uint32(uint32(p.Config.Variant))
	w.Uint32(uint32(p.Config.OutputItem))
	w.Int64(p.Config.BaseRate.Bits())
	w.Bool(p.Config.Depletion.Infinite)
	w.Uint64(p.Config.Depletion.Remaining)
	w.Uint32(uint32(p.Config.Recipe))
	w.Uint32(uint32(p.Config.DemandItem))
	w.Uint32(uint32(len(p.Config.AcceptedTypes)))
	for _, item := range p.Config.AcceptedTypes {
		w.Uint32(uint32(item))
	}
	w.Uint32(uint32(len(p.Config.InitialProperties)))
	for _, propID := range sortedPropertyIds(p.Config.InitialProperties) {
		w.Uint32(uint32(propID))
		w.Int64(int64(p.Config.InitialProperties[propID].Bits()))
	}

	w.Uint32(uint32(p.State.Kind))
	w.Uint64(p.State.Progress)
	w.Uint64(p.State.Remaining)
	w.Uint32(uint32(p.State.Stall.Reason))
	w.Uint32(uint32(p.State.Stall.Item))

	w.Int64(p.sourceResidue.Bits())
	w.Int64(p.demandResidue.Bits())
	w.Int64(p.recipeProgressResidue.Bits())
	w.Uint64(p.lifetimeConsumed)
}

// Decode rebuilds a processor from bytes written by Encode.
func Decode(r *serialize.Reader) (*Processor, error) {
	p := &Processor{}

	variant, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	p.Config.Variant = Variant(variant)

	outputItem, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	p.Config.OutputItem = id.ItemTypeId(outputItem)

	baseRate, err := r.Int64()
	if err != nil {
		return nil, err
	}
	p.Config.BaseRate = fixed.Fixed64FromBits(baseRate)

	infinite, err := r.Bool()
	if err != nil {
		return nil, err
	}
	p.Config.Depletion.Infinite = infinite

	remaining, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	p.Config.Depletion.Remaining = remaining

	recipe, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	p.Config.Recipe = id.RecipeId(recipe)

	demandItem, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	p.Config.DemandItem = id.ItemTypeId(demandItem)

	acceptedCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if acceptedCount > 0 {
		p.Config.AcceptedTypes = make([]id.ItemTypeId, acceptedCount)
		for i := range p.Config.AcceptedTypes {
			item, err := r.Uint32()
			if err != nil {
				return nil, err
			}
			p.Config.AcceptedTypes[i] = id.ItemTypeId(item)
		}
	}

	propCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if propCount > 0 {
		p.Config.InitialProperties = make(map[id.PropertyId]fixed.Fixed32, propCount)
		for i := uint32(0); i < propCount; i++ {
			propID, err := r.Uint32()
			if err != nil {
				return nil, err
			}
			value, err := r.Int64()
			if err != nil {
				return nil, err
			}
			p.Config.InitialProperties[id.PropertyId(propID)] = fixed.Fixed32FromBits(int32(value))
		}
	}

	kind, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	p.State.Kind = Kind(kind)

	progress, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	p.State.Progress = progress

	stateRemaining, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	p.State.Remaining = stateRemaining

	stallReason, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	p.State.Stall.Reason = Reason(stallReason)

	stallItem, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	p.State.Stall.Item = id.ItemTypeId(stallItem)

	sourceResidue, err := r.Int64()
	if err != nil {
		return nil, err
	}
	p.sourceResidue = fixed.Fixed64FromBits(sourceResidue)

	demandResidue, err := r.Int64()
	if err != nil {
		return nil, err
	}
	p.demandResidue = fixed.Fixed64FromBits(demandResidue)

	recipeProgressResidue, err := r.Int64()
	if err != nil {
		return nil, err
	}
	p.recipeProgressResidue = fixed.Fixed64FromBits(recipeProgressResidue)

	lifetimeConsumed, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	p.lifetimeConsumed = lifetimeConsumed

	return p, nil
}

// sortedPropertyIds returns props's keys in ascending order, so iterating a
// map for hashing/encoding never depends on Go's randomized map order.
func sortedPropertyIds(props map[id.PropertyId]fixed.Fixed32) []id.PropertyId {
	ids := make([]id.PropertyId, 0, len(props))
	for propID := range props {
		ids = append(ids, propID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
