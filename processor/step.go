package processor

import (
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/registry"
)

// StepContext gathers everything a processor's Step needs for one tick:
// the registry (for recipe lookups), its input/output inventories, and its
// modifier list.
type StepContext struct {
	Registry  *registry.Registry
	Input     *inventory.Inventory
	Output    *inventory.Inventory
	Modifiers []Modifier
}

// ItemAmount names a quantity of one item type, used to report the
// produced/consumed totals of a single Step call.
type ItemAmount struct {
	Item id.ItemTypeId
	Qty  uint32
}

// StepResult reports what happened during one Step call.
type StepResult struct {
	// RecipeCompleted is true the tick a FixedRecipe processor finished a
	// cycle and wrote its outputs.
	RecipeCompleted bool
	// Produced and Consumed list the items this tick actually moved into
	// the output inventory or out of the input inventory, respectively.
	// Empty, not nil, when nothing moved.
	Produced []ItemAmount
	Consumed []ItemAmount
	// OutputFull is true the tick an attempted deposit had nowhere to go;
	// OutputItem names the item that overflowed.
	OutputFull bool
	OutputItem id.ItemTypeId
}

// The residue accumulators on Processor (sourceResidue, demandResidue,
// recipeProgressResidue) fold fractional amounts forward instead of
// truncating them away every tick. This is the fixed rounding policy for
// Source/Demand throughput and FixedRecipe progress advancement: residue
// accumulates. FixedRecipe *output quantities* after a productivity
// modifier are the one place this repo truncates without residue, per
// spec.md §4.6's explicit "then truncate" — a deliberate, narrower
// rounding rule than the rate/progress accumulators use, recorded because
// changing either policy later is a migration-requiring change.

// Step advances the processor by one tick according to its variant.
func (p *Processor) Step(ctx StepContext) StepResult {
	switch p.Config.Variant {
	case Source:
		return p.stepSource(ctx)
	case FixedRecipe:
		return p.stepFixedRecipe(ctx)
	case Demand:
		return p.stepDemand(ctx)
	default: // Passthrough
		return StepResult{}
	}
}

func (p *Processor) stepSource(ctx StepContext) StepResult {
	rate := p.Config.BaseRate.Mul(CombineModifiers(ctx.Modifiers, EfficiencyModifier))
	total := p.sourceResidue.Add(rate)
	wholeTicks := total.TruncToInt()
	if wholeTicks < 0 {
		wholeTicks = 0
	}
	attempted := uint64(wholeTicks)

	if !p.Config.Depletion.Infinite && attempted > p.Config.Depletion.Remaining {
		attempted = p.Config.Depletion.Remaining
	}

	overflow := ctx.Output.Add(p.Config.OutputItem, uint32(attempted))
	placed := attempted - uint64(overflow)

	p.sourceResidue = total.Sub(fixed.FromInt64(wholeTicks))
	if !p.Config.Depletion.Infinite {
		p.Config.Depletion.Remaining -= placed
	}

	result := StepResult{}
	if placed > 0 {
		result.Produced = []ItemAmount{{Item: p.Config.OutputItem, Qty: uint32(placed)}}
	}
	if overflow > 0 {
		p.State = StalledState(OutputFull, p.Config.OutputItem)
		result.OutputFull = true
		result.OutputItem = p.Config.OutputItem
	} else {
		p.State = IdleState()
	}
	return result
}

func (p *Processor) stepDemand(ctx StepContext) StepResult {
	rate := p.Config.BaseRate.Mul(CombineModifiers(ctx.Modifiers, EfficiencyModifier))
	total := p.demandResidue.Add(rate)
	wholeTicks := total.TruncToInt()
	if wholeTicks < 0 {
		wholeTicks = 0
	}
	wanted := uint64(wholeTicks)

	types := p.Config.AcceptedTypes
	if len(types) == 0 {
		types = []id.ItemTypeId{p.Config.DemandItem}
	}

	var removed uint64
	var consumed []ItemAmount
	shortItem := types[0]
	remaining := wanted
	for _, item := range types {
		if remaining == 0 {
			break
		}
		got := ctx.Input.Remove(item, uint32(remaining))
		if got > 0 {
			consumed = append(consumed, ItemAmount{Item: item, Qty: got})
		}
		removed += uint64(got)
		if got < uint32(remaining) {
			shortItem = item
		}
		remaining -= uint64(got)
	}

	p.demandResidue = total.Sub(fixed.FromInt64(wholeTicks))
	p.lifetimeConsumed += removed

	if remaining > 0 {
		p.State = StalledState(MissingInput, shortItem)
	} else {
		p.State = IdleState()
	}
	return StepResult{Consumed: consumed}
}

func (p *Processor) stepFixedRecipe(ctx StepContext) StepResult {
	if p.State.Kind == Idle || p.State.Kind == Stalled {
		return p.tryStartRecipe(ctx)
	}
	result := p.advanceRecipe(ctx)
	if result.RecipeCompleted {
		// The next cycle starts on the tick the previous one completes when
		// its inputs and output room are already there; otherwise the
		// processor stays Idle and the start is retried next tick.
		next := p.tryStartRecipe(ctx)
		if p.State.Kind == Working {
			result.Consumed = next.Consumed
		} else {
			p.State = IdleState()
		}
	}
	return result
}

func (p *Processor) tryStartRecipe(ctx StepContext) StepResult {
	recipe, ok := ctx.Registry.Recipe(p.Config.Recipe)
	if !ok {
		p.State = StalledState(NoRecipe, 0)
		return StepResult{}
	}

	for _, in := range recipe.Inputs {
		if ctx.Input.Quantity(in.Item) < in.Quantity {
			p.State = StalledState(MissingInput, in.Item)
			return StepResult{}
		}
	}
	for _, out := range recipe.Outputs {
		if ctx.Output.Room(out.Item) < out.Quantity {
			p.State = StalledState(OutputFull, out.Item)
			return StepResult{OutputFull: true, OutputItem: out.Item}
		}
	}

	consumed := make([]ItemAmount, 0, len(recipe.Inputs))
	for _, in := range recipe.Inputs {
		ctx.Input.Remove(in.Item, in.Quantity)
		consumed = append(consumed, ItemAmount{Item: in.Item, Qty: in.Quantity})
	}
	p.State = WorkingState(0, recipe.Duration)
	return StepResult{Consumed: consumed}
}

func (p *Processor) advanceRecipe(ctx StepContext) StepResult {
	speed := CombineModifiers(ctx.Modifiers, SpeedModifier)
	total := p.recipeProgressResidue.Add(speed)
	wholeTicks := total.TruncToInt()
	if wholeTicks < 0 {
		wholeTicks = 0
	}
	p.recipeProgressResidue = total.Sub(fixed.FromInt64(wholeTicks))

	newProgress := p.State.Progress + uint64(wholeTicks)
	if newProgress < p.State.Remaining {
		p.State = WorkingState(newProgress, p.State.Remaining)
		return StepResult{}
	}

	var produced []ItemAmount
	recipe, ok := ctx.Registry.Recipe(p.Config.Recipe)
	if ok {
		productivity := CombineModifiers(ctx.Modifiers, ProductivityModifier)
		produced = make([]ItemAmount, 0, len(recipe.Outputs))
		for _, out := range recipe.Outputs {
			qty := fixed.FromInt64(int64(out.Quantity)).Mul(productivity).TruncToInt()
			if qty < 0 {
				qty = 0
			}
			overflow := ctx.Output.Add(out.Item, uint32(qty))
			placed := uint32(qty) - overflow
			if placed > 0 {
				produced = append(produced, ItemAmount{Item: out.Item, Qty: placed})
			}
		}
	}
	p.State = IdleState()
	return StepResult{RecipeCompleted: true, Produced: produced}
}
