package processor

import (
	"sort"

	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
)

// ModifierKind names what a modifier scales.
type ModifierKind int

const (
	SpeedModifier ModifierKind = iota
	ProductivityModifier
	EfficiencyModifier
)

// StackRule names how multiple modifiers of the same kind combine.
type StackRule int

const (
	// Multiplicative is the default: the combined factor is the product of
	// every modifier's value.
	Multiplicative StackRule = iota
	// Additive combines as 1 + sum(values).
	Additive
	// Max takes the largest single value.
	Max
)

// Modifier is one speed/productivity/efficiency adjustment applied to a
// node. Rule is a property of the modifier's kind, not the individual
// modifier, so every modifier of a given kind on a node must agree on how
// that kind combines; CombineModifiers takes the rule from whichever
// same-kind modifier sorts first rather than from a second, separately
// threaded argument.
type Modifier struct {
	ID    id.ModifierId
	Kind  ModifierKind
	Value fixed.Fixed64
	Rule  StackRule
}

// CombineModifiers computes the combined multiplier for every modifier of
// the given kind, using the stacking rule those modifiers themselves carry.
// Modifiers are evaluated in sorted ModifierId order for determinism,
// though the combining operations (product, sum, max) are themselves
// order-independent — the sort exists so that any future order-sensitive
// rule stays deterministic too, and so the rule picked when same-kind
// modifiers disagree is itself deterministic.
func CombineModifiers(mods []Modifier, kind ModifierKind) fixed.Fixed64 {
	filtered := make([]Modifier, 0, len(mods))
	for _, m := range mods {
		if m.Kind == kind {
			filtered = append(filtered, m)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	if len(filtered) == 0 {
		return fixed.One64
	}

	switch filtered[0].Rule {
	case Additive:
		sum := fixed.Zero64
		for _, m := range filtered {
			sum = sum.Add(m.Value)
		}
		return fixed.One64.Add(sum)
	case Max:
		best := filtered[0].Value
		for _, m := range filtered[1:] {
			if m.Value.Cmp(best) > 0 {
				best = m.Value
			}
		}
		return best
	default: // Multiplicative
		product := fixed.One64
		for _, m := range filtered {
			product = product.Mul(m.Value)
		}
		return product
	}
}
