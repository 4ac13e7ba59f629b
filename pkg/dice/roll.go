package dice

import (
	"cmp"
	"slices"
	"strings"
)

// RollConfig carries the knobs a roll needs at execution time.
type RollConfig struct {
	// Source provides the randomness. It must not be nil.
	Source Source
	// IterationLimit bounds explosion and reroll chains. Zero means
	// DefaultIterationLimit.
	IterationLimit int
}

// Limit returns the effective iteration limit.
func (c RollConfig) Limit() int {
	if c.IterationLimit <= 0 {
		return DefaultIterationLimit
	}
	return c.IterationLimit
}

// Roll is a dice population with the modifiers applied to it.
type Roll struct {
	Dice      Dice
	Modifiers []Modifier
}

// NewRoll returns a roll of d with the given modifiers.
func NewRoll(d Dice, modifiers ...Modifier) Roll {
	return Roll{Dice: d, Modifiers: modifiers}
}

// Ordered returns the modifiers in application order. Modifiers with the
// same order keep their declaration order.
func (r Roll) Ordered() []Modifier {
	mods := slices.Clone(r.Modifiers)
	slices.SortStableFunc(mods, func(a, b Modifier) int {
		return cmp.Compare(a.Order(), b.Order())
	})
	return mods
}

// Roll executes the roll.
//
// Die-level modifiers (minimum, maximum, explode, reroll) run on each die
// on its own, so one die's explosion chain never interacts with another's.
// The per-die outputs are then flattened and the roll-level modifiers
// (keep, drop, success, failure, criticals, sorting) run over the complete
// set.
func (r Roll) Roll(cfg RollConfig) []RollResult {
	mods := r.Ordered()
	split := slices.IndexFunc(mods, func(m Modifier) bool { return !m.DieLevel() })
	if split < 0 {
		split = len(mods)
	}
	dieLevel, rollLevel := mods[:split], mods[split:]

	limit := cfg.Limit()
	again := func() int { return r.Dice.RollOnce(cfg.Source) }

	var results []RollResult
	for _, seed := range r.Dice.RollAll(cfg.Source) {
		group := []RollResult{seed}
		for _, m := range dieLevel {
			group = m.Run(group, again, limit)
		}
		results = append(results, group...)
	}
	for _, m := range rollLevel {
		results = m.Run(results, again, limit)
	}
	return results
}

// ResultRange is the range of totals before modifiers are applied.
func (r Roll) ResultRange() Range {
	return r.Dice.RollRange()
}

// String renders the roll in canonical notation, modifiers in declaration
// order, e.g. "4d6!kh3".
func (r Roll) String() string {
	var b strings.Builder
	b.WriteString(r.Dice.String())
	for _, m := range r.Modifiers {
		b.WriteString(m.String())
	}
	return b.String()
}

// Equal reports whether both rolls use the same dice and the same modifiers
// once put in application order.
func (r Roll) Equal(other Roll) bool {
	return r.Dice == other.Dice && r.modifierKey() == other.modifierKey()
}

// Less orders rolls by dice, then by their ordered modifier notation.
func (r Roll) Less(other Roll) bool {
	if r.Dice != other.Dice {
		return r.Dice.Less(other.Dice)
	}
	return r.modifierKey() < other.modifierKey()
}

func (r Roll) modifierKey() string {
	var b strings.Builder
	for _, m := range r.Ordered() {
		b.WriteString(m.String())
	}
	return b.String()
}
