// Package dice implements dice populations, per-die roll results, and the
// modifier pipeline that turns raw rolls into final values.
package dice

import (
	"errors"
	"fmt"
)

// Kind identifies the family of a Dice population.
type Kind int

const (
	KindStandard Kind = iota
	KindPercent
	KindFate
)

// Population bounds accepted by Validate.
const (
	MaxCount = 10000
	MaxSides = 10000
)

// ErrInvalidDiceSpec indicates a dice population has invalid fields.
var ErrInvalidDiceSpec = errors.New("dice need between 1 and 10000 sides and count")

// Range is an inclusive integer range.
type Range struct {
	Min int
	Max int
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Len returns the number of integers in the range.
func (r Range) Len() int {
	return r.Max - r.Min + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d...%d", r.Min, r.Max)
}

// Dice describes a population of identical dice.
type Dice struct {
	Kind  Kind
	Sides int
	Count int
	// LowProbability selects the fate die with a single success face and a
	// single failure face (dF.1) instead of two of each.
	LowProbability bool
}

// Standard returns count dice numbered 1..sides.
func Standard(sides, count int) Dice {
	return Dice{Kind: KindStandard, Sides: sides, Count: count}
}

// Percent returns count percentile dice.
func Percent(count int) Dice {
	return Dice{Kind: KindPercent, Sides: 100, Count: count}
}

// Fate returns count fate (fudge) dice.
func Fate(lowProbability bool, count int) Dice {
	return Dice{Kind: KindFate, Sides: 3, Count: count, LowProbability: lowProbability}
}

// Validate checks the population invariants.
func (d Dice) Validate() error {
	if d.Count < 1 || d.Count > MaxCount {
		return ErrInvalidDiceSpec
	}
	if d.Kind == KindStandard && (d.Sides < 1 || d.Sides > MaxSides) {
		return ErrInvalidDiceSpec
	}
	return nil
}

// DieRange returns the possible values of a single die.
func (d Dice) DieRange() Range {
	switch d.Kind {
	case KindPercent:
		return Range{Min: 1, Max: 100}
	case KindFate:
		return Range{Min: -1, Max: 1}
	default:
		return Range{Min: 1, Max: d.Sides}
	}
}

// RollRange returns the possible totals of the whole population, ignoring
// any modifiers.
func (d Dice) RollRange() Range {
	r := d.DieRange()
	return Range{Min: r.Min * d.Count, Max: r.Max * d.Count}
}

// RollOnce rolls a single die of the population's type.
func (d Dice) RollOnce(src Source) int {
	if d.Kind == KindFate && d.LowProbability {
		switch src.Intn(6) + 1 {
		case 1:
			return -1
		case 6:
			return 1
		default:
			return 0
		}
	}
	r := d.DieRange()
	return r.Min + src.Intn(r.Len())
}

// RollAll rolls every die once, producing one unmodified result per die.
func (d Dice) RollAll(src Source) []RollResult {
	if d.Validate() != nil {
		return nil
	}
	results := make([]RollResult, d.Count)
	for i := range results {
		results[i] = RollResult{Value: d.RollOnce(src)}
	}
	return results
}

// Less orders populations by the lower, then upper, bound of their roll range.
func (d Dice) Less(other Dice) bool {
	l, r := d.RollRange(), other.RollRange()
	if l.Min != r.Min {
		return l.Min < r.Min
	}
	return l.Max < r.Max
}

// String renders the population in roll notation, e.g. "2d6", "1d%", or "3dF.1".
func (d Dice) String() string {
	switch d.Kind {
	case KindPercent:
		return fmt.Sprintf("%dd%%", d.Count)
	case KindFate:
		if d.LowProbability {
			return fmt.Sprintf("%ddF.1", d.Count)
		}
		return fmt.Sprintf("%ddF", d.Count)
	default:
		return fmt.Sprintf("%dd%d", d.Count, d.Sides)
	}
}
