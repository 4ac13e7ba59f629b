package dice

import (
	"fmt"
	"math"
)

// ModifierKind enumerates the closed set of modifiers.
type ModifierKind int

const (
	// ModPlaceholder stands in for a modifier that failed to parse. It
	// leaves results untouched.
	ModPlaceholder ModifierKind = iota
	ModMinimum
	ModMaximum
	ModExplode
	ModReroll
	ModKeep
	ModDrop
	ModSuccess
	ModFailure
	ModCriticalSuccess
	ModCriticalFailure
	ModSorting
)

// ExplodeMode selects how an explosion records its extra rolls.
type ExplodeMode int

const (
	// Exploding appends each extra roll as its own result.
	Exploding ExplodeMode = iota
	// Compounding sums the chain of extra rolls into the seed result.
	Compounding
	// Penetrating appends extra rolls reduced by one.
	Penetrating
)

// DieLevelOrder is the first order value applied to the whole flattened
// roll rather than to each die independently.
const DieLevelOrder = 5

// DefaultIterationLimit bounds explosion and reroll chains.
const DefaultIterationLimit = 1000

// Modifier is a rule transforming the results of a roll. The kind selects
// which of the parameter fields are meaningful.
type Modifier struct {
	Kind ModifierKind
	// Value is the bound of Minimum and Maximum.
	Value int
	// Count is the number of dice kept or dropped.
	Count int
	// High selects the highest dice for Keep and Drop.
	High bool
	// Once stops a Reroll after a single reroll.
	Once bool
	// Ascending is the Sorting direction.
	Ascending bool
	Mode      ExplodeMode
	// Comparison selects the results acted on by Explode, Reroll, Success,
	// Failure, CriticalSuccess, and CriticalFailure.
	Comparison ComparisonPoint
}

// Minimum raises results below value to value.
func Minimum(value int) Modifier {
	return Modifier{Kind: ModMinimum, Value: value}
}

// Maximum lowers results above value to value.
func Maximum(value int) Modifier {
	return Modifier{Kind: ModMaximum, Value: value}
}

// Explode rolls again on results matching cmp.
func Explode(cmp ComparisonPoint, mode ExplodeMode) Modifier {
	return Modifier{Kind: ModExplode, Comparison: cmp, Mode: mode}
}

// ExplodeOnMax explodes on the maximum face of d.
func ExplodeOnMax(d Dice, mode ExplodeMode) Modifier {
	return Explode(MaximumOf(d), mode)
}

// Reroll replaces results matching cmp with a new roll.
func Reroll(once bool, cmp ComparisonPoint) Modifier {
	return Modifier{Kind: ModReroll, Once: once, Comparison: cmp}
}

// RerollOnes rerolls results equal to 1.
func RerollOnes(once bool) Modifier {
	return Reroll(once, NewComparisonPoint(Equal, 1))
}

// Keep drops all but the count highest (or lowest) results.
func Keep(high bool, count int) Modifier {
	return Modifier{Kind: ModKeep, High: high, Count: count}
}

// Drop drops the count highest (or lowest) results.
func Drop(high bool, count int) Modifier {
	return Modifier{Kind: ModDrop, High: high, Count: count}
}

// Success counts results matching cmp as +1 and the rest as 0.
func Success(cmp ComparisonPoint) Modifier {
	return Modifier{Kind: ModSuccess, Comparison: cmp}
}

// Failure counts results matching cmp as -1.
func Failure(cmp ComparisonPoint) Modifier {
	return Modifier{Kind: ModFailure, Comparison: cmp}
}

// CriticalSuccess flags results matching cmp without changing the total.
func CriticalSuccess(cmp ComparisonPoint) Modifier {
	return Modifier{Kind: ModCriticalSuccess, Comparison: cmp}
}

// CriticalFailure flags results matching cmp without changing the total.
func CriticalFailure(cmp ComparisonPoint) Modifier {
	return Modifier{Kind: ModCriticalFailure, Comparison: cmp}
}

// Sorting reorders results by value.
func Sorting(ascending bool) Modifier {
	return Modifier{Kind: ModSorting, Ascending: ascending}
}

// Placeholder returns the no-op modifier substituted for parse errors.
func Placeholder() Modifier {
	return Modifier{Kind: ModPlaceholder}
}

// Name is the human-readable modifier name.
func (m Modifier) Name() string {
	switch m.Kind {
	case ModMinimum:
		return "minimum"
	case ModMaximum:
		return "maximum"
	case ModExplode:
		return "explode"
	case ModReroll:
		return "reroll"
	case ModKeep:
		return "keep"
	case ModDrop:
		return "drop"
	case ModSuccess:
		return "success"
	case ModFailure:
		return "failure"
	case ModCriticalSuccess:
		return "critical-success"
	case ModCriticalFailure:
		return "critical-failure"
	case ModSorting:
		return "sorting"
	default:
		return "error"
	}
}

// Flag is appended to the rendering of every result the modifier acted on.
func (m Modifier) Flag() string {
	switch m.Kind {
	case ModMinimum:
		return "^"
	case ModMaximum:
		return "v"
	case ModExplode:
		switch m.Mode {
		case Compounding:
			return "!!"
		case Penetrating:
			return "!p"
		default:
			return "!"
		}
	case ModReroll:
		if m.Once {
			return "ro"
		}
		return "r"
	case ModKeep, ModDrop:
		return "d"
	case ModSuccess:
		return "*"
	case ModFailure:
		return "_"
	case ModCriticalSuccess:
		return "**"
	case ModCriticalFailure:
		return "__"
	case ModSorting:
		return ""
	default:
		return "?"
	}
}

// Order is the relative application order; lower runs first.
func (m Modifier) Order() int {
	switch m.Kind {
	case ModMinimum:
		return 1
	case ModMaximum:
		return 2
	case ModExplode:
		return 3
	case ModReroll:
		return 4
	case ModKeep:
		return 5
	case ModDrop:
		return 6
	case ModSuccess, ModFailure:
		return 7
	case ModCriticalSuccess:
		return 8
	case ModCriticalFailure:
		return 9
	case ModSorting:
		return math.MaxInt
	default:
		return 999
	}
}

// DieLevel reports whether the modifier runs on each die independently.
func (m Modifier) DieLevel() bool {
	return m.Order() < DieLevelOrder
}

// String renders the modifier as parseable roll notation, e.g. "!p>=5",
// "kh3", or "cs=20".
func (m Modifier) String() string {
	switch m.Kind {
	case ModMinimum:
		return fmt.Sprintf("min%d", m.Value)
	case ModMaximum:
		return fmt.Sprintf("max%d", m.Value)
	case ModExplode:
		return m.Flag() + m.Comparison.Notation()
	case ModReroll:
		return m.Flag() + explicit(m.Comparison)
	case ModKeep:
		return fmt.Sprintf("k%s%d", highLow(m.High), m.Count)
	case ModDrop:
		return fmt.Sprintf("d%s%d", highLow(m.High), m.Count)
	case ModSuccess:
		return explicit(m.Comparison)
	case ModFailure:
		return "f" + explicit(m.Comparison)
	case ModCriticalSuccess:
		return "cs" + explicit(m.Comparison)
	case ModCriticalFailure:
		return "cf" + explicit(m.Comparison)
	case ModSorting:
		if m.Ascending {
			return "sa"
		}
		return "sd"
	default:
		return "?"
	}
}

// Equal compares modifiers by kind and canonical rendering.
func (m Modifier) Equal(other Modifier) bool {
	return m.Kind == other.Kind && m.String() == other.String()
}

// Run applies the modifier to results. roll draws one more die of the
// roll's type; limit bounds explosion and reroll chains.
func (m Modifier) Run(results []RollResult, roll Roller, limit int) []RollResult {
	if limit <= 0 {
		limit = DefaultIterationLimit
	}
	switch m.Kind {
	case ModMinimum:
		return m.clampUp(results)
	case ModMaximum:
		return m.clampDown(results)
	case ModExplode:
		return m.explode(results, roll, limit)
	case ModReroll:
		return m.reroll(results, roll, limit)
	case ModKeep:
		return m.keep(results)
	case ModDrop:
		return m.drop(results)
	case ModSuccess:
		return m.success(results)
	case ModFailure:
		return m.failure(results)
	case ModCriticalSuccess, ModCriticalFailure:
		return m.critical(results)
	case ModSorting:
		return m.sort(results)
	case ModPlaceholder:
		return results
	default:
		panic(fmt.Sprintf("dice: unknown modifier kind %d", m.Kind))
	}
}

func highLow(high bool) string {
	if high {
		return "h"
	}
	return "l"
}

// explicit renders a comparison point that must always carry an operator.
func explicit(c ComparisonPoint) string {
	if c.Comparison == MaxRoll {
		return fmt.Sprintf("=%d", c.Value)
	}
	return c.Notation()
}
