package dice

import "fmt"

// Comparison is the operator of a ComparisonPoint.
type Comparison int

const (
	Equal Comparison = iota
	NotEqual
	Greater
	GreaterEqual
	Lesser
	LesserEqual
	// MaxRoll behaves as Equal against the maximum face of a die.
	MaxRoll
	// Unmatched matches nothing. It stands in for a comparison point that
	// failed to parse.
	Unmatched
)

// Symbol returns the operator as written in roll notation.
func (c Comparison) Symbol() string {
	switch c {
	case Equal:
		return "="
	case NotEqual:
		return "<>"
	case Greater:
		return ">"
	case GreaterEqual:
		return ">="
	case Lesser:
		return "<"
	case LesserEqual:
		return "<="
	default:
		return ""
	}
}

// ParseComparison maps an operator symbol to a Comparison.
func ParseComparison(symbol string) (Comparison, bool) {
	switch symbol {
	case "=":
		return Equal, true
	case "<>":
		return NotEqual, true
	case ">":
		return Greater, true
	case ">=":
		return GreaterEqual, true
	case "<":
		return Lesser, true
	case "<=":
		return LesserEqual, true
	case "":
		return MaxRoll, true
	default:
		return 0, false
	}
}

// ComparisonPoint selects the roll values a modifier acts on.
type ComparisonPoint struct {
	Comparison Comparison
	Value      int
}

// NewComparisonPoint returns a comparison point for the given operator and value.
func NewComparisonPoint(comparison Comparison, value int) ComparisonPoint {
	return ComparisonPoint{Comparison: comparison, Value: value}
}

// MaximumOf returns a comparison point matching the highest face of d.
func MaximumOf(d Dice) ComparisonPoint {
	return ComparisonPoint{Comparison: MaxRoll, Value: d.DieRange().Max}
}

// Never returns a comparison point that matches no value. It renders as
// "?" like the placeholder modifier.
func Never() ComparisonPoint {
	return ComparisonPoint{Comparison: Unmatched}
}

// Compare reports whether input satisfies the comparison point.
func (c ComparisonPoint) Compare(input int) bool {
	switch c.Comparison {
	case Equal, MaxRoll:
		return input == c.Value
	case NotEqual:
		return input != c.Value
	case Greater:
		return input > c.Value
	case GreaterEqual:
		return input >= c.Value
	case Lesser:
		return input < c.Value
	case LesserEqual:
		return input <= c.Value
	default:
		return false
	}
}

// Notation returns the comparison point as parseable roll notation. A
// MaxRoll point is implied by its modifier and renders as an empty string.
func (c ComparisonPoint) Notation() string {
	switch c.Comparison {
	case MaxRoll:
		return ""
	case Unmatched:
		return "?"
	}
	return fmt.Sprintf("%s%d", c.Comparison.Symbol(), c.Value)
}

// String returns a human-readable form, e.g. ">=5" or "==6" for a die maximum.
func (c ComparisonPoint) String() string {
	if c.Comparison == MaxRoll {
		return fmt.Sprintf("==%d", c.Value)
	}
	return c.Notation()
}
