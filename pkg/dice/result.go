package dice

import (
	"strconv"
	"strings"
)

// Criteria classifies a result for target-based (success counting) rolls.
type Criteria int

const (
	// CriteriaValue uses the die's value directly.
	CriteriaValue Criteria = iota
	// CriteriaSuccess counts as +1.
	CriteriaSuccess
	// CriteriaFailure counts as -1.
	CriteriaFailure
	// CriteriaBlank counts as 0.
	CriteriaBlank
)

func (c Criteria) String() string {
	switch c {
	case CriteriaSuccess:
		return "success"
	case CriteriaFailure:
		return "failure"
	case CriteriaBlank:
		return "blank"
	default:
		return "value"
	}
}

// RollResult is the outcome of a single die, including the modifiers that
// acted on it in application order.
type RollResult struct {
	Value     int
	Modifiers []Modifier
	Dropped   bool
	Criteria  Criteria
}

// ComputedValue returns the contribution of this die to the roll total.
func (r RollResult) ComputedValue() int {
	if r.Dropped {
		return 0
	}
	switch r.Criteria {
	case CriteriaSuccess:
		return 1
	case CriteriaFailure:
		return -1
	case CriteriaBlank:
		return 0
	default:
		return r.Value
	}
}

// Flags joins the flags of every modifier that acted on the result.
func (r RollResult) Flags() string {
	var b strings.Builder
	for _, m := range r.Modifiers {
		b.WriteString(m.Flag())
	}
	return b.String()
}

// String renders the value followed by its flags, e.g. "6!" or "2d".
func (r RollResult) String() string {
	return strconv.Itoa(r.Value) + r.Flags()
}

// Equal compares value and dropped state only; modifier history is ignored.
func (r RollResult) Equal(other RollResult) bool {
	return r.Value == other.Value && r.Dropped == other.Dropped
}

// Less orders results by value.
func (r RollResult) Less(other RollResult) bool {
	return r.Value < other.Value
}

// with returns a copy of r tagged with m. The modifier slice is copied so
// results that share history never alias each other.
func (r RollResult) with(m Modifier) RollResult {
	mods := make([]Modifier, len(r.Modifiers), len(r.Modifiers)+1)
	copy(mods, r.Modifiers)
	r.Modifiers = append(mods, m)
	return r
}

// clone returns a copy of r that shares no modifier storage with r.
func (r RollResult) clone() RollResult {
	r.Modifiers = append([]Modifier(nil), r.Modifiers...)
	return r
}

// cloneAll deep-copies a result sequence.
func cloneAll(results []RollResult) []RollResult {
	out := make([]RollResult, len(results))
	for i, r := range results {
		out[i] = r.clone()
	}
	return out
}

// Sum totals the computed values of results.
func Sum(results []RollResult) int {
	total := 0
	for _, r := range results {
		total += r.ComputedValue()
	}
	return total
}

// FormatResults renders results as "[v1, v2, ...]".
func FormatResults(results []RollResult) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, r := range results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.String())
	}
	b.WriteByte(']')
	return b.String()
}
