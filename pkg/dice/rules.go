package dice

import (
	"cmp"
	"slices"
)

func (m Modifier) clampUp(results []RollResult) []RollResult {
	out := cloneAll(results)
	for i, r := range out {
		if r.Value < m.Value {
			r.Value = m.Value
			out[i] = r.with(m)
		}
	}
	return out
}

func (m Modifier) clampDown(results []RollResult) []RollResult {
	out := cloneAll(results)
	for i, r := range out {
		if r.Value > m.Value {
			r.Value = m.Value
			out[i] = r.with(m)
		}
	}
	return out
}

// reroll replaces matching values with a fresh draw. Continuous rerolls keep
// drawing while the new value still matches, up to limit draws.
func (m Modifier) reroll(results []RollResult, roll Roller, limit int) []RollResult {
	out := cloneAll(results)
	for i, r := range out {
		if !m.Comparison.Compare(r.Value) {
			continue
		}
		value := roll()
		for n := 1; !m.Once && n < limit && m.Comparison.Compare(value); n++ {
			value = roll()
		}
		r.Value = value
		out[i] = r.with(m)
	}
	return out
}

func (m Modifier) keep(results []RollResult) []RollResult {
	live := liveIndices(results)
	// Keeping the highest count is dropping the lowest remainder.
	return m.dropExtremes(results, live, !m.High, len(live)-m.Count)
}

func (m Modifier) drop(results []RollResult) []RollResult {
	return m.dropExtremes(results, liveIndices(results), m.High, m.Count)
}

// dropExtremes marks the count highest (or lowest) live results dropped.
// Equal values are taken in original die order.
func (m Modifier) dropExtremes(results []RollResult, live []int, high bool, count int) []RollResult {
	out := cloneAll(results)
	count = max(0, min(count, len(live)))
	slices.SortStableFunc(live, func(a, b int) int {
		if high {
			return cmp.Compare(out[b].Value, out[a].Value)
		}
		return cmp.Compare(out[a].Value, out[b].Value)
	})
	for _, i := range live[:count] {
		r := out[i]
		r.Dropped = true
		out[i] = r.with(m)
	}
	return out
}

func liveIndices(results []RollResult) []int {
	live := make([]int, 0, len(results))
	for i, r := range results {
		if !r.Dropped {
			live = append(live, i)
		}
	}
	return live
}

func (m Modifier) success(results []RollResult) []RollResult {
	out := cloneAll(results)
	for i, r := range out {
		switch {
		case r.Dropped:
		case m.Comparison.Compare(r.Value):
			r.Criteria = CriteriaSuccess
			out[i] = r.with(m)
		case r.Criteria != CriteriaFailure:
			r.Criteria = CriteriaBlank
			out[i] = r
		}
	}
	return out
}

func (m Modifier) failure(results []RollResult) []RollResult {
	out := cloneAll(results)
	for i, r := range out {
		if r.Dropped || r.Criteria == CriteriaSuccess || !m.Comparison.Compare(r.Value) {
			continue
		}
		r.Criteria = CriteriaFailure
		out[i] = r.with(m)
	}
	return out
}

func (m Modifier) critical(results []RollResult) []RollResult {
	out := cloneAll(results)
	for i, r := range out {
		if !r.Dropped && m.Comparison.Compare(r.Value) {
			out[i] = r.with(m)
		}
	}
	return out
}

func (m Modifier) sort(results []RollResult) []RollResult {
	out := cloneAll(results)
	slices.SortStableFunc(out, func(a, b RollResult) int {
		if m.Ascending {
			return cmp.Compare(a.Value, b.Value)
		}
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}
