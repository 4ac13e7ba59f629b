package dice

// explode rolls again for every result matching the comparison point. At
// most limit extra rolls are drawn per seed die. A matching result is
// flagged; the final roll of a chain that stops matching is not.
func (m Modifier) explode(results []RollResult, roll Roller, limit int) []RollResult {
	out := make([]RollResult, 0, len(results))
	for _, r := range results {
		if !m.Comparison.Compare(r.Value) {
			out = append(out, r)
			continue
		}
		if m.Mode == Compounding {
			out = append(out, m.compound(r, roll, limit))
			continue
		}
		out = append(out, r.with(m))
		last := r.Value
		for n := 0; n < limit && m.Comparison.Compare(last); n++ {
			last = roll()
			// Extra rolls carry the seed's earlier modifiers; only those
			// that explode again are flagged.
			extra := r.clone()
			extra.Value = last
			if m.Mode == Penetrating {
				extra.Value--
			}
			if m.Comparison.Compare(last) {
				extra = extra.with(m)
			}
			out = append(out, extra)
		}
	}
	return out
}

// compound folds the whole explosion chain of r into a single result.
func (m Modifier) compound(r RollResult, roll Roller, limit int) RollResult {
	total, last, n := r.Value, r.Value, 0
	for ; n < limit && m.Comparison.Compare(last); n++ {
		last = roll()
		total += last
	}
	r.Value = total
	if n == 0 {
		return r
	}
	return r.with(m)
}
