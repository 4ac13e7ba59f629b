package dice

import "math/rand"

// Source is the randomness provider for dice rolls.
//
// A Source is consulted sequentially by a single roll. Sharing one Source
// between concurrent rolls requires an implementation that is safe for
// concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n). n is always > 0.
	Intn(n int) int
}

// NewSeededSource returns a deterministic Source for the given seed.
//
// Given the same seed and the same sequence of rolls, the returned source
// always produces the same values.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Roller produces a single additional die value for modifiers that roll
// again, such as explosions and rerolls.
type Roller func() int
