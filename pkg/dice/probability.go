package dice

import (
	"errors"
	"math/big"
)

// Outcome is one total of a dice population and its probability.
type Outcome struct {
	Total       int
	Probability float64
}

// Distribution bounds. The exact computation grows with the square of the
// dice count times the number of faces.
const (
	MaxDistributionCount = 100
	MaxDistributionFaces = 100
)

// ErrDistributionTooLarge is returned by CheckDistribution for populations
// whose exact distribution is too costly to compute.
var ErrDistributionTooLarge = errors.New("at most 100 dice of at most 100 faces have a distribution")

// CheckDistribution reports whether ProbabilityMassFunction can serve d.
func (d Dice) CheckDistribution() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Count > MaxDistributionCount || d.DieRange().Len() > MaxDistributionFaces {
		return ErrDistributionTooLarge
	}
	return nil
}

// ProbabilityMassFunction returns the exact distribution of the unmodified
// total of d, ordered by ascending total. It returns nil when
// CheckDistribution fails.
func (d Dice) ProbabilityMassFunction() []Outcome {
	if d.CheckDistribution() != nil {
		return nil
	}
	if d.Kind == KindFate && d.LowProbability {
		return lowFateDistribution(d.Count)
	}
	faces := d.DieRange().Len()
	// Shift each face so the lowest is 1; the closed form counts sums of
	// dice numbered 1..faces.
	offset := (d.DieRange().Min - 1) * d.Count
	total := new(big.Int).Exp(big.NewInt(int64(faces)), big.NewInt(int64(d.Count)), nil)

	outcomes := make([]Outcome, 0, d.Count*(faces-1)+1)
	for sum := d.Count; sum <= d.Count*faces; sum++ {
		ways := waysToRoll(sum, d.Count, faces)
		outcomes = append(outcomes, Outcome{
			Total:       sum + offset,
			Probability: ratio(ways, total),
		})
	}
	return outcomes
}

// waysToRoll counts the ways n dice numbered 1..k can total s:
//
//	sum over i of (-1)^i * C(n, i) * C(s - k*i - 1, n - 1)
func waysToRoll(s, n, k int) *big.Int {
	ways := new(big.Int)
	term := new(big.Int)
	for i := 0; i <= (s-n)/k; i++ {
		term.Mul(binomial(n, i), binomial(s-k*i-1, n-1))
		if i%2 == 0 {
			ways.Add(ways, term)
		} else {
			ways.Sub(ways, term)
		}
	}
	return ways
}

func binomial(n, k int) *big.Int {
	if k < 0 || n < k {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}

// lowFateDistribution convolves count dice of weights {-1: 1, 0: 4, +1: 1}.
func lowFateDistribution(count int) []Outcome {
	weights := []int64{1, 4, 1}
	dist := []*big.Int{big.NewInt(1)}
	for range count {
		next := make([]*big.Int, len(dist)+2)
		for i := range next {
			next[i] = new(big.Int)
		}
		for i, w := range dist {
			for j, f := range weights {
				next[i+j].Add(next[i+j], new(big.Int).Mul(w, big.NewInt(f)))
			}
		}
		dist = next
	}
	total := new(big.Int).Exp(big.NewInt(6), big.NewInt(int64(count)), nil)
	outcomes := make([]Outcome, len(dist))
	for i, w := range dist {
		outcomes[i] = Outcome{Total: i - count, Probability: ratio(w, total)}
	}
	return outcomes
}

func ratio(num, den *big.Int) float64 {
	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	return f
}
