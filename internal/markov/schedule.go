package markov

import "math"

// Outcomes is the number of finish positions at a table.
const Outcomes = 4

// PointSchedule is the point delta for each finish position, best first.
type PointSchedule [Outcomes]int

// OutcomeDistribution is the probability of each finish position, parallel to a
// PointSchedule.
type OutcomeDistribution [Outcomes]float64

// sumTolerance bounds how far a distribution total may drift from 1.
const sumTolerance = 1e-9

// GCD returns the greatest common divisor of the absolute deltas, or 0 when every
// delta is zero.
func (s PointSchedule) GCD() int {
	g := 0
	for _, pt := range s {
		g = gcd(g, abs(pt))
	}
	return g
}

// Validate checks each probability lies in [0,1] and that they sum to 1.
func (d OutcomeDistribution) Validate() error {
	var sum float64
	for _, p := range d {
		if err := validateProb(p); err != nil {
			return err
		}
		sum += p
	}
	if math.Abs(sum-1) > sumTolerance {
		return ErrInvalidProb
	}
	return nil
}

// Expectation is the mean point delta of one game.
func Expectation(s PointSchedule, d OutcomeDistribution) float64 {
	var e float64
	for k := range s {
		e += float64(s[k]) * d[k]
	}
	return e
}

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
