package markov

import "math/rand/v2"

// RandomSource yields uniform draws in [0, 1).
type RandomSource interface {
	Float64() float64
}

type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a replicable PCG source for simulation.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
