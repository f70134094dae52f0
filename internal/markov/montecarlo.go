package markov

import (
	"fmt"
	"math"
	"sort"
)

// MaxSimulatedGames caps a single simulated walk.
const MaxSimulatedGames = 1_000_000

// Stats summarizes integer game counts.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Samples keeps the raw counts for callers building histograms
	Samples []int `json:"-"`
}

// Simulation is the empirical counterpart of an AbsorptionResult.
type Simulation struct {
	Trials    int
	UpFreq    float64
	DownFreq  float64
	UpGames   Stats // games of walks that absorbed at Up
	DownGames Stats // games of walks that absorbed at Down
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{Mean: math.NaN()}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 {
			return float64(cp[0])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// pick maps a uniform draw onto an outcome index.
func (d OutcomeDistribution) pick(u float64) int {
	last := 0
	var acc float64
	for k, p := range d {
		if p <= 0 {
			continue
		}
		acc += p
		if u < acc {
			return k
		}
		last = k
	}
	// rounding left u above the cumulative total
	return last
}

// walk plays one walk from start and returns the boundary it absorbed at and the
// number of games it took.
func (c *Chain) walk(rng RandomSource) (Boundary, int, error) {
	l := c.lattice
	i := l.Start
	for games := 1; games <= MaxSimulatedGames; games++ {
		k := c.dist.pick(rng.Float64())
		i = clamp(i+c.schedule[k]/l.Scale, l.Down, l.Up)
		switch i {
		case l.Down:
			return Down, games, nil
		case l.Up:
			return Up, games, nil
		}
	}
	return 0, 0, fmt.Errorf("%w after %d games", ErrWalkTooLong, MaxSimulatedGames)
}

// Simulate runs trials independent walks on the chain. A nil rng uses seed 1.
func Simulate(c *Chain, trials int, rng RandomSource) (Simulation, error) {
	if trials <= 0 {
		return Simulation{}, nil
	}
	if rng == nil {
		rng = NewSeededRNG(1)
	}
	var up, down []int
	for t := 0; t < trials; t++ {
		b, games, err := c.walk(rng)
		if err != nil {
			return Simulation{}, err
		}
		if b == Up {
			up = append(up, games)
		} else {
			down = append(down, games)
		}
	}
	return Simulation{
		Trials:    trials,
		UpFreq:    float64(len(up)) / float64(trials),
		DownFreq:  float64(len(down)) / float64(trials),
		UpGames:   calcStats(up),
		DownGames: calcStats(down),
	}, nil
}
