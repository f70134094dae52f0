package markov

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Boundary names one of the two absorbing states of a level chain.
type Boundary int

const (
	Down Boundary = iota
	Up
)

func (b Boundary) String() string {
	switch b {
	case Down:
		return "down"
	case Up:
		return "up"
	}
	return fmt.Sprintf("Boundary(%d)", int(b))
}

// Chain is an absorbing Markov chain over a level's lattice.
//
// The stored matrix is M = I - P on interior rows: for each outcome the probability is
// subtracted from the clipped destination column and the total outgoing mass is added
// back on the diagonal. Rows Down and Up are identity rows.
type Chain struct {
	lattice  Lattice
	schedule PointSchedule
	dist     OutcomeDistribution
	m        *mat.Dense
	lu       *mat.LU // factorized interior block, shared by every solve
}

// NewChain builds the transition system for one level.
func NewChain(l Lattice, s PointSchedule, d OutcomeDistribution) (*Chain, error) {
	if l.Down != 0 {
		return nil, fmt.Errorf("%w: down index %d, want 0", ErrInvalidLattice, l.Down)
	}
	if l.Scale <= 0 || !l.Interior(l.Start) {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidLattice, l)
	}
	if l.States() > MaxStates {
		return nil, fmt.Errorf("%w: %d states, limit %d", ErrLatticeTooLarge, l.States(), MaxStates)
	}
	for _, pt := range s {
		if pt%l.Scale != 0 {
			return nil, fmt.Errorf("%w: delta %d is not a multiple of scale %d", ErrInvalidLattice, pt, l.Scale)
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var movement float64
	for k, pt := range s {
		movement += math.Abs(float64(pt) * d[k])
	}
	if movement == 0 {
		return nil, ErrNoMovement
	}
	if Expectation(s, d) == 0 {
		zap.L().Debug("chain has zero drift", zap.Any("schedule", s), zap.Any("distribution", d))
	}

	n := l.States()
	m := mat.NewDense(n, n, nil)
	for i := 1; i < n-1; i++ {
		var mass float64
		for k, pt := range s {
			j := clamp(i+pt/l.Scale, 0, n-1)
			m.Set(i, j, m.At(i, j)-d[k])
			mass += d[k]
		}
		m.Set(i, i, m.At(i, i)+mass)
	}
	m.Set(0, 0, 1)
	m.Set(n-1, n-1, 1)

	// boundary rows are identity, so only the interior block needs factorizing
	k := n - 2
	interior := m.Slice(1, n-1, 1, n-1)
	var lu mat.LU
	lu.Factorize(interior)
	zap.L().Debug("chain factorized", zap.Int("interior", k), zap.Float64("cond", lu.Cond()))

	return &Chain{lattice: l, schedule: s, dist: d, m: m, lu: &lu}, nil
}

// Lattice returns the state space the chain was built on.
func (c *Chain) Lattice() Lattice { return c.lattice }

// Matrix returns a copy of the system matrix.
func (c *Chain) Matrix() *mat.Dense {
	return mat.DenseCopyOf(c.m)
}

// Transitions reconstructs row i of the one-step transition matrix P from the system
// matrix. Boundary rows are their own unit vectors.
func (c *Chain) Transitions(i int) []float64 {
	n := c.lattice.States()
	p := make([]float64, n)
	if !c.lattice.Interior(i) {
		p[i] = 1
		return p
	}
	for j := 0; j < n; j++ {
		if j == i {
			p[j] = 1 - c.m.At(i, j)
		} else {
			p[j] = -c.m.At(i, j)
		}
	}
	return p
}

func (c *Chain) index(b Boundary) int {
	switch b {
	case Down:
		return c.lattice.Down
	case Up:
		return c.lattice.Up
	}
	panic(fmt.Sprintf("markov: unknown boundary %d", int(b)))
}

// AbsorptionProbabilities solves M·x = e_target. x[i] is the probability of hitting
// target before the other boundary when starting from state i; x[target] is exactly 1
// and x[other] exactly 0.
func (c *Chain) AbsorptionProbabilities(target Boundary) ([]float64, error) {
	e := make([]float64, c.lattice.States())
	e[c.index(target)] = 1
	return c.solve(e)
}

// AbsorptionProbability is the probability of absorbing at target from the start state.
func (c *Chain) AbsorptionProbability(target Boundary) (float64, error) {
	x, err := c.AbsorptionProbabilities(target)
	if err != nil {
		return 0, err
	}
	return x[c.lattice.Start], nil
}

// ExpectedGames is the expected number of games from start until absorption,
// conditioned on absorbing at target. It fails with ErrUnreachableBoundary when the
// target is hit with probability zero.
func (c *Chain) ExpectedGames(target Boundary) (float64, error) {
	x, err := c.AbsorptionProbabilities(target)
	if err != nil {
		return 0, err
	}
	return c.conditionalGames(target, x)
}

// conditionalGames solves M·y = v where v is the hitting vector with the target entry
// zeroed; y[i] is E[T; absorbed at target] so dividing by x[start] conditions it.
func (c *Chain) conditionalGames(target Boundary, x []float64) (float64, error) {
	p := x[c.lattice.Start]
	if p == 0 {
		return math.NaN(), fmt.Errorf("%w: %s from index %d", ErrUnreachableBoundary, target, c.lattice.Start)
	}
	v := append([]float64(nil), x...)
	v[c.index(target)] = 0
	y, err := c.solve(v)
	if err != nil {
		return 0, err
	}
	return y[c.lattice.Start] / p, nil
}

// Solve evaluates both boundaries at the start state. An unreachable boundary yields a
// NaN count with its Reachable flag cleared rather than an error.
func (c *Chain) Solve() (AbsorptionResult, error) {
	var r AbsorptionResult
	for _, b := range []Boundary{Up, Down} {
		x, err := c.AbsorptionProbabilities(b)
		if err != nil {
			return AbsorptionResult{}, err
		}
		prob := x[c.lattice.Start]
		count := math.NaN()
		reachable := prob != 0
		if reachable {
			if count, err = c.conditionalGames(b, x); err != nil {
				return AbsorptionResult{}, err
			}
		}
		switch b {
		case Up:
			r.UpProb, r.UpCount, r.UpReachable = prob, count, reachable
		case Down:
			r.DownProb, r.DownCount, r.DownReachable = prob, count, reachable
		}
	}
	return r, nil
}

// solve returns x with M·x = b. Boundary rows of M are identity rows, so x takes b's
// boundary entries verbatim and only the interior block goes through the factorization.
func (c *Chain) solve(b []float64) ([]float64, error) {
	n := c.lattice.States()
	last := n - 1
	k := n - 2

	rhs := mat.NewVecDense(k, nil)
	for i := 1; i < last; i++ {
		rhs.SetVec(i-1, b[i]-c.m.At(i, 0)*b[0]-c.m.At(i, last)*b[last])
	}

	var x mat.VecDense
	if err := c.lu.SolveVecTo(&x, false, rhs); err != nil {
		return nil, &SingularSystemError{Scope: "level chain", Size: n, Err: err}
	}

	out := make([]float64, n)
	out[0], out[last] = b[0], b[last]
	for i := 1; i < last; i++ {
		out[i] = x.AtVec(i - 1)
	}
	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
