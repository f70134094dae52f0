package tier

import (
	"fmt"
	"math"

	"github.com/xtding233/trdeg/internal/markov"
)

// Edge is the boundary policy at one end of a tier. The set is closed: Absorbing,
// Pinned and Ceiling.
type Edge interface {
	edge()
	String() string
}

// Absorbing ends the traversal at the edge level with nothing further accumulated.
type Absorbing struct{}

// Pinned moves the edge level inward with probability one: promotion at the lower
// edge (charging the level's up count), demotion at the upper edge (charging its
// down count).
type Pinned struct{}

// Ceiling is the top of the ladder. It absorbs, charging Games for the time spent at
// the ceiling before the first demotion. No points accrue there.
type Ceiling struct {
	Games float64
}

func (Absorbing) edge() {}
func (Pinned) edge()    {}
func (Ceiling) edge()   {}

func (Absorbing) String() string { return "absorbing" }
func (Pinned) String() string    { return "pinned" }
func (c Ceiling) String() string { return fmt.Sprintf("ceiling(%g)", c.Games) }

// CeilingApprox estimates a Ceiling from the result of a synthetic level placed one
// above the ceiling.
type CeilingApprox interface {
	Estimate(synthetic markov.AbsorptionResult) (Ceiling, error)
}

// SyntheticCeiling charges ReturnRatio times the synthetic level's down count.
type SyntheticCeiling struct {
	ReturnRatio float64
}

// Estimate implements CeilingApprox.
func (s SyntheticCeiling) Estimate(synthetic markov.AbsorptionResult) (Ceiling, error) {
	if !synthetic.DownReachable || math.IsNaN(synthetic.DownCount) {
		return Ceiling{}, fmt.Errorf("%w: synthetic level above the ceiling never demotes", markov.ErrUnreachableBoundary)
	}
	if s.ReturnRatio <= 0 {
		return Ceiling{}, fmt.Errorf("%w: ceiling return ratio %v must be positive", ErrInvalidTier, s.ReturnRatio)
	}
	return Ceiling{Games: s.ReturnRatio * synthetic.DownCount}, nil
}
