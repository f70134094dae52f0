package tier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/xtding233/trdeg/internal/markov"
)

// ErrInvalidTier reports a malformed tier specification.
var ErrInvalidTier = errors.New("invalid tier")

// Level is one rung of a tier together with its solved chain.
type Level struct {
	Level  int
	Value  float64 // points gained by a promotion, lost by a demotion
	Result markov.AbsorptionResult
}

// Spec describes one tier. Entry is where the traversal starts and Reference the
// level it ends at; both must lie within the tier's levels.
type Spec struct {
	Name      string
	Entry     int
	Reference int
	Lower     Edge // nil means Absorbing
	Upper     Edge // nil means Absorbing
	Points    bool // false for tiers that only report games
}

// Outcome is the expectation of a tier traversal from Entry to Reference.
type Outcome struct {
	Points    float64 `json:"points"`
	Games     float64 `json:"games"`
	HasPoints bool    `json:"has_points"`
}

// Solve assembles the tier's level-to-level system T and solves T·x = b for the
// points and games right-hand sides at once, returning x at the entry level.
//
// Interior rows are x_d - down(d)·x_{d-1} - up(d)·x_{d+1} = b_d with
// points b_d = (up(d)-down(d))·value(d) and games b_d = up(d)·upCount(d) + down(d)·downCount(d).
// The reference row and absorbing edges are identity rows.
func Solve(levels []Level, spec Spec) (Outcome, error) {
	t, b, err := assemble(levels, spec)
	if err != nil {
		return Outcome{}, err
	}
	n, _ := t.Dims()

	var x mat.Dense
	if err := x.Solve(t, b); err != nil {
		return Outcome{}, &markov.SingularSystemError{Scope: "tier " + spec.Name, Size: n, Err: err}
	}

	entry := spec.Entry - levels[0].Level
	out := Outcome{Games: x.At(entry, 1), HasPoints: spec.Points}
	if spec.Points {
		out.Points = x.At(entry, 0)
	}
	return out, nil
}

// assemble returns T and the n×2 right-hand side with points in column 0 and games
// in column 1.
func assemble(levels []Level, spec Spec) (*mat.Dense, *mat.Dense, error) {
	if err := validate(levels, spec); err != nil {
		return nil, nil, err
	}
	lower, upper := edgeOrDefault(spec.Lower), edgeOrDefault(spec.Upper)

	n := len(levels)
	last := n - 1
	ref := spec.Reference - levels[0].Level

	t := mat.NewDense(n, n, nil)
	b := mat.NewDense(n, 2, nil)
	for d := 0; d < n; d++ {
		t.Set(d, d, 1)
	}

	for d, lv := range levels {
		r := lv.Result
		switch {
		case d == last:
			switch e := upper.(type) {
			case Ceiling:
				b.Set(d, 1, e.Games)
			case Pinned:
				if d == ref {
					continue
				}
				if !r.DownReachable {
					return nil, nil, unreachable(spec, lv, markov.Down)
				}
				t.Set(d, d-1, -1)
				b.Set(d, 0, -lv.Value)
				b.Set(d, 1, r.DownCount)
			case Absorbing:
			}
		case d == ref:
		case d == 0:
			switch lower.(type) {
			case Pinned:
				if !r.UpReachable {
					return nil, nil, unreachable(spec, lv, markov.Up)
				}
				t.Set(d, d+1, -1)
				b.Set(d, 0, lv.Value)
				b.Set(d, 1, r.UpCount)
			case Absorbing:
			}
		default:
			games, err := visitGames(r)
			if err != nil {
				return nil, nil, fmt.Errorf("tier %s level %d: %w", spec.Name, lv.Level, err)
			}
			t.Set(d, d-1, -r.DownProb)
			t.Set(d, d+1, -r.UpProb)
			b.Set(d, 0, (r.UpProb-r.DownProb)*lv.Value)
			b.Set(d, 1, games)
		}
	}
	return t, b, nil
}

// visitGames is the expected games of one visit to a level. A boundary reached with
// probability zero contributes nothing even though its count is NaN.
func visitGames(r markov.AbsorptionResult) (float64, error) {
	var games float64
	if r.UpProb != 0 {
		if math.IsNaN(r.UpCount) {
			return 0, fmt.Errorf("%w: up count missing", markov.ErrUnreachableBoundary)
		}
		games += r.UpProb * r.UpCount
	}
	if r.DownProb != 0 {
		if math.IsNaN(r.DownCount) {
			return 0, fmt.Errorf("%w: down count missing", markov.ErrUnreachableBoundary)
		}
		games += r.DownProb * r.DownCount
	}
	return games, nil
}

func validate(levels []Level, spec Spec) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w %s: no levels", ErrInvalidTier, spec.Name)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Level != levels[i-1].Level+1 {
			return fmt.Errorf("%w %s: levels %d and %d are not adjacent", ErrInvalidTier, spec.Name, levels[i-1].Level, levels[i].Level)
		}
	}
	lo, hi := levels[0].Level, levels[len(levels)-1].Level
	if spec.Entry < lo || spec.Entry > hi {
		return fmt.Errorf("%w %s: entry %d outside %d..%d", ErrInvalidTier, spec.Name, spec.Entry, lo, hi)
	}
	if spec.Reference < lo || spec.Reference > hi {
		return fmt.Errorf("%w %s: reference %d outside %d..%d", ErrInvalidTier, spec.Name, spec.Reference, lo, hi)
	}
	if _, ok := spec.Lower.(Ceiling); ok {
		return fmt.Errorf("%w %s: ceiling on the lower edge", ErrInvalidTier, spec.Name)
	}
	if c, ok := spec.Upper.(Ceiling); ok && (math.IsNaN(c.Games) || math.IsInf(c.Games, 0)) {
		return fmt.Errorf("%w %s: ceiling games %v", ErrInvalidTier, spec.Name, c.Games)
	}
	if len(levels) == 1 {
		_, lp := spec.Lower.(Pinned)
		_, up := spec.Upper.(Pinned)
		if lp || up {
			return fmt.Errorf("%w %s: pinned edge on a single-level tier", ErrInvalidTier, spec.Name)
		}
	}
	return nil
}

func edgeOrDefault(e Edge) Edge {
	if e == nil {
		return Absorbing{}
	}
	return e
}

func unreachable(spec Spec, lv Level, b markov.Boundary) error {
	return fmt.Errorf("tier %s level %d pinned %s: %w", spec.Name, lv.Level, b, markov.ErrUnreachableBoundary)
}
