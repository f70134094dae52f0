package markov

import (
	"fmt"

	"go.uber.org/zap"
)

// MaxStates caps the lattice size of one level, boundaries included.
const MaxStates = 1024

// Lattice is the integer state space of one level's point axis. Index 0 is the
// demotion boundary and Up the promotion boundary; both absorb.
type Lattice struct {
	Scale int // points per lattice step (gcd of the schedule)
	Down  int // always 0
	Start int // index of the level's starting point total
	Up    int
}

// States is the number of lattice states including both boundaries.
func (l Lattice) States() int { return l.Up + 1 }

// Interior reports whether i is a non-absorbing state.
func (l Lattice) Interior(i int) bool { return l.Down < i && i < l.Up }

// ComputeLatticeIndex indexes a level using the default boundary policy: demotion at
// 0 points and promotion at twice the starting points.
func ComputeLatticeIndex(schedule PointSchedule, startPoints int) (Lattice, error) {
	return ComputeLatticeBounds(schedule, 0, startPoints, 2*startPoints)
}

// ComputeLatticeBounds indexes a level with explicit point boundaries.
// The start index is floor((start-down)/scale)+1, which keeps it interior even when
// start sits on a lattice point; up is ceil((up-start)/scale) steps above start.
func ComputeLatticeBounds(schedule PointSchedule, downPoints, startPoints, upPoints int) (Lattice, error) {
	scale := schedule.GCD()
	if scale == 0 {
		return Lattice{}, fmt.Errorf("%w: %v", ErrDegenerateSchedule, schedule)
	}
	if startPoints < downPoints || upPoints <= startPoints {
		return Lattice{}, fmt.Errorf("%w: down=%d start=%d up=%d", ErrInvalidBounds, downPoints, startPoints, upPoints)
	}

	start := (startPoints-downPoints)/scale + 1
	up := ceilDiv(upPoints-startPoints, scale) + start
	l := Lattice{Scale: scale, Down: 0, Start: start, Up: up}
	if l.States() > MaxStates {
		return Lattice{}, fmt.Errorf("%w: %d states for down=%d start=%d up=%d, limit %d",
			ErrLatticeTooLarge, l.States(), downPoints, startPoints, upPoints, MaxStates)
	}

	zap.L().Debug("lattice index",
		zap.Int("down", l.Down),
		zap.Int("start", l.Start),
		zap.Int("up", l.Up),
		zap.Int("scale", l.Scale),
	)
	return l, nil
}

// ceilDiv divides non-negative a by positive b rounding up.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
