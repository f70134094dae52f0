package markov

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateSchedule reports a point schedule whose deltas are all zero, so no
	// lattice step (gcd) exists.
	ErrDegenerateSchedule = errors.New("degenerate point schedule: all deltas are zero")
	// ErrNoMovement reports a schedule/distribution pair under which the walk never moves.
	ErrNoMovement = errors.New("chain never moves: every outcome with mass has a zero delta")
	// ErrInvalidProb reports a distribution entry outside [0,1] or a total away from 1.
	ErrInvalidProb = errors.New("invalid outcome distribution; entries must be in 0..1 and sum to 1")
	// ErrInvalidBounds reports point boundaries that cannot place start strictly inside.
	ErrInvalidBounds = errors.New("invalid level bounds; need down <= start < up")
	// ErrInvalidLattice reports a lattice that does not fit the chain preconditions.
	ErrInvalidLattice = errors.New("invalid lattice")
	// ErrLatticeTooLarge reports a level whose lattice exceeds MaxStates.
	ErrLatticeTooLarge = errors.New("lattice too large")
	// ErrUnreachableBoundary reports a conditional count asked for a boundary that is
	// reached with probability zero.
	ErrUnreachableBoundary = errors.New("boundary unreachable from start; conditional count undefined")
	// ErrWalkTooLong reports a simulated walk that did not absorb within the step cap.
	ErrWalkTooLong = errors.New("simulated walk did not absorb")
)

// SingularSystemError is returned when a dense solve fails. It always indicates a
// construction problem (a boundary row that is not absorbing, or a disconnected chain).
type SingularSystemError struct {
	Scope string // what was being solved, e.g. "level chain" or "tier lower"
	Size  int    // dimension of the attempted system
	Err   error  // underlying solver error
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("singular %s system of size %d: %v", e.Scope, e.Size, e.Err)
}

func (e *SingularSystemError) Unwrap() error { return e.Err }
