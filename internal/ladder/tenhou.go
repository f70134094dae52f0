package ladder

import (
	"strconv"

	"github.com/xtding233/trdeg/internal/markov"
)

const (
	// DefaultStartStep is the starting points granted per dan.
	DefaultStartStep = 200
	// DefaultPromotionFactor places promotion at this multiple of the starting points.
	DefaultPromotionFactor = 2
)

// Tenhou is one dan of the Tenhou ladder.
type Tenhou struct {
	Dan             int
	StartStep       int // 0 means DefaultStartStep
	PromotionFactor int // 0 means DefaultPromotionFactor
}

// NewTenhou returns a dan with the default point rules.
func NewTenhou(dan int) Tenhou {
	return Tenhou{Dan: dan}
}

// Next returns the dan above with the same point rules.
func (t Tenhou) Next() Tenhou {
	t.Dan++
	return t
}

// StartPoints is the point total a player holds on reaching the dan.
func (t Tenhou) StartPoints() int {
	step := t.StartStep
	if step == 0 {
		step = DefaultStartStep
	}
	return t.Dan * step
}

// DownPoints is the demotion boundary.
func (t Tenhou) DownPoints() int { return 0 }

// PromotionThreshold is the point total that promotes.
func (t Tenhou) PromotionThreshold() int {
	f := t.PromotionFactor
	if f == 0 {
		f = DefaultPromotionFactor
	}
	return t.StartPoints() * f
}

// Point returns the per-placement deltas at a table. Fourth place loses (dan+2)*10;
// hanchan scales every entry by 3/2.
func (t Tenhou) Point(table Table) (markov.PointSchedule, error) {
	first, second, err := placementPair(table.Rank)
	if err != nil {
		return markov.PointSchedule{}, err
	}
	s := markov.PointSchedule{first, second, 0, (t.Dan + 2) * -10}
	switch table.Kind {
	case Han4:
		for i, pt := range s {
			s[i] = floorDiv(pt*3, 2)
		}
		return s, nil
	case Ton4:
		return s, nil
	case Han3, Ton3:
		return markov.PointSchedule{}, &InvalidTableKindError{Kind: table.Kind.String()}
	}
	return markov.PointSchedule{}, &InvalidTableKindError{Kind: table.Kind.String()}
}

// Lattice indexes the dan's point axis for a schedule.
func (t Tenhou) Lattice(s markov.PointSchedule) (markov.Lattice, error) {
	return markov.ComputeLatticeBounds(s, t.DownPoints(), t.StartPoints(), t.PromotionThreshold())
}

func (t Tenhou) String() string { return strconv.Itoa(t.Dan) }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
