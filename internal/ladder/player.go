package ladder

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/xtding233/trdeg/internal/markov"
)

// ErrProbabilityFloor reports an efficiency for which the model would assign a
// placement probability below zero.
var ErrProbabilityFloor = errors.New("efficiency outside the model range")

// Player produces a placement distribution for a table.
type Player interface {
	Probability(table Table) (markov.OutcomeDistribution, error)
}

// ConstantEfficiency places with probabilities spread arithmetically around 1/4.
// With the rank constants (p, q),
//
//	δ = (p+q-10e-20) / (12p+4q+120e+240)
//
// and the distribution is [1/4-3δ, 1/4-δ, 1/4+δ, 1/4+3δ].
type ConstantEfficiency float64

// Probability implements Player. Only four-player kinds are modelled.
func (e ConstantEfficiency) Probability(table Table) (markov.OutcomeDistribution, error) {
	p, q, err := placementPair(table.Rank)
	if err != nil {
		return markov.OutcomeDistribution{}, err
	}
	switch table.Kind {
	case Han4, Ton4:
	case Han3, Ton3:
		return markov.OutcomeDistribution{}, &InvalidTableKindError{Kind: table.Kind.String()}
	default:
		return markov.OutcomeDistribution{}, &InvalidTableKindError{Kind: table.Kind.String()}
	}

	ef := float64(e)
	pf, qf := float64(p), float64(q)
	d := (pf + qf - 10*ef - 20) / (12*pf + 4*qf + 120*ef + 240)
	if math.Abs(3*d) > 0.25 {
		return markov.OutcomeDistribution{}, fmt.Errorf("%w: efficiency %v at %s", ErrProbabilityFloor, ef, table)
	}
	return markov.OutcomeDistribution{0.25 - 3*d, 0.25 - d, 0.25 + d, 0.25 + 3*d}, nil
}

func (e ConstantEfficiency) String() string {
	return strconv.FormatFloat(float64(e), 'f', -1, 64)
}
