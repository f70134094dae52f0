package tier

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/trdeg/internal/markov"
)

func always(up bool, count float64) markov.AbsorptionResult {
	if up {
		return markov.AbsorptionResult{UpProb: 1, UpCount: count, DownCount: math.NaN(), UpReachable: true}
	}
	return markov.AbsorptionResult{DownProb: 1, DownCount: count, UpCount: math.NaN(), DownReachable: true}
}

func split(up, upCount, downCount float64) markov.AbsorptionResult {
	return markov.AbsorptionResult{
		UpProb:        up,
		UpCount:       upCount,
		DownProb:      1 - up,
		DownCount:     downCount,
		UpReachable:   true,
		DownReachable: true,
	}
}

func TestForwardChain(t *testing.T) {
	levels := []Level{
		{Level: 4, Value: 800, Result: always(true, 3)},
		{Level: 5, Value: 1000, Result: always(true, 5)},
		{Level: 6, Value: 1200, Result: always(true, 7)},
	}

	tests := []struct {
		name   string
		spec   Spec
		points float64
		games  float64
	}{{
		"from the bottom",
		Spec{Name: "lower", Entry: 4, Reference: 6, Lower: Pinned{}, Upper: Absorbing{}, Points: true},
		1800,
		8,
	}, {
		"from the middle",
		Spec{Name: "lower", Entry: 5, Reference: 6, Lower: Pinned{}, Points: true},
		1000,
		5,
	}, {
		"reference in the middle",
		Spec{Name: "lower", Entry: 4, Reference: 5, Lower: Pinned{}, Points: true},
		800,
		3,
	}, {
		"entry on the reference",
		Spec{Name: "lower", Entry: 6, Reference: 6, Lower: Pinned{}, Points: true},
		0,
		0,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := Solve(levels, test.spec)
			require.NoError(t, err)
			assert.True(t, out.HasPoints)
			assert.InDelta(t, test.points, out.Points, 1e-9)
			assert.InDelta(t, test.games, out.Games, 1e-9)
		})
	}
}

func TestSymmetricLadderWalk(t *testing.T) {
	var levels []Level
	for l := 0; l <= 4; l++ {
		levels = append(levels, Level{Level: l, Value: 1, Result: split(0.5, 1, 1)})
	}
	out, err := Solve(levels, Spec{Name: "ruin", Entry: 2, Reference: 4, Points: true})
	require.NoError(t, err)
	// i(4-i) steps from i on a fair walk absorbed at 0 and 4
	assert.InDelta(t, 4.0, out.Games, 1e-12)
	assert.InDelta(t, 0.0, out.Points, 1e-12)

	out, err = Solve(levels, Spec{Name: "ruin", Entry: 1, Reference: 4, Points: true})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, out.Games, 1e-12)
}

func TestCeilingTier(t *testing.T) {
	levels := []Level{
		{Level: 6, Value: 1200, Result: always(true, 10)},
		{Level: 7, Value: 1400, Result: split(0.6, 20, 15)},
		{Level: 8, Value: 1600, Result: split(0.5, 30, 30)},
	}
	spec := Spec{Name: "upper", Entry: 6, Reference: 8, Lower: Pinned{}, Upper: Ceiling{Games: 100}}

	out, err := Solve(levels, spec)
	require.NoError(t, err)
	assert.False(t, out.HasPoints)
	assert.Equal(t, 0.0, out.Points)
	// x7 = 18 + 0.4 x6 + 0.6*100, x6 = 10 + x7
	assert.InDelta(t, 82.0/0.6+10, out.Games, 1e-9)
}

func TestPinnedUpperEdge(t *testing.T) {
	levels := []Level{
		{Level: 1, Value: 10, Result: split(0.5, 2, 2)},
		{Level: 2, Value: 20, Result: split(0.5, 4, 6)},
		{Level: 3, Value: 30, Result: always(false, 9)},
	}
	out, err := Solve(levels, Spec{Name: "top", Entry: 3, Reference: 1, Upper: Pinned{}, Points: true})
	require.NoError(t, err)
	// x3 = 9 + x2, x2 = 5 + 0.5 x3
	assert.InDelta(t, 28.0, out.Games, 1e-9)
	// p3 = -30 + p2, p2 = 0 + 0.5 p3
	assert.InDelta(t, -60.0, out.Points, 1e-9)
}

func TestSingularTier(t *testing.T) {
	levels := []Level{
		{Level: 0, Value: 1, Result: always(true, 1)},
		{Level: 1, Value: 1, Result: always(false, 5)},
		{Level: 2, Value: 1, Result: always(true, 1)},
	}
	_, err := Solve(levels, Spec{Name: "loop", Entry: 0, Reference: 2, Lower: Pinned{}, Points: true})
	var se *markov.SingularSystemError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Size)
	assert.True(t, strings.Contains(se.Error(), "tier loop"))
}

func TestInvalidTier(t *testing.T) {
	ok := []Level{
		{Level: 4, Value: 1, Result: split(0.5, 1, 1)},
		{Level: 5, Value: 1, Result: split(0.5, 1, 1)},
	}
	tests := []struct {
		name   string
		levels []Level
		spec   Spec
	}{{
		"empty",
		nil,
		Spec{Name: "x"},
	}, {
		"gap",
		[]Level{{Level: 4}, {Level: 6}},
		Spec{Name: "x", Entry: 4, Reference: 6},
	}, {
		"entry outside",
		ok,
		Spec{Name: "x", Entry: 3, Reference: 5},
	}, {
		"reference outside",
		ok,
		Spec{Name: "x", Entry: 4, Reference: 7},
	}, {
		"ceiling below",
		ok,
		Spec{Name: "x", Entry: 4, Reference: 5, Lower: Ceiling{Games: 1}},
	}, {
		"ceiling without estimate",
		ok,
		Spec{Name: "x", Entry: 4, Reference: 5, Upper: Ceiling{Games: math.NaN()}},
	}, {
		"pinned single level",
		ok[:1],
		Spec{Name: "x", Entry: 4, Reference: 4, Lower: Pinned{}},
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Solve(test.levels, test.spec)
			assert.ErrorIs(t, err, ErrInvalidTier)
		})
	}
}

func TestPinnedUnreachable(t *testing.T) {
	levels := []Level{
		{Level: 4, Value: 1, Result: always(false, 3)},
		{Level: 5, Value: 1, Result: split(0.5, 1, 1)},
	}
	_, err := Solve(levels, Spec{Name: "lower", Entry: 4, Reference: 5, Lower: Pinned{}})
	assert.ErrorIs(t, err, markov.ErrUnreachableBoundary)
}

func TestSyntheticCeiling(t *testing.T) {
	c, err := SyntheticCeiling{ReturnRatio: 1.5}.Estimate(split(0.3, 40, 20))
	require.NoError(t, err)
	assert.Equal(t, Ceiling{Games: 30}, c)

	_, err = SyntheticCeiling{ReturnRatio: 1}.Estimate(always(true, 5))
	assert.ErrorIs(t, err, markov.ErrUnreachableBoundary)

	_, err = SyntheticCeiling{}.Estimate(split(0.3, 40, 20))
	assert.ErrorIs(t, err, ErrInvalidTier)
}
