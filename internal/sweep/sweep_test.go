package sweep

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/trdeg/internal/config"
	"github.com/xtding233/trdeg/internal/ladder"
	"github.com/xtding233/trdeg/internal/markov"
	"github.com/xtding233/trdeg/internal/tier"
)

func defaultModel(t *testing.T) *Model {
	t.Helper()
	p, err := config.Normalize(config.Defaults())
	require.NoError(t, err)
	return NewModel(p)
}

func TestEvaluateLevel(t *testing.T) {
	m := defaultModel(t)
	row, err := m.EvaluateLevel(m.Degree(4), ladder.Table{Rank: ladder.Tok, Kind: ladder.Ton4}, 6.0)
	require.NoError(t, err)

	assert.Equal(t, markov.PointSchedule{50, 20, 0, -60}, row.Schedule)
	assert.Equal(t, markov.Lattice{Scale: 10, Down: 0, Start: 81, Up: 161}, row.Lattice)
	assert.Nil(t, row.Simulation)

	r := row.Result
	assert.InDelta(t, 1.0, r.UpProb+r.DownProb, 1e-9)
	// positive drift at efficiency 6
	assert.Greater(t, r.UpProb, 0.5)
	assert.Greater(t, r.UpCount, 0.0)
	assert.Greater(t, r.DownCount, 0.0)
}

func TestEvaluateCombo(t *testing.T) {
	m := defaultModel(t)
	levels, tiers, err := m.Evaluate(Combo{Efficiency: 6.0, Kind: ladder.Han4})
	require.NoError(t, err)

	require.Len(t, levels, 5)
	for i, row := range levels {
		assert.Equal(t, 4+i, row.Level)
		assert.True(t, row.Result.UpReachable)
		assert.True(t, row.Result.DownReachable)
	}
	assert.Equal(t, ladder.Hou, levels[4].Table.Rank)

	require.Len(t, tiers, 3)
	assert.Equal(t, "lower", tiers[0].Tier)
	assert.True(t, tiers[0].Outcome.HasPoints)
	assert.Greater(t, tiers[0].Outcome.Games, 0.0)
	assert.Equal(t, "upper", tiers[2].Tier)
	assert.False(t, tiers[2].Outcome.HasPoints)
	assert.Greater(t, tiers[2].Outcome.Games, levels[3].Result.UpCount)

	single, err := m.Tier("middle", Combo{Efficiency: 6.0, Kind: ladder.Han4})
	require.NoError(t, err)
	assert.Equal(t, tiers[1], single)
}

type fixedCeiling float64

func (f fixedCeiling) Estimate(markov.AbsorptionResult) (tier.Ceiling, error) {
	return tier.Ceiling{Games: float64(f)}, nil
}

func TestCeilingApproxIsSwappable(t *testing.T) {
	m := defaultModel(t)
	c := Combo{Efficiency: 6.0, Kind: ladder.Ton4}

	m.Ceiling = fixedCeiling(0)
	low, err := m.Tier("upper", c)
	require.NoError(t, err)
	m.Ceiling = fixedCeiling(100)
	high, err := m.Tier("upper", c)
	require.NoError(t, err)

	assert.InDelta(t, 100, high.Outcome.Games-low.Outcome.Games, 1e-9)
}

func TestTierFailureNamesEntryTable(t *testing.T) {
	m := defaultModel(t)
	m.Ceiling = fixedCeiling(math.NaN())

	_, err := m.Tier("upper", Combo{Efficiency: 6.0, Kind: ladder.Ton4})
	require.Error(t, err)
	assert.ErrorIs(t, err, tier.ErrInvalidTier)
	var ev *EvalError
	require.True(t, errors.As(err, &ev))
	assert.Equal(t, "upper", ev.Tier)
	assert.Equal(t, 7, ev.Level)
	assert.Equal(t, ladder.Table{Rank: ladder.Hou, Kind: ladder.Ton4}, ev.Table)
	assert.Contains(t, err.Error(), "table=HOU/TON4")
	assert.NotContains(t, err.Error(), "TableRank(0)")
}

func TestTierUnknown(t *testing.T) {
	_, err := defaultModel(t).Tier("attic", Combo{Efficiency: 6, Kind: ladder.Ton4})
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestRunOrdering(t *testing.T) {
	m := defaultModel(t)
	m.Params.Efficiencies = []float64{5.5, 6.0}
	m.Params.Workers = 2

	r, err := Run(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, r.Levels, 5*2*2)
	assert.Equal(t, 4, r.Levels[0].Level)
	assert.Equal(t, 5.5, r.Levels[0].Efficiency)
	assert.Equal(t, ladder.Han4, r.Levels[0].Table.Kind)
	assert.Equal(t, ladder.Ton4, r.Levels[1].Table.Kind)
	assert.Equal(t, 6.0, r.Levels[2].Efficiency)
	assert.Equal(t, 5, r.Levels[4].Level)

	require.Len(t, r.Tiers, 3*2*2)
	assert.Equal(t, "lower", r.Tiers[0].Tier)
	assert.Equal(t, "middle", r.Tiers[4].Tier)
}

func TestRunReportsFailingTriple(t *testing.T) {
	m := defaultModel(t)
	m.Params.Efficiencies = []float64{6.0, -30}

	_, err := Run(context.Background(), m)
	require.Error(t, err)
	var ev *EvalError
	require.True(t, errors.As(err, &ev))
	assert.Equal(t, 4, ev.Level)
	assert.Equal(t, -30.0, ev.Efficiency)
	assert.ErrorIs(t, err, ladder.ErrProbabilityFloor)
	assert.True(t, strings.Contains(err.Error(), "level=4"))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, defaultModel(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifyTrials(t *testing.T) {
	m := defaultModel(t)
	m.VerifyTrials = 2000
	m.Seed = 7
	row, err := m.EvaluateLevel(m.Degree(4), ladder.Table{Rank: ladder.Tok, Kind: ladder.Ton4}, 6.0)
	require.NoError(t, err)
	require.NotNil(t, row.Simulation)
	assert.InDelta(t, row.Result.UpProb, row.Simulation.UpFreq, 0.05)

	again, err := m.EvaluateLevel(m.Degree(4), ladder.Table{Rank: ladder.Tok, Kind: ladder.Ton4}, 6.0)
	require.NoError(t, err)
	assert.Equal(t, row.Simulation.UpFreq, again.Simulation.UpFreq)
}

func TestWriteReports(t *testing.T) {
	levels := []LevelRow{{
		Level:        4,
		Efficiency:   6,
		Table:        ladder.Table{Rank: ladder.Tok, Kind: ladder.Ton4},
		Distribution: markov.OutcomeDistribution{1, 0, 0, 0},
		Result:       markov.AbsorptionResult{UpProb: 1, UpCount: 5, DownCount: math.NaN(), UpReachable: true},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteLevels(&buf, levels, true))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(levelHeader, "\t"), lines[0])
	assert.Equal(t, "4\t6\tTOK\tTON4\t1\t5\t0\tnan\t1\t0\t0\t0", lines[1])

	buf.Reset()
	tiers := []TierRow{
		{Tier: "lower", Efficiency: 5.5, Kind: ladder.Han4, Outcome: tier.Outcome{Points: 1800, Games: 8.25, HasPoints: true}},
		{Tier: "upper", Efficiency: 5.5, Kind: ladder.Han4, Outcome: tier.Outcome{Games: 12}},
	}
	require.NoError(t, WriteTiers(&buf, tiers, false))
	assert.Equal(t, "lower\t5.5\tHAN4\t1800\t8.25\nupper\t5.5\tHAN4\t-\t12\n", buf.String())
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.1", formatFloat(0.1))
	assert.Equal(t, "-inf", formatFloat(math.Inf(-1)))
	assert.Equal(t, "inf", formatFloat(math.Inf(1)))
	assert.Equal(t, "0.33", formatFixed(0.333333, 2))
	assert.Equal(t, "nan", formatFixed(math.NaN(), 2))
}

func TestInspect(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Inspect(&buf, defaultModel(t), 4, 6.0))
	out := buf.String()
	assert.Contains(t, out, "rank: TOK; kind: HAN4")
	assert.Contains(t, out, "point: [75 30 0 -90]")
	assert.Contains(t, out, "index: down=0 start=54 up=108 scale=15")
	assert.Contains(t, out, "rank: HOU; kind: TON4")
}
