// Package sweep evaluates the ladder model over combinations of player efficiency and
// table kind.
package sweep

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xtding233/trdeg/internal/config"
	"github.com/xtding233/trdeg/internal/ladder"
	"github.com/xtding233/trdeg/internal/markov"
	"github.com/xtding233/trdeg/internal/tier"
)

// ErrUnknownLevel reports a level or tier missing from the configured ladder.
var ErrUnknownLevel = errors.New("not in the configured ladder")

// EvalError names the level, tier and table a failure came from.
type EvalError struct {
	Level      int // 0 when the failure is not tied to one level
	Tier       string
	Table      ladder.Table
	Efficiency float64
	Err        error
}

func (e *EvalError) Error() string {
	var b strings.Builder
	b.WriteString("evaluate")
	if e.Tier != "" {
		fmt.Fprintf(&b, " tier=%s", e.Tier)
	}
	if e.Level != 0 {
		fmt.Fprintf(&b, " level=%d", e.Level)
	}
	if e.Table.Rank != 0 {
		fmt.Fprintf(&b, " table=%s", e.Table)
	} else {
		// level lookup failed before a rank was known
		fmt.Fprintf(&b, " kind=%s", e.Table.Kind)
	}
	fmt.Fprintf(&b, " efficiency=%v: %v", e.Efficiency, e.Err)
	return b.String()
}

func (e *EvalError) Unwrap() error { return e.Err }

// Combo is one independent unit of the sweep.
type Combo struct {
	Efficiency float64
	Kind       ladder.TableKind
}

// LevelRow is the solved chain of one level for one combo.
type LevelRow struct {
	Level        int
	Efficiency   float64
	Table        ladder.Table
	Schedule     markov.PointSchedule
	Distribution markov.OutcomeDistribution
	Lattice      markov.Lattice
	Result       markov.AbsorptionResult
	Simulation   *markov.Simulation // set when VerifyTrials > 0
}

// TierRow is the aggregate of one tier for one combo.
type TierRow struct {
	Tier       string
	Efficiency float64
	Kind       ladder.TableKind
	Outcome    tier.Outcome
}

// Model evaluates levels and tiers of a configured ladder. It is read-only after
// construction and safe for concurrent use.
type Model struct {
	Params       config.Params
	Ceiling      tier.CeilingApprox // nil means SyntheticCeiling with Params.CeilingRatio
	VerifyTrials int                // Monte Carlo trials per level; 0 disables
	Seed         uint64
}

// NewModel returns a model over p with the synthetic ceiling approximation.
func NewModel(p config.Params) *Model {
	return &Model{Params: p}
}

// Degree returns the Tenhou dan for a level with the configured point rules.
func (m *Model) Degree(level int) ladder.Tenhou {
	return ladder.Tenhou{Dan: level, StartStep: m.Params.StartStep, PromotionFactor: m.Params.PromotionFactor}
}

// Table returns the table a level is played at for a kind.
func (m *Model) Table(level int, kind ladder.TableKind) (ladder.Table, error) {
	lv, ok := m.Params.Level(level)
	if !ok {
		return ladder.Table{}, fmt.Errorf("level %d: %w", level, ErrUnknownLevel)
	}
	return ladder.Table{Rank: lv.Rank, Kind: kind}, nil
}

// Combos enumerates efficiency × kind in configuration order.
func (m *Model) Combos() []Combo {
	out := make([]Combo, 0, len(m.Params.Efficiencies)*len(m.Params.Kinds))
	for _, e := range m.Params.Efficiencies {
		for _, k := range m.Params.Kinds {
			out = append(out, Combo{Efficiency: e, Kind: k})
		}
	}
	return out
}

// EvaluateLevel solves one dan at one table for a player.
func (m *Model) EvaluateLevel(degree ladder.Tenhou, table ladder.Table, player ladder.ConstantEfficiency) (LevelRow, error) {
	row := LevelRow{Level: degree.Dan, Efficiency: float64(player), Table: table}
	fail := func(err error) (LevelRow, error) {
		return LevelRow{}, &EvalError{Level: degree.Dan, Table: table, Efficiency: float64(player), Err: err}
	}

	var err error
	if row.Schedule, err = degree.Point(table); err != nil {
		return fail(err)
	}
	if row.Distribution, err = player.Probability(table); err != nil {
		return fail(err)
	}
	if row.Lattice, err = degree.Lattice(row.Schedule); err != nil {
		return fail(err)
	}
	chain, err := markov.NewChain(row.Lattice, row.Schedule, row.Distribution)
	if err != nil {
		return fail(err)
	}
	if row.Result, err = chain.Solve(); err != nil {
		return fail(err)
	}
	if m.VerifyTrials > 0 {
		sim, err := markov.Simulate(chain, m.VerifyTrials, markov.NewSeededRNG(m.seed(degree.Dan, table, player)))
		if err != nil {
			return fail(err)
		}
		row.Simulation = &sim
	}
	return row, nil
}

func (m *Model) seed(level int, table ladder.Table, player ladder.ConstantEfficiency) uint64 {
	return m.Seed ^ uint64(level)<<48 ^ uint64(table.Rank)<<40 ^ uint64(table.Kind)<<32 ^ math.Float64bits(float64(player))
}

// Evaluate solves every configured level and tier for one combo.
func (m *Model) Evaluate(c Combo) ([]LevelRow, []TierRow, error) {
	player := ladder.ConstantEfficiency(c.Efficiency)
	solved := make(map[int]LevelRow, len(m.Params.Levels))
	levels := make([]LevelRow, 0, len(m.Params.Levels))
	for _, lv := range m.Params.Levels {
		row, err := m.EvaluateLevel(m.Degree(lv.Level), ladder.Table{Rank: lv.Rank, Kind: c.Kind}, player)
		if err != nil {
			return nil, nil, err
		}
		solved[lv.Level] = row
		levels = append(levels, row)
	}

	lookup := func(level int) (LevelRow, error) {
		row, ok := solved[level]
		if !ok {
			return LevelRow{}, fmt.Errorf("level %d: %w", level, ErrUnknownLevel)
		}
		return row, nil
	}
	tiers := make([]TierRow, 0, len(m.Params.Tiers))
	for _, tp := range m.Params.Tiers {
		row, err := m.tier(tp, c, lookup)
		if err != nil {
			return nil, nil, err
		}
		tiers = append(tiers, row)
	}
	return levels, tiers, nil
}

// Tier solves one named tier for one combo, evaluating only the levels it needs.
func (m *Model) Tier(name string, c Combo) (TierRow, error) {
	tp, ok := m.Params.Tier(name)
	if !ok {
		return TierRow{}, fmt.Errorf("tier %q: %w", name, ErrUnknownLevel)
	}
	player := ladder.ConstantEfficiency(c.Efficiency)
	return m.tier(tp, c, func(level int) (LevelRow, error) {
		table, err := m.Table(level, c.Kind)
		if err != nil {
			return LevelRow{}, err
		}
		return m.EvaluateLevel(m.Degree(level), table, player)
	})
}

func (m *Model) tier(tp config.TierParams, c Combo, lookup func(int) (LevelRow, error)) (TierRow, error) {
	fail := func(level int, table ladder.Table, err error) (TierRow, error) {
		var ev *EvalError
		if errors.As(err, &ev) {
			tagged := *ev
			tagged.Tier = tp.Name
			return TierRow{}, &tagged
		}
		return TierRow{}, &EvalError{Level: level, Tier: tp.Name, Table: table, Efficiency: c.Efficiency, Err: err}
	}

	levels := make([]tier.Level, 0, len(tp.Levels))
	var top, entry LevelRow
	for _, l := range tp.Levels {
		row, err := lookup(l)
		if err != nil {
			return fail(l, ladder.Table{Kind: c.Kind}, err)
		}
		levels = append(levels, tier.Level{
			Level:  l,
			Value:  float64(m.Degree(l).StartPoints()),
			Result: row.Result,
		})
		top = row
		if l == tp.Entry {
			entry = row
		}
	}

	spec := tier.Spec{
		Name:      tp.Name,
		Entry:     tp.Entry,
		Reference: tp.Reference,
		Lower:     edge(tp.Lower),
		Upper:     edge(tp.Upper),
		Points:    tp.Points,
	}
	if tp.Upper == config.EdgeCeiling {
		ceiling, err := m.ceiling(top, c)
		if err != nil {
			return fail(top.Level+1, top.Table, err)
		}
		spec.Upper = ceiling
	}

	out, err := tier.Solve(levels, spec)
	if err != nil {
		return fail(tp.Entry, entry.Table, err)
	}
	return TierRow{Tier: tp.Name, Efficiency: c.Efficiency, Kind: c.Kind, Outcome: out}, nil
}

// ceiling estimates the top level's residence from a synthetic dan one above it,
// played at the top level's table.
func (m *Model) ceiling(top LevelRow, c Combo) (tier.Ceiling, error) {
	approx := m.Ceiling
	if approx == nil {
		approx = tier.SyntheticCeiling{ReturnRatio: m.Params.CeilingRatio}
	}
	synthetic, err := m.EvaluateLevel(m.Degree(top.Level).Next(), top.Table, ladder.ConstantEfficiency(c.Efficiency))
	if err != nil {
		return tier.Ceiling{}, err
	}
	return approx.Estimate(synthetic.Result)
}

func edge(k config.EdgeKind) tier.Edge {
	switch k {
	case config.EdgeAbsorbing:
		return tier.Absorbing{}
	case config.EdgePinned:
		return tier.Pinned{}
	case config.EdgeCeiling:
		// filled in by the caller from the ceiling approximation
		return tier.Ceiling{Games: math.NaN()}
	}
	return tier.Absorbing{}
}
