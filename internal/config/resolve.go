// resolve.go
package config

import (
	"runtime"
	"sort"

	"github.com/xtding233/trdeg/internal/ladder"
)

// Overrides carries command-line or query overrides applied after the files.
type Overrides struct {
	Efficiencies *[]float64
	Kinds        *[]string
	Workers      *int
	CeilingRatio *float64
}

type Resolver interface {
	// Returns merged RawConfig and normalized Params
	Resolve(ladder, sweep string, o Overrides) (RawConfig, Params, error)
}

// Resolve implements Resolver.
func (l *Loader) Resolve(ladderName, sweep string, o Overrides) (RawConfig, Params, error) {
	raw, err := l.LoadMerged(ladderName, sweep)
	if err != nil {
		return RawConfig{}, Params{}, err
	}
	raw = applyOverrides(raw, o)
	p, err := Normalize(raw)
	if err != nil {
		return raw, Params{}, err
	}
	return raw, p, nil
}

func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	var over RawConfig
	if o.Efficiencies != nil || o.Kinds != nil || o.Workers != nil {
		over.Sweep = &SweepConfig{Workers: o.Workers}
		if o.Efficiencies != nil {
			over.Sweep.Efficiencies = *o.Efficiencies
		}
		if o.Kinds != nil {
			over.Sweep.Kinds = *o.Kinds
		}
	}
	if o.CeilingRatio != nil {
		over.Ladder.Ceiling = &CeilingConfig{ReturnRatio: o.CeilingRatio}
	}
	return mergeRaw(raw, over)
}

// Normalize validates a merged RawConfig and converts it into Params.
func Normalize(raw RawConfig) (Params, error) {
	if err := ValidateRaw(raw); err != nil {
		return Params{}, err
	}

	p := Params{
		StartStep:       ladder.DefaultStartStep,
		PromotionFactor: ladder.DefaultPromotionFactor,
		CeilingRatio:    1,
		Workers:         runtime.NumCPU(),
		Version:         raw.Version,
	}
	if raw.Ladder.StartStep != nil {
		p.StartStep = *raw.Ladder.StartStep
	}
	if raw.Ladder.PromotionFactor != nil {
		p.PromotionFactor = *raw.Ladder.PromotionFactor
	}
	if raw.Ladder.Ceiling != nil && raw.Ladder.Ceiling.ReturnRatio != nil {
		p.CeilingRatio = *raw.Ladder.Ceiling.ReturnRatio
	}

	for _, lv := range raw.Ladder.Levels {
		rank, _ := ladder.ParseTableRank(lv.Rank)
		p.Levels = append(p.Levels, LevelParams{Level: lv.Level, Rank: rank})
	}
	sort.Slice(p.Levels, func(i, j int) bool { return p.Levels[i].Level < p.Levels[j].Level })

	for _, t := range raw.Tiers {
		lower, _ := ParseEdgeKind(t.LowerEdge)
		upper, _ := ParseEdgeKind(t.UpperEdge)
		points := upper != EdgeCeiling
		if t.Points != nil {
			points = *t.Points
		}
		p.Tiers = append(p.Tiers, TierParams{
			Name:      t.Name,
			Levels:    append([]int(nil), t.Levels...),
			Entry:     t.Entry,
			Reference: t.Reference,
			Lower:     lower,
			Upper:     upper,
			Points:    points,
		})
	}

	if raw.Sweep != nil {
		p.Efficiencies = append([]float64(nil), raw.Sweep.Efficiencies...)
		for _, k := range raw.Sweep.Kinds {
			kind, _ := ladder.ParseTableKind(k)
			p.Kinds = append(p.Kinds, kind)
		}
		if raw.Sweep.Workers != nil && *raw.Sweep.Workers > 0 {
			p.Workers = *raw.Sweep.Workers
		}
	}
	return p, nil
}

// Level returns the params of one ladder level.
func (p Params) Level(level int) (LevelParams, bool) {
	for _, lv := range p.Levels {
		if lv.Level == level {
			return lv, true
		}
	}
	return LevelParams{}, false
}

// Tier returns the params of a named tier.
func (p Params) Tier(name string) (TierParams, bool) {
	for _, t := range p.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return TierParams{}, false
}
