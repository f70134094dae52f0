// types.go
package config

import "github.com/xtding233/trdeg/internal/ladder"

// RawConfig is loaded from YAML; every field is optional so files can be layered.
type RawConfig struct {
	Version string       `yaml:"version"`
	Ladder  LadderConfig `yaml:"ladder"`
	Tiers   []TierConfig `yaml:"tiers,omitempty"`
	Sweep   *SweepConfig `yaml:"sweep,omitempty"`
	Notes   string       `yaml:"notes,omitempty"`
}

type LadderConfig struct {
	StartStep       *int           `yaml:"start_step"`
	PromotionFactor *int           `yaml:"promotion_factor"`
	Levels          []LevelConfig  `yaml:"levels,omitempty"`
	Ceiling         *CeilingConfig `yaml:"ceiling,omitempty"`
}

type LevelConfig struct {
	Level int    `yaml:"level"`
	Rank  string `yaml:"rank"` // pan | jou | tok | hou
}

type CeilingConfig struct {
	ReturnRatio *float64 `yaml:"return_ratio"`
}

type TierConfig struct {
	Name      string `yaml:"name"`
	Levels    []int  `yaml:"levels"`
	Entry     int    `yaml:"entry"`
	Reference int    `yaml:"reference"`
	LowerEdge string `yaml:"lower_edge"` // absorbing | pinned
	UpperEdge string `yaml:"upper_edge"` // absorbing | pinned | ceiling
	Points    *bool  `yaml:"points,omitempty"`
}

type SweepConfig struct {
	Efficiencies []float64 `yaml:"efficiencies"`
	Kinds        []string  `yaml:"kinds"` // han4 | ton4
	Workers      *int      `yaml:"workers"`
}

// EdgeKind is the configured boundary policy of a tier edge.
type EdgeKind int

const (
	EdgeAbsorbing EdgeKind = iota
	EdgePinned
	EdgeCeiling
)

func (e EdgeKind) String() string {
	switch e {
	case EdgeAbsorbing:
		return "absorbing"
	case EdgePinned:
		return "pinned"
	case EdgeCeiling:
		return "ceiling"
	}
	return "unknown"
}

// Normalized model params used by internal/sweep.
type Params struct {
	StartStep       int
	PromotionFactor int
	Levels          []LevelParams // ascending by level
	CeilingRatio    float64
	Tiers           []TierParams
	Efficiencies    []float64
	Kinds           []ladder.TableKind
	Workers         int
	Version         string // effective config version for tracing
}

type LevelParams struct {
	Level int
	Rank  ladder.TableRank
}

type TierParams struct {
	Name      string
	Levels    []int
	Entry     int
	Reference int
	Lower     EdgeKind
	Upper     EdgeKind
	Points    bool
}
