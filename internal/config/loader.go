package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Paths helper for default/ladder/sweep files.
type Paths struct {
	BaseDir string // base directory, e.g., ./configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "ladders", "default.yaml")
}
func (p Paths) LadderPath(ladder string) string {
	return filepath.Join(p.BaseDir, "ladders", ladder+".yaml")
}
func (p Paths) SweepPath(ladder, sweep string) string {
	return filepath.Join(p.BaseDir, "ladders", ladder, "sweeps", sweep+".yaml")
}

// Loader reads YAML configs and layers built-in defaults → default → ladder → sweep.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "ladder" or "ladder/sweep"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the files the loader reads for a ladder and optional sweep.
func (l *Loader) Paths(ladder, sweep string) []string {
	out := []string{l.paths.DefaultPath(), l.paths.LadderPath(ladder)}
	if sweep != "" {
		out = append(out, l.paths.SweepPath(ladder, sweep))
	}
	return out
}

// LoadMerged loads and merges the layers for ladder (and sweep, if non-empty).
// It returns the merged RawConfig without validation.
func (l *Loader) LoadMerged(ladder, sweep string) (RawConfig, error) {
	key := ladder
	if sweep != "" {
		key += "/" + sweep
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, _, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	ladderCfg, found, err := readYAML(l.paths.LadderPath(ladder))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read ladder %s: %w", ladder, err)
	}
	if !found {
		zap.L().Warn("ladder config not found, using defaults",
			zap.String("ladder", ladder),
			zap.String("path", l.paths.LadderPath(ladder)),
		)
	}
	var sweepCfg RawConfig
	if sweep != "" {
		if sweepCfg, found, err = readYAML(l.paths.SweepPath(ladder, sweep)); err != nil {
			return RawConfig{}, fmt.Errorf("read sweep %s/%s: %w", ladder, sweep, err)
		}
		if !found {
			zap.L().Warn("sweep config not found",
				zap.String("ladder", ladder),
				zap.String("sweep", sweep),
				zap.String("path", l.paths.SweepPath(ladder, sweep)),
			)
		}
	}

	merged := mergeRaw(Defaults(), defCfg)
	merged = mergeRaw(merged, ladderCfg)
	merged = mergeRaw(merged, sweepCfg)

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. A missing file returns a zero cfg with
// found=false and no error.
func readYAML(path string) (cfg RawConfig, found bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, true, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, true, nil
}

// mergeRaw overlays b onto a: set scalars and non-empty slices in b win.
// Tiers are replaced as a whole list.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// ladder
	if b.Ladder.StartStep != nil {
		out.Ladder.StartStep = b.Ladder.StartStep
	}
	if b.Ladder.PromotionFactor != nil {
		out.Ladder.PromotionFactor = b.Ladder.PromotionFactor
	}
	if len(b.Ladder.Levels) > 0 {
		out.Ladder.Levels = append([]LevelConfig(nil), b.Ladder.Levels...)
	}
	if b.Ladder.Ceiling != nil && b.Ladder.Ceiling.ReturnRatio != nil {
		c := CeilingConfig{ReturnRatio: b.Ladder.Ceiling.ReturnRatio}
		out.Ladder.Ceiling = &c
	}

	if len(b.Tiers) > 0 {
		out.Tiers = append([]TierConfig(nil), b.Tiers...)
	}

	// sweep
	switch {
	case out.Sweep == nil && b.Sweep != nil:
		c := *b.Sweep
		out.Sweep = &c
	case out.Sweep != nil && b.Sweep != nil:
		c := *out.Sweep
		if len(b.Sweep.Efficiencies) > 0 {
			c.Efficiencies = append([]float64(nil), b.Sweep.Efficiencies...)
		}
		if len(b.Sweep.Kinds) > 0 {
			c.Kinds = append([]string(nil), b.Sweep.Kinds...)
		}
		if b.Sweep.Workers != nil {
			c.Workers = b.Sweep.Workers
		}
		out.Sweep = &c
	}

	return out
}
