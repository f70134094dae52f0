package config

import (
	"fmt"
	"strings"

	"github.com/xtding233/trdeg/internal/ladder"
)

// ValidateRaw checks semantic constraints of a merged RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// ladder.start_step / promotion_factor
	if cfg.Ladder.StartStep != nil && *cfg.Ladder.StartStep <= 0 {
		errs = append(errs, "ladder.start_step must be >= 1")
	}
	if cfg.Ladder.PromotionFactor != nil && *cfg.Ladder.PromotionFactor < 2 {
		errs = append(errs, "ladder.promotion_factor must be >= 2")
	}

	// ladder.levels
	known := make(map[int]bool, len(cfg.Ladder.Levels))
	for i, lv := range cfg.Ladder.Levels {
		if lv.Level <= 0 {
			errs = append(errs, fmt.Sprintf("ladder.levels[%d].level must be >= 1", i))
		}
		if known[lv.Level] {
			errs = append(errs, fmt.Sprintf("ladder.levels[%d]: level %d listed twice", i, lv.Level))
		}
		known[lv.Level] = true
		if _, err := ladder.ParseTableRank(lv.Rank); err != nil {
			errs = append(errs, fmt.Sprintf("ladder.levels[%d].rank: %v", i, err))
		}
	}
	if len(cfg.Ladder.Levels) == 0 {
		errs = append(errs, "ladder.levels must not be empty")
	}

	// ladder.ceiling
	if cfg.Ladder.Ceiling != nil && cfg.Ladder.Ceiling.ReturnRatio != nil && *cfg.Ladder.Ceiling.ReturnRatio <= 0 {
		errs = append(errs, "ladder.ceiling.return_ratio must be > 0")
	}

	// tiers
	names := make(map[string]bool, len(cfg.Tiers))
	for i, t := range cfg.Tiers {
		at := fmt.Sprintf("tiers[%d]", i)
		if t.Name == "" {
			errs = append(errs, at+".name is required")
		} else if names[t.Name] {
			errs = append(errs, fmt.Sprintf("%s.name %q is not unique", at, t.Name))
		}
		names[t.Name] = true

		if len(t.Levels) == 0 {
			errs = append(errs, at+".levels must not be empty")
			continue
		}
		inTier := make(map[int]bool, len(t.Levels))
		for j, lv := range t.Levels {
			if j > 0 && lv != t.Levels[j-1]+1 {
				errs = append(errs, fmt.Sprintf("%s.levels must be ascending and contiguous (%d after %d)", at, lv, t.Levels[j-1]))
			}
			if !known[lv] {
				errs = append(errs, fmt.Sprintf("%s.levels: level %d is not in ladder.levels", at, lv))
			}
			inTier[lv] = true
		}
		if !inTier[t.Entry] {
			errs = append(errs, fmt.Sprintf("%s.entry %d must be one of the tier levels", at, t.Entry))
		}
		if !inTier[t.Reference] {
			errs = append(errs, fmt.Sprintf("%s.reference %d must be one of the tier levels", at, t.Reference))
		}

		lower, err := ParseEdgeKind(t.LowerEdge)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s.lower_edge: %v", at, err))
		} else if lower == EdgeCeiling {
			errs = append(errs, at+".lower_edge cannot be ceiling")
		}
		upper, err := ParseEdgeKind(t.UpperEdge)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s.upper_edge: %v", at, err))
		}
		if len(t.Levels) == 1 && (lower == EdgePinned || upper == EdgePinned) {
			errs = append(errs, at+": a single-level tier cannot have a pinned edge")
		}
	}

	// sweep
	if cfg.Sweep != nil {
		if len(cfg.Sweep.Efficiencies) == 0 {
			errs = append(errs, "sweep.efficiencies must not be empty")
		}
		if len(cfg.Sweep.Kinds) == 0 {
			errs = append(errs, "sweep.kinds must not be empty")
		}
		for i, k := range cfg.Sweep.Kinds {
			kind, err := ladder.ParseTableKind(k)
			if err != nil {
				errs = append(errs, fmt.Sprintf("sweep.kinds[%d]: %v", i, err))
				continue
			}
			switch kind {
			case ladder.Han4, ladder.Ton4:
			case ladder.Han3, ladder.Ton3:
				errs = append(errs, fmt.Sprintf("sweep.kinds[%d]: three-player kind %s is not modelled", i, kind))
			}
		}
		if cfg.Sweep.Workers != nil && *cfg.Sweep.Workers < 0 {
			errs = append(errs, "sweep.workers must be >= 0 (0 means one per CPU)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ParseEdgeKind accepts "absorbing" (or empty), "pinned" and "ceiling".
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "absorbing":
		return EdgeAbsorbing, nil
	case "pinned":
		return EdgePinned, nil
	case "ceiling":
		return EdgeCeiling, nil
	}
	return EdgeAbsorbing, fmt.Errorf("edge must be one of: absorbing, pinned, ceiling; got %q", s)
}
