package sweep

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report collects a full sweep. Levels are ordered level → efficiency → kind and
// tiers tier → efficiency → kind, matching the configuration order.
type Report struct {
	Levels []LevelRow
	Tiers  []TierRow
}

// Run evaluates every combo on at most Params.Workers goroutines. Combos share no
// state; the first failure cancels the rest.
func Run(ctx context.Context, m *Model) (Report, error) {
	combos := m.Combos()
	type result struct {
		levels []LevelRow
		tiers  []TierRow
	}
	results := make([]result, len(combos))

	g, ctx := errgroup.WithContext(ctx)
	workers := m.Params.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, c := range combos {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			levels, tiers, err := m.Evaluate(c)
			if err != nil {
				zap.L().Error("combo failed",
					zap.Float64("efficiency", c.Efficiency),
					zap.Stringer("kind", c.Kind),
					zap.Error(err),
				)
				return err
			}
			results[i] = result{levels: levels, tiers: tiers}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var r Report
	if len(results) == 0 {
		return r, nil
	}
	for li := range results[0].levels {
		for _, res := range results {
			r.Levels = append(r.Levels, res.levels[li])
		}
	}
	for ti := range results[0].tiers {
		for _, res := range results {
			r.Tiers = append(r.Tiers, res.tiers[ti])
		}
	}
	zap.L().Debug("sweep done", zap.Int("combos", len(combos)), zap.Int("levels", len(r.Levels)), zap.Int("tiers", len(r.Tiers)))
	return r, nil
}
