package config

// Defaults is the built-in base layer: dan 4..8 of the Tenhou ladder played at
// tokujou (4-6) and houou (7-8), swept over the efficiencies 5.5..6.5.
func Defaults() RawConfig {
	startStep, factor, workers := 200, 2, 0
	ratio := 1.0
	points, noPoints := true, false
	return RawConfig{
		Version: "1",
		Ladder: LadderConfig{
			StartStep:       &startStep,
			PromotionFactor: &factor,
			Levels: []LevelConfig{
				{Level: 4, Rank: "tok"},
				{Level: 5, Rank: "tok"},
				{Level: 6, Rank: "tok"},
				{Level: 7, Rank: "hou"},
				{Level: 8, Rank: "hou"},
			},
			Ceiling: &CeilingConfig{ReturnRatio: &ratio},
		},
		Tiers: []TierConfig{
			{Name: "lower", Levels: []int{4, 5, 6}, Entry: 4, Reference: 6, LowerEdge: "pinned", UpperEdge: "absorbing", Points: &points},
			{Name: "middle", Levels: []int{6, 7, 8}, Entry: 6, Reference: 8, LowerEdge: "pinned", UpperEdge: "absorbing", Points: &points},
			{Name: "upper", Levels: []int{7, 8}, Entry: 7, Reference: 8, LowerEdge: "pinned", UpperEdge: "ceiling", Points: &noPoints},
		},
		Sweep: &SweepConfig{
			Efficiencies: []float64{5.5, 5.6, 5.7, 5.8, 5.9, 6.0, 6.1, 6.2, 6.3, 6.4, 6.5},
			Kinds:        []string{"han4", "ton4"},
			Workers:      &workers,
		},
	}
}
