package markov

// AbsorptionResult holds the start-state outcome of one level chain.
// A count is NaN, with its Reachable flag false, when that boundary is never hit.
type AbsorptionResult struct {
	UpProb        float64 `json:"up_prob"`
	UpCount       float64 `json:"up_count"`
	DownProb      float64 `json:"down_prob"`
	DownCount     float64 `json:"down_count"`
	UpReachable   bool    `json:"up_reachable"`
	DownReachable bool    `json:"down_reachable"`
}

// SolveLevel builds the chain for one level and solves it.
func SolveLevel(l Lattice, s PointSchedule, d OutcomeDistribution) (AbsorptionResult, error) {
	c, err := NewChain(l, s, d)
	if err != nil {
		return AbsorptionResult{}, err
	}
	return c.Solve()
}
