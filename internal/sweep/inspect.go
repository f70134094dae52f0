package sweep

import (
	"fmt"
	"io"
	"strings"

	"github.com/xtding233/trdeg/internal/ladder"
	"github.com/xtding233/trdeg/internal/markov"
)

// InspectTables are the tables printed by Inspect.
var InspectTables = []ladder.Table{
	{Rank: ladder.Tok, Kind: ladder.Han4},
	{Rank: ladder.Tok, Kind: ladder.Ton4},
	{Rank: ladder.Hou, Kind: ladder.Han4},
	{Rank: ladder.Hou, Kind: ladder.Ton4},
}

// Inspect prints the intermediate values of one dan and efficiency at every inspect
// table: distribution, schedule, expectation, lattice, probabilities and counts.
func Inspect(w io.Writer, m *Model, dan int, efficiency float64) error {
	degree := m.Degree(dan)
	player := ladder.ConstantEfficiency(efficiency)

	for _, table := range InspectTables {
		d, err := player.Probability(table)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s: %s\n", table.Rank, table.Kind, floats(d[:]))
	}

	for _, table := range InspectTables {
		row, err := m.EvaluateLevel(degree, table, player)
		if err != nil {
			return err
		}
		r := row.Result
		fmt.Fprintf(w, "rank: %s; kind: %s\n", table.Rank, table.Kind)
		fmt.Fprintf(w, "point: %v\n", row.Schedule)
		fmt.Fprintf(w, "probs: %s\n", floats(row.Distribution[:]))
		fmt.Fprintf(w, "E[pt]: %s\n", formatFixed(markov.Expectation(row.Schedule, row.Distribution), 6))
		fmt.Fprintf(w, "index: down=%d start=%d up=%d scale=%d\n", row.Lattice.Down, row.Lattice.Start, row.Lattice.Up, row.Lattice.Scale)
		fmt.Fprintf(w, "up/dn: %s/%s\n", formatFloat(r.UpProb), formatFloat(r.DownProb))
		fmt.Fprintf(w, "count: %s/%s\n", formatFloat(r.UpCount), formatFloat(r.DownCount))
		if s := row.Simulation; s != nil {
			fmt.Fprintf(w, "sim:   %s up over %d trials, games %s/%s\n",
				formatFixed(s.UpFreq, 4), s.Trials, formatFixed(s.UpGames.Mean, 2), formatFixed(s.DownGames.Mean, 2))
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func floats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
