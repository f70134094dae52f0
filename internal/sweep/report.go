package sweep

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	levelHeader = []string{"dan", "efficiency", "rank", "kind", "up_prob", "up_count", "down_prob", "down_count", "p1", "p2", "p3", "p4"}
	simHeader   = []string{"sim_up_freq", "sim_up_games", "sim_down_games"}
	tierHeader  = []string{"tier", "efficiency", "kind", "points", "games"}
)

// WriteLevels renders level rows as tab-separated values.
func WriteLevels(w io.Writer, rows []LevelRow, header bool) error {
	withSim := len(rows) > 0 && rows[0].Simulation != nil
	if header {
		cols := levelHeader
		if withSim {
			cols = append(append([]string(nil), levelHeader...), simHeader...)
		}
		if err := writeRow(w, cols); err != nil {
			return err
		}
	}
	for _, r := range rows {
		cols := []string{
			fmt.Sprint(r.Level),
			formatFloat(r.Efficiency),
			r.Table.Rank.String(),
			r.Table.Kind.String(),
			formatFloat(r.Result.UpProb),
			formatFloat(r.Result.UpCount),
			formatFloat(r.Result.DownProb),
			formatFloat(r.Result.DownCount),
		}
		for _, p := range r.Distribution {
			cols = append(cols, formatFloat(p))
		}
		if r.Simulation != nil {
			cols = append(cols,
				formatFloat(r.Simulation.UpFreq),
				formatFloat(r.Simulation.UpGames.Mean),
				formatFloat(r.Simulation.DownGames.Mean),
			)
		}
		if err := writeRow(w, cols); err != nil {
			return err
		}
	}
	return nil
}

// WriteTiers renders tier rows as tab-separated values. Tiers without points print "-".
func WriteTiers(w io.Writer, rows []TierRow, header bool) error {
	if header {
		if err := writeRow(w, tierHeader); err != nil {
			return err
		}
	}
	for _, r := range rows {
		points := "-"
		if r.Outcome.HasPoints {
			points = formatFloat(r.Outcome.Points)
		}
		cols := []string{r.Tier, formatFloat(r.Efficiency), r.Kind.String(), points, formatFloat(r.Outcome.Games)}
		if err := writeRow(w, cols); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, cols []string) error {
	_, err := io.WriteString(w, strings.Join(cols, "\t")+"\n")
	return err
}

// formatFloat prints the shortest decimal that round-trips v. decimal cannot hold
// NaN or infinities, so those are spelled out.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return decimal.NewFromFloat(v).String()
}

// formatFixed rounds v to places decimals.
func formatFixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formatFloat(v)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
