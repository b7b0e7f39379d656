package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/raceda/internal/analysis"
)

// writeAggregates prints the grouped views as plain-text tables.
func writeAggregates(w io.Writer, agg *analysis.Aggregates) {
	fmt.Fprintln(w, "[WIN/LOSS]")
	if len(agg.WinLoss) == 0 {
		fmt.Fprintln(w, "(empty)")
	}
	for _, c := range agg.WinLoss {
		fmt.Fprintf(w, "%-8s %d\n", c.Value, c.Count)
	}

	fmt.Fprintln(w, "\n[RACES OVER TIME]")
	if len(agg.RacesOverTime) == 0 {
		fmt.Fprintln(w, "(empty)")
	}
	for _, c := range agg.RacesOverTime {
		fmt.Fprintf(w, "%s %d\n", c.Date.Format("2006-01-02"), c.Count)
	}

	fmt.Fprintln(w, "\n[WINS PER HORSE]")
	if len(agg.WinsPerHorse) == 0 {
		fmt.Fprintln(w, "(empty)")
	}
	for _, c := range agg.WinsPerHorse {
		fmt.Fprintf(w, "%-12s %d\n", c.Value, c.Count)
	}

	fmt.Fprintln(w, "\n[WINS BY WEATHER x TRACK]")
	p := agg.WeatherTrack
	if p.Empty() {
		fmt.Fprintln(w, "(empty)")
		return
	}
	width := 8
	for _, s := range append(append([]string{}, p.Rows...), p.Cols...) {
		width = max(width, len(s))
	}
	fmt.Fprintf(w, "%-*s", width+2, "")
	for _, c := range p.Cols {
		fmt.Fprintf(w, "%*s", width+2, c)
	}
	fmt.Fprintln(w)
	for i, r := range p.Rows {
		fmt.Fprintf(w, "%-*s", width+2, r)
		for _, v := range p.Cells[i] {
			fmt.Fprintf(w, "%*d", width+2, v)
		}
		fmt.Fprintln(w)
	}
}

func joinOrNone(xs []string) string {
	if len(xs) == 0 {
		return "none"
	}
	return strings.Join(xs, ", ")
}
