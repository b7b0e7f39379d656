package analysis

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/raceda/internal/dataset"
)

// Roles names the columns the aggregates read.
type Roles struct {
	Outcome string
	Date    string
	Horse   string
	Weather string
	Track   string
	Weight  string
}

// DefaultRoles returns the column names of the race dataset.
func DefaultRoles() Roles {
	return Roles{
		Outcome: "Won",
		Date:    "MeetingDate",
		Horse:   "HorseID",
		Weather: "Weather",
		Track:   "TrackType",
		Weight:  "WeightValue",
	}
}

// DateCount is the number of rows sharing one date.
type DateCount struct {
	Date  time.Time
	Count int
}

// Pivot is a zero-filled count matrix. Cells[i][j] counts Rows[i] x Cols[j].
type Pivot struct {
	Rows  []string
	Cols  []string
	Cells [][]int
}

// Get returns the count for (row, col), or 0 when either label is absent.
func (p *Pivot) Get(row, col string) int {
	if p == nil {
		return 0
	}
	i := indexOf(p.Rows, row)
	j := indexOf(p.Cols, col)
	if i < 0 || j < 0 {
		return 0
	}
	return p.Cells[i][j]
}

// Total sums every cell.
func (p *Pivot) Total() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, row := range p.Cells {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// Empty reports whether the pivot has no cells.
func (p *Pivot) Empty() bool { return p == nil || len(p.Rows) == 0 || len(p.Cols) == 0 }

// OutcomeValues groups the weights of one outcome value.
type OutcomeValues struct {
	Outcome string
	Values  []float64
}

// key returns the grouping key of cell i. Numbers are formatted without
// trailing zeros so an int 1 and a float 1.0 group together.
func key(c dataset.Column, i int) (string, bool) {
	if v, ok := c.Number(i); ok {
		return formatKey(v), true
	}
	s, ok := c.Text(i)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func formatKey(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isWin(k string) bool {
	return k == "1" || strings.EqualFold(k, "true")
}

// WinLossMix counts rows per outcome value, ordered by value.
func WinLossMix(t *dataset.Table, r Roles) []CategoryCount {
	col, ok := t.Column(r.Outcome)
	if !ok {
		return nil
	}
	counts := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		if k, ok := key(col, i); ok {
			counts[k]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// RacesOverTime counts rows per date in ascending order. The date column must
// have been coerced by the cleaner; missing dates are skipped.
func RacesOverTime(t *dataset.Table, r Roles) []DateCount {
	col, ok := t.Column(r.Date)
	if !ok || col.Kind != dataset.KindDatetime {
		return nil
	}
	counts := map[time.Time]int{}
	for i := 0; i < col.Len(); i++ {
		if d, ok := col.Date(i); ok {
			counts[d]++
		}
	}
	out := make([]DateCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DateCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// winRows returns the indexes of rows whose outcome is a win.
func winRows(t *dataset.Table, r Roles) []int {
	col, ok := t.Column(r.Outcome)
	if !ok {
		return nil
	}
	var idx []int
	for i := 0; i < col.Len(); i++ {
		if k, ok := key(col, i); ok && isWin(k) {
			idx = append(idx, i)
		}
	}
	return idx
}

// WinsPerHorse counts winning rows per horse, most wins first and ties by id.
func WinsPerHorse(t *dataset.Table, r Roles) []CategoryCount {
	horse, ok := t.Column(r.Horse)
	if !ok {
		return nil
	}
	counts := map[string]int{}
	for _, i := range winRows(t, r) {
		if k, ok := key(horse, i); ok {
			counts[k]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// WeatherTrackPivot counts winning rows per (weather, track) pair.
func WeatherTrackPivot(t *dataset.Table, r Roles) *Pivot {
	weather, ok1 := t.Column(r.Weather)
	track, ok2 := t.Column(r.Track)
	if !ok1 || !ok2 {
		return &Pivot{}
	}
	type pair struct{ w, t string }
	counts := map[pair]int{}
	rows, cols := map[string]bool{}, map[string]bool{}
	for _, i := range winRows(t, r) {
		w, ok := key(weather, i)
		if !ok {
			continue
		}
		tr, ok := key(track, i)
		if !ok {
			continue
		}
		counts[pair{w, tr}]++
		rows[w] = true
		cols[tr] = true
	}
	p := &Pivot{Rows: sortedKeys(rows), Cols: sortedKeys(cols)}
	p.Cells = make([][]int, len(p.Rows))
	for i, w := range p.Rows {
		p.Cells[i] = make([]int, len(p.Cols))
		for j, tr := range p.Cols {
			p.Cells[i][j] = counts[pair{w, tr}]
		}
	}
	return p
}

// WeightsByOutcome groups weights by outcome value, ordered by value.
func WeightsByOutcome(t *dataset.Table, r Roles) []OutcomeValues {
	outcome, ok1 := t.Column(r.Outcome)
	weight, ok2 := t.Column(r.Weight)
	if !ok1 || !ok2 {
		return nil
	}
	groups := map[string][]float64{}
	for i := 0; i < outcome.Len(); i++ {
		k, ok := key(outcome, i)
		if !ok {
			continue
		}
		if v, ok := weight.Number(i); ok {
			groups[k] = append(groups[k], v)
		}
	}
	names := make([]string, 0, len(groups))
	for k := range groups {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]OutcomeValues, 0, len(names))
	for _, k := range names {
		out = append(out, OutcomeValues{Outcome: k, Values: groups[k]})
	}
	return out
}

// WinnerWeights returns the weights of winning rows.
func WinnerWeights(t *dataset.Table, r Roles) []float64 {
	weight, ok := t.Column(r.Weight)
	if !ok {
		return nil
	}
	var out []float64
	for _, i := range winRows(t, r) {
		if v, ok := weight.Number(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Aggregates bundles every grouped view the renderer draws.
type Aggregates struct {
	WinLoss       []CategoryCount
	RacesOverTime []DateCount
	WinsPerHorse  []CategoryCount
	WeatherTrack  *Pivot
	WeightsByWon  []OutcomeValues
	WinnerWeights []float64
}

// Aggregate computes all aggregates over a cleaned table.
func Aggregate(t *dataset.Table, r Roles) *Aggregates {
	return &Aggregates{
		WinLoss:       WinLossMix(t, r),
		RacesOverTime: RacesOverTime(t, r),
		WinsPerHorse:  WinsPerHorse(t, r),
		WeatherTrack:  WeatherTrackPivot(t, r),
		WeightsByWon:  WeightsByOutcome(t, r),
		WinnerWeights: WinnerWeights(t, r),
	}
}

// Empty lists the names of aggregates that came out empty.
func (a *Aggregates) Empty() []string {
	var out []string
	if len(a.WinLoss) == 0 {
		out = append(out, "win_loss")
	}
	if len(a.RacesOverTime) == 0 {
		out = append(out, "races_over_time")
	}
	if len(a.WinsPerHorse) == 0 {
		out = append(out, "wins_per_horse")
	}
	if a.WeatherTrack.Empty() {
		out = append(out, "weather_track")
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
