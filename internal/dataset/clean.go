package dataset

import (
	"database/sql"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CleanOptions configures the cleaning pass.
type CleanOptions struct {
	// DropColumns are removed when present; absent names are ignored.
	DropColumns []string
	// DateColumn is coerced to a date column. Empty disables date coercion.
	DateColumn string
	// DateLayouts are tried in order for each date cell.
	DateLayouts []string
	// NumericColumns are coerced from text to float.
	NumericColumns []string
}

// DefaultCleanOptions mirrors the race dataset defaults.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		DropColumns:    []string{"Hood", "Eyecover", "EyeShield", "CheekPieces", "TongueStrap", "ScheduledTime"},
		DateColumn:     "MeetingDate",
		DateLayouts:    []string{dateLayout, time.RFC3339, dateTimeLayout, "2006-01-02 15:04", "01/02/2006", "02/01/2006", "2006/01/02", "02-Jan-2006", "2 Jan 2006"},
		NumericColumns: []string{"StartingPrice", "ForecastPrice"},
	}
}

// CleanReport records what the cleaning pass changed. Nothing here is fatal.
type CleanReport struct {
	Dropped []string `json:"dropped"`
	// Missing lists drop targets that were not in the table.
	Missing []string `json:"missing,omitempty"`
	// DateColumn is empty when the configured date column was absent.
	DateColumn   string `json:"date_column,omitempty"`
	DateFailures int    `json:"date_failures"`
	// NumericFailures counts non-empty cells per column that could not be read as numbers.
	NumericFailures map[string]int `json:"numeric_failures,omitempty"`
}

// Clean drops the configured columns and coerces the date and numeric columns.
// Malformed cells become missing values instead of failing. The input table is
// not modified. Clean is idempotent.
func Clean(t *Table, opt CleanOptions) (*Table, CleanReport) {
	rep := CleanReport{}

	drop := map[string]bool{}
	for _, name := range opt.DropColumns {
		if t.Has(name) {
			drop[name] = true
			rep.Dropped = append(rep.Dropped, name)
		} else {
			rep.Missing = append(rep.Missing, name)
		}
	}
	var keep []string
	for _, name := range t.Names() {
		if !drop[name] {
			keep = append(keep, name)
		}
	}

	var df dataframe.DataFrame
	switch {
	case len(keep) == 0:
		df = dataframe.DataFrame{}
	case len(drop) == 0:
		df = t.df.Copy()
	default:
		df = t.df.Select(keep)
	}
	out := newTable(t.Name, df, t.rows)
	for name, d := range t.dates {
		if !drop[name] {
			out.dates[name] = d
		}
	}
	if len(keep) == 0 {
		return out, rep
	}

	if opt.DateColumn != "" {
		if col, ok := out.Column(opt.DateColumn); ok {
			rep.DateColumn = opt.DateColumn
			dates, text, failures := coerceDates(col, opt.DateLayouts)
			rep.DateFailures = failures
			out.df = out.df.Mutate(series.New(text, series.String, opt.DateColumn))
			out.dates[opt.DateColumn] = dates
		}
	}

	for _, name := range opt.NumericColumns {
		col, ok := out.Column(name)
		if !ok || col.Kind.Numeric() || col.Kind == KindDatetime {
			continue
		}
		text, failures := coerceNumbers(col)
		if failures > 0 {
			if rep.NumericFailures == nil {
				rep.NumericFailures = map[string]int{}
			}
			rep.NumericFailures[name] = failures
		}
		out.df = out.df.Mutate(series.New(text, series.Float, name))
	}
	sort.Strings(rep.Missing)
	return out, rep
}

func coerceDates(col Column, layouts []string) ([]sql.NullTime, []string, int) {
	n := col.Len()
	dates := make([]sql.NullTime, n)
	text := make([]string, n)
	failures := 0
	for i := 0; i < n; i++ {
		text[i] = "NaN"
		v, ok := col.Text(i)
		if !ok {
			continue
		}
		ts, ok := parseDate(v, layouts)
		if !ok {
			failures++
			continue
		}
		dates[i] = sql.NullTime{Time: ts, Valid: true}
		text[i] = formatDate(ts)
	}
	return dates, text, failures
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	// the canonical forms written back by Clean
	for _, l := range []string{dateLayout, dateTimeLayout} {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func coerceNumbers(col Column) ([]string, int) {
	n := col.Len()
	text := make([]string, n)
	failures := 0
	for i := 0; i < n; i++ {
		text[i] = "NaN"
		v, ok := col.Text(i)
		if !ok {
			continue
		}
		f, ok := ParseNumber(v)
		if !ok {
			failures++
			continue
		}
		text[i] = formatFloat(f)
	}
	return text, failures
}

// ParseNumber reads plain numbers (dot or comma decimals, thousands
// separators) and fractional odds such as "5/2" or "11/4F". "Evens" is 1.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	switch strings.ToLower(raw) {
	case "evens", "evs", "evensf", "evsf":
		return 1, true
	}
	// favourite markers: F, JF, CF
	raw = strings.TrimRight(raw, "FJCfjc")
	if i := strings.IndexByte(raw, '/'); i > 0 {
		num, err1 := strconv.ParseFloat(strings.TrimSpace(raw[:i]), 64)
		den, err2 := strconv.ParseFloat(strings.TrimSpace(raw[i+1:]), 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0, false
		}
		return num / den, true
	}
	raw = strings.ReplaceAll(raw, "\u00a0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0 && cpos > dpos:
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case cpos >= 0 && dpos >= 0:
		raw = strings.ReplaceAll(raw, ",", "")
	case cpos >= 0:
		raw = strings.Replace(raw, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
