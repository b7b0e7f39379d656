package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/raceda/internal/dataset"
)

// Options controls profiling behavior.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		Correlations:     true,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly profile of a race table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	Corr     *CorrMatrix
}

// ColumnSummary captures dtype, null and cardinality counts per column.
type ColumnSummary struct {
	Name    string
	Kind    dataset.Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric is set for int and float columns only.
	Numeric *NumSummary
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
// Undefined coefficients (constant or too-sparse columns) are NaN.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Profile computes shape, dtypes, null counts, cardinality, numeric summaries
// and optionally correlations. It never modifies t.
func Profile(t *dataset.Table, opt Options) *Report {
	rep := &Report{Name: t.Name, Rows: t.Rows()}
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	if h := t.Head(sampleRows); len(h) > 1 {
		rep.Samples = h[1:]
	}

	cols := t.Columns()
	var numeric []dataset.Column
	for _, c := range cols {
		s := ColumnSummary{Name: c.Name, Kind: c.Kind}
		seen := map[string]struct{}{}
		var vals []float64
		cats := map[string]int{}
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				s.Missing++
				continue
			}
			s.NonNull++
			txt, _ := c.Text(i)
			seen[txt] = struct{}{}
			if c.Kind.Numeric() {
				if v, ok := c.Number(i); ok {
					vals = append(vals, v)
				}
			} else if c.Kind == dataset.KindString && len(txt) <= 64 {
				cats[txt]++
			}
		}
		s.Unique = len(seen)
		if c.Kind.Numeric() {
			d := Describe(vals)
			s.Numeric = &d
			numeric = append(numeric, c)
			if opt.Outliers && len(vals) >= 8 {
				thr := opt.OutlierThreshold
				if thr <= 0 {
					thr = 3.5
				}
				s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(vals, thr)
				s.OutlierThreshold = thr
			}
		}
		if len(cats) > 0 {
			s.TopValues = topValues(cats, 8)
		}
		if s.NonNull == 0 && rep.Rows > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s is entirely null", c.Name))
		}
		rep.Cols = append(rep.Cols, s)
	}

	if opt.Correlations && len(numeric) >= 2 {
		rep.Corr = correlate(numeric, t.Rows())
	}
	return rep
}

// Numeric returns the summaries of numeric columns only.
func (r *Report) Numeric() []ColumnSummary {
	var out []ColumnSummary
	for _, c := range r.Cols {
		if c.Numeric != nil {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the summary for name.
func (r *Report) Column(name string) (ColumnSummary, bool) {
	for _, c := range r.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

// NullCounts maps column name to missing-value count.
func (r *Report) NullCounts() map[string]int {
	out := make(map[string]int, len(r.Cols))
	for _, c := range r.Cols {
		out[c.Name] = c.Missing
	}
	return out
}

// Cardinality maps column name to distinct non-null value count.
func (r *Report) Cardinality() map[string]int {
	out := make(map[string]int, len(r.Cols))
	for _, c := range r.Cols {
		out[c.Name] = c.Unique
	}
	return out
}

func topValues(cats map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// correlate builds the pairwise-complete Pearson matrix. The diagonal is 1
// for columns that vary and NaN for constant or near-empty ones.
func correlate(cols []dataset.Column, rows int) *CorrMatrix {
	n := len(cols)
	acc := make([][]*pearson, n)
	for a := range acc {
		acc[a] = make([]*pearson, a)
		for b := range acc[a] {
			acc[a][b] = &pearson{}
		}
	}
	self := make([]pearson, n)
	x := make([]float64, n)
	has := make([]bool, n)
	for i := 0; i < rows; i++ {
		for a, c := range cols {
			x[a], has[a] = c.Number(i)
			if has[a] {
				self[a].add(x[a], x[a])
			}
		}
		for a := 1; a < n; a++ {
			if !has[a] {
				continue
			}
			for b := 0; b < a; b++ {
				if has[b] {
					acc[a][b].add(x[a], x[b])
				}
			}
		}
	}
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for a, c := range cols {
		m.Columns[a] = c.Name
		m.Values[a] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := 0; b < a; b++ {
			r, ok := acc[a][b].r()
			if !ok {
				r = math.NaN()
			}
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
		if _, ok := self[a].r(); ok {
			m.Values[a][a] = 1
		} else {
			m.Values[a][a] = math.NaN()
		}
	}
	return m
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, null %d (%.1f%%), unique %d)",
			safeName(c.Name), c.Kind, c.NonNull, c.Missing, missPct, c.Unique))
		if c.OutlierThreshold > 0 {
			b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
		}
		if len(c.TopValues) > 0 {
			b.WriteString("; top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
		}
		b.WriteString("\n")
	}

	if num := r.Numeric(); len(num) > 0 {
		b.WriteString("\n[SUMMARY STATISTICS]\n")
		b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, c := range num {
			s := c.Numeric
			b.WriteString(fmt.Sprintf("| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				safeName(c.Name), s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max))
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if v := r.Corr.Values[i][j]; !math.IsNaN(v) {
					pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: v})
				}
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai := math.Abs(pairs[i].R)
			aj := math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				b.WriteString(safeVal(truncate(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
