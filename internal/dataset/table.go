package dataset

import (
	"database/sql"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Kind is the inferred or coerced type of a column.
type Kind string

const (
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindBool     Kind = "bool"
	KindString   Kind = "string"
	KindDatetime Kind = "datetime"
)

// Numeric reports whether values of this kind take part in numeric statistics.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// nanValues are read as missing cells by the loaders.
var nanValues = []string{"", "NA", "NaN", "nan", "null", "NULL", "<nil>"}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Table is an in-memory race table backed by a gota DataFrame. Columns that
// were coerced to dates carry a typed vector next to the frame; the frame
// holds their ISO text.
type Table struct {
	Name  string
	df    dataframe.DataFrame
	rows  int
	dates map[string][]sql.NullTime
}

func newTable(name string, df dataframe.DataFrame, rows int) *Table {
	return &Table{Name: name, df: df, rows: rows, dates: map[string][]sql.NullTime{}}
}

// Frame exposes the underlying DataFrame.
func (t *Table) Frame() dataframe.DataFrame { return t.df }

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.df.Names()) }

// Names returns column names in table order.
func (t *Table) Names() []string { return t.df.Names() }

// Has reports whether a column exists.
func (t *Table) Has(name string) bool { return t.index(name) >= 0 }

func (t *Table) index(name string) int {
	for i, n := range t.df.Names() {
		if n == name {
			return i
		}
	}
	return -1
}

// Kind returns the column kind; ok is false when the column does not exist.
func (t *Table) Kind(name string) (Kind, bool) {
	idx := t.index(name)
	if idx < 0 {
		return "", false
	}
	if _, ok := t.dates[name]; ok {
		return KindDatetime, true
	}
	return kindOf(t.df.Types()[idx]), true
}

// Column looks up a column by name. Missing columns are reported through ok
// rather than an error so callers can treat them as optional.
func (t *Table) Column(name string) (Column, bool) {
	kind, ok := t.Kind(name)
	if !ok {
		return Column{}, false
	}
	return Column{Name: name, Kind: kind, s: t.df.Col(name), dates: t.dates[name]}, true
}

// Columns returns every column in table order.
func (t *Table) Columns() []Column {
	names := t.Names()
	out := make([]Column, 0, len(names))
	for _, n := range names {
		if c, ok := t.Column(n); ok {
			out = append(out, c)
		}
	}
	return out
}

// Records returns the header followed by every row as text, with missing
// cells rendered as empty strings.
func (t *Table) Records() [][]string {
	return t.head(t.rows)
}

// Head returns the header and the first n rows.
func (t *Table) Head(n int) [][]string {
	return t.head(n)
}

func (t *Table) head(n int) [][]string {
	if n > t.rows {
		n = t.rows
	}
	cols := t.Columns()
	out := make([][]string, 0, n+1)
	header := make([]string, len(cols))
	for j, c := range cols {
		header[j] = c.Name
	}
	out = append(out, header)
	for i := 0; i < n; i++ {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j], _ = c.Text(i)
		}
		out = append(out, row)
	}
	return out
}

// WriteCSV writes the table as comma-separated text with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	if t.Cols() == 0 {
		return nil
	}
	return t.df.WriteCSV(w)
}

func kindOf(t series.Type) Kind {
	switch t {
	case series.Int:
		return KindInt
	case series.Float:
		return KindFloat
	case series.Bool:
		return KindBool
	default:
		return KindString
	}
}

// Column is a read-only view of one table column.
type Column struct {
	Name  string
	Kind  Kind
	s     series.Series
	dates []sql.NullTime
}

// Len returns the number of cells.
func (c Column) Len() int {
	if c.Kind == KindDatetime {
		return len(c.dates)
	}
	return c.s.Len()
}

// IsNull reports whether cell i is missing.
func (c Column) IsNull(i int) bool {
	if c.Kind == KindDatetime {
		return !c.dates[i].Valid
	}
	e := c.s.Elem(i)
	if e.IsNA() {
		return true
	}
	if c.Kind == KindFloat {
		return math.IsNaN(e.Float())
	}
	return false
}

// Text returns cell i as text; ok is false for missing cells.
func (c Column) Text(i int) (string, bool) {
	if c.IsNull(i) {
		return "", false
	}
	switch c.Kind {
	case KindDatetime:
		return formatDate(c.dates[i].Time), true
	case KindFloat:
		return formatFloat(c.s.Elem(i).Float()), true
	default:
		return c.s.Elem(i).String(), true
	}
}

// Number returns cell i as a float; ok is false for missing or non-numeric cells.
func (c Column) Number(i int) (float64, bool) {
	if !c.Kind.Numeric() || c.IsNull(i) {
		return 0, false
	}
	f := c.s.Elem(i).Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Date returns cell i as a time; ok is false for missing cells or non-date columns.
func (c Column) Date(i int) (time.Time, bool) {
	if c.Kind != KindDatetime || !c.dates[i].Valid {
		return time.Time{}, false
	}
	return c.dates[i].Time, true
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
