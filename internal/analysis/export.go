package analysis

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name string
	rows [][]interface{}
}

// ExportXLSX writes the profile and aggregates as a workbook with one sheet
// per view. agg may be nil when only the profile is wanted.
func ExportXLSX(w io.Writer, rep *Report, agg *Aggregates) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []sheet{
		{"Schema", schemaRows(rep)},
		{"Summary", summaryRows(rep)},
	}
	if agg != nil {
		sheets = append(sheets,
			sheet{"WinLoss", countRows("Won", agg.WinLoss)},
			sheet{"RacesOverTime", dateRows(agg.RacesOverTime)},
			sheet{"WinsPerHorse", countRows("HorseID", agg.WinsPerHorse)},
			sheet{"WeatherTrack", pivotRows(agg.WeatherTrack)},
		)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			row := row
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", s.name, r+1, err)
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func schemaRows(rep *Report) [][]interface{} {
	rows := [][]interface{}{{"column", "kind", "non_null", "null", "unique"}}
	for _, c := range rep.Cols {
		rows = append(rows, []interface{}{c.Name, string(c.Kind), c.NonNull, c.Missing, c.Unique})
	}
	return rows
}

func summaryRows(rep *Report) [][]interface{} {
	rows := [][]interface{}{{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
	for _, c := range rep.Numeric() {
		s := c.Numeric
		rows = append(rows, []interface{}{c.Name, s.Count, cellFloat(s.Mean), cellFloat(s.Std),
			cellFloat(s.Min), cellFloat(s.Q25), cellFloat(s.Median), cellFloat(s.Q75), cellFloat(s.Max)})
	}
	return rows
}

func countRows(label string, counts []CategoryCount) [][]interface{} {
	rows := [][]interface{}{{label, "count"}}
	for _, c := range counts {
		rows = append(rows, []interface{}{c.Value, c.Count})
	}
	return rows
}

func dateRows(counts []DateCount) [][]interface{} {
	rows := [][]interface{}{{"date", "count"}}
	for _, c := range counts {
		rows = append(rows, []interface{}{c.Date.Format("2006-01-02"), c.Count})
	}
	return rows
}

func pivotRows(p *Pivot) [][]interface{} {
	header := []interface{}{"Weather"}
	if p == nil {
		return [][]interface{}{header}
	}
	for _, c := range p.Cols {
		header = append(header, c)
	}
	rows := [][]interface{}{header}
	for i, r := range p.Rows {
		row := []interface{}{r}
		for _, v := range p.Cells[i] {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

// cellFloat leaves NaN and Inf cells blank; excelize cannot store them.
func cellFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}
