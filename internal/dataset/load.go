package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// LoadOptions controls how a file is read.
type LoadOptions struct {
	// Delimiter for delimited text. If 0, detected from the extension and header line.
	Delimiter rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// Loader reads one file format into raw records, header first.
type Loader interface {
	CanLoad(path string) bool
	Records(path string, opt LoadOptions) ([][]string, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(delimitedLoader{})
	Register(xlsxLoader{})
}

// Load reads a tabular file into a Table. Formats are chosen by extension;
// unknown extensions are read as delimited text.
func Load(path string, opt LoadOptions) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}
	var ld Loader = delimitedLoader{}
	for _, l := range registry {
		if l.CanLoad(path) {
			ld = l
			break
		}
	}
	records, err := ld.Records(path, opt)
	if err != nil {
		return nil, err
	}
	return FromRecords(filepath.Base(path), records)
}

// FromRecords builds a Table from raw records whose first entry is the header.
// Column types are inferred from the data: all-integer columns become int,
// numeric columns float, true/false columns bool, everything else string.
func FromRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return newTable(name, dataframe.DataFrame{}, 0), nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	ncol := len(header)
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, ncol)
		copy(row, rec)
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		cols := make([]series.Series, ncol)
		for i, h := range header {
			cols[i] = series.New([]string{}, series.String, h)
		}
		df := dataframe.New(cols...)
		if df.Err != nil {
			return nil, fmt.Errorf("build table: %w", df.Err)
		}
		return newTable(name, df, 0), nil
	}

	all := make([][]string, 0, len(rows)+1)
	all = append(all, header)
	all = append(all, rows...)
	df := dataframe.LoadRecords(all,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("build table: %w", df.Err)
	}
	return newTable(name, df, df.Nrow()), nil
}
