package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}

// Records reads the selected sheet (first sheet by default). Cells are read as
// their formatted text, so dates keep the layout shown in the workbook.
func (xlsxLoader) Records(path string, opt LoadOptions) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("sheet %q not found; available: %s", opt.Sheet, strings.Join(sheets, ", "))}
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("read sheet %s: %w", sheet, err)}
	}
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows+1 {
		rows = rows[:opt.MaxRows+1]
	}
	if len(rows) == 0 {
		return rows, nil
	}
	ncol := len(rows[0])
	for i := 1; i < len(rows); i++ {
		if rows[i], err = fitRow(path, i+1, rows[i], ncol); err != nil {
			return nil, err
		}
	}
	return rows, nil
}
