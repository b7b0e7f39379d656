package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type delimitedLoader struct{}

func (delimitedLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (delimitedLoader) Records(path string, opt LoadOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	br := bufio.NewReader(f)

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path, br)
	}
	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	maxRows := opt.MaxRows
	var out [][]string
	ncol := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &ParseError{Path: path, Line: line, Err: err}
		}
		if len(out) == 0 {
			ncol = len(rec)
			out = append(out, rec)
			continue
		}
		line, _ := r.FieldPos(0)
		rec, err = fitRow(path, line, rec, ncol)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		if maxRows > 0 && len(out)-1 >= maxRows {
			break
		}
	}
	return out, nil
}

// fitRow cuts trailing empty cells beyond the header width. Any other extra
// cell makes the table ragged.
func fitRow(path string, line int, rec []string, ncol int) ([]string, error) {
	if len(rec) <= ncol {
		return rec, nil
	}
	for _, v := range rec[ncol:] {
		if strings.TrimSpace(v) != "" {
			return nil, &ParseError{Path: path, Line: line, Err: fmt.Errorf("row has %d fields, header has %d", len(rec), ncol)}
		}
	}
	return rec[:ncol], nil
}

// sniffDelimiter picks the delimiter from the extension, then from the most
// frequent candidate in the header line. Defaults to comma.
func sniffDelimiter(path string, br *bufio.Reader) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	head, _ := br.Peek(4096)
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', 0
	for _, c := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}
