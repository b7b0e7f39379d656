package dataset

import (
	"errors"
	"fmt"
)

// ErrFileNotFound is returned by Load when the input path does not exist.
var ErrFileNotFound = errors.New("file not found")

// ParseError indicates the input is not a validly delimited table.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
