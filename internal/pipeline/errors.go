package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds returned by the Loader. Callers match them with errors.Is.
var (
	ErrFetchTimeout = errors.New("fetch timed out")
	ErrFetch        = errors.New("fetch failed")
	ErrParse        = errors.New("spreadsheet parse error")

	// ErrFilter is returned when a filter asks for something the data
	// cannot answer, such as a date range over undated rows
	ErrFilter = errors.New("invalid filter")
)

// ParseError reports where in the workbook parsing failed
type ParseError struct {
	Row    int    // 1-based spreadsheet row, 0 when not row specific
	Column string // header name, empty when not column specific
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%v: row %d column %q value %q: %v", ErrParse, e.Row, e.Column, e.Value, e.Err)
	case e.Column != "":
		return fmt.Sprintf("%v: column %q: %v", ErrParse, e.Column, e.Err)
	default:
		return fmt.Sprintf("%v: %v", ErrParse, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes every ParseError match ErrParse
func (e *ParseError) Is(target error) bool { return target == ErrParse }
