package store

import (
	"errors"
	"fmt"
)

// ErrMalformedRow is wrapped by every RowError.
var ErrMalformedRow = errors.New("malformed row")

// RowError reports a persisted row that could not be decoded.
type RowError struct {
	Path string // table file
	Line int    // 1-based line number, 0 if unknown
	Msg  string
	Err  error // underlying CSV error, if any
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %s: %v", e.Path, e.Line, ErrMalformedRow, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, ErrMalformedRow, e.Msg)
}

// Unwrap lets errors.Is match both ErrMalformedRow and the CSV cause.
func (e *RowError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedRow, e.Err}
	}
	return []error{ErrMalformedRow}
}

// IsMalformed reports whether err came from a row that failed to decode.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedRow)
}
