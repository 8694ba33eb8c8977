package flightmatrix

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a required input path does not exist
	ErrNotFound = errors.New("not found")
	// ErrMissingColumn is returned when a table lacks a required column
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedRow is returned for a row that cannot be parsed
	ErrMalformedRow = errors.New("malformed row")
)

// FileError is fatal: a required input could not be read, or an output could
// not be written. Op is "open", "read" or "write".
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// RowError describes a single bad row. Readers count these and carry on.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// IsRowError is true for per-row failures, which never abort a run.
func IsRowError(err error) bool {
	var re *RowError
	return errors.As(err, &re)
}
