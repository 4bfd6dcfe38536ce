package dataset

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check-level errors (column not found, schema mismatch)
// degrade a single check; ErrMalformedInput aborts the whole run.
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrMalformedInput = errors.New("malformed input")
)

// ColumnNotFoundError names the table and column a lookup failed on.
type ColumnNotFoundError struct {
	Table  string
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in %s", e.Column, e.Table)
}

func (e *ColumnNotFoundError) Unwrap() error { return ErrColumnNotFound }

// MalformedInputError describes a structural defect in a loaded table.
type MalformedInputError struct {
	Table  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input %s: %s", e.Table, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

// SchemaMismatchf returns an error wrapping ErrSchemaMismatch.
func SchemaMismatchf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, fmt.Sprintf(format, args...))
}
