package csvdb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceNotFound is returned by Open when the file doesn't exist
	// and no initial keys were given to create it
	ErrSourceNotFound = errors.New("source not found")

	// ErrSchemaMismatch is returned when fields don't match the schema exactly
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrIndexOutOfRange is returned for a row index outside of the table
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownColumn is returned for a column name that is not in the schema
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidSchema is returned for empty or duplicate column names
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrUnsupportedValue is returned for values that can't be stored in a cell
	ErrUnsupportedValue = errors.New("unsupported value")
)

// SchemaMismatchError lists the keys that made fields not match the schema.
// It matches ErrSchemaMismatch with errors.Is.
type SchemaMismatchError struct {
	// Missing are schema columns without a value, in schema order
	Missing []string
	// Unknown are keys not in the schema, sorted
	Unknown []string
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown: "+strings.Join(e.Unknown, ", "))
	}
	return fmt.Sprintf("%s (%s)", ErrSchemaMismatch, strings.Join(parts, "; "))
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// IndexError matches ErrIndexOutOfRange with errors.Is.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d, table has %d rows", ErrIndexOutOfRange, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// ColumnError matches ErrUnknownColumn with errors.Is.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: '%s'", ErrUnknownColumn, e.Column)
}

func (e *ColumnError) Unwrap() error { return ErrUnknownColumn }
