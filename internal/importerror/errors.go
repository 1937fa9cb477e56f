// Package importerror defines the error types shared by the CSV parser,
// the import pipeline and the storage layer.
package importerror

import (
	"errors"
	"fmt"
)

// ErrDuplicate is reported by the storage layer when an insert collides
// with an already stored fingerprint. The pipeline treats it as an
// informational skip, not a failure.
var ErrDuplicate = errors.New("transaction already stored")

// ParseError represents a malformed value in a single CSV row. Rows that
// raise it are skipped; the run continues.
type ParseError struct {
	Format string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s=%q: %v",
		e.Format, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageError represents a database failure: unavailable file, schema
// error, I/O failure or constraint violation. Except for the duplicate
// constraint it is fatal to the run.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err is a duplicate-fingerprint rejection.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
