// Package errs defines the shared error values and types for lciafmt.
//
// Structural problems (missing columns, unknown identifiers, corrupt
// artifacts) fail the call that detects them. Data-sparsity conditions
// (unmapped flows, empty filter results, cache misses) are never errors:
// they surface as counts, booleans, or log entries.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMethod is returned when a method identifier matches no
	// record in the method registry.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrUnknownMappingSystem is returned when a named mapping system has
	// no registered provider.
	ErrUnknownMappingSystem = errors.New("unknown mapping system")

	// ErrInvalidArtifact is returned when a cached artifact fails
	// structural validation (bad magic, truncated sections, checksum
	// mismatch).
	ErrInvalidArtifact = errors.New("invalid artifact")

	// ErrNoSource is returned when a mapped method must be generated but
	// no raw method source is registered for it.
	ErrNoSource = errors.New("no method source registered")
)

// SchemaError reports required columns missing from an input table.
// It is fatal to the call that detects it and is not retried.
type SchemaError struct {
	// Table names the offending input ("factor table", "mapping table",
	// "endpoint table").
	Table string

	// Missing lists the required column names absent from the input.
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s is missing required columns: %s",
		e.Table, strings.Join(e.Missing, ", "))
}

// NewSchemaError creates a SchemaError for the named table.
func NewSchemaError(table string, missing []string) *SchemaError {
	return &SchemaError{Table: table, Missing: missing}
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
