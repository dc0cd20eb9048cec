package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrMalformedHeader = errors.New("malformed header")
	ErrSchemaViolation = errors.New("schema violation")
	ErrNotFound        = errors.New("record not found")
)

// HeaderError reports why a header could not be decoded.
// It matches ErrMalformedHeader with errors.Is.
type HeaderError struct {
	Line   int // 1-based line of the candidate header, 0 if none was found
	Reason string
	Err    error // underlying decode error, if any
}

func (e *HeaderError) Error() string {
	msg := "malformed header"
	if e.Line > 0 {
		msg = fmt.Sprintf("malformed header (line %d)", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *HeaderError) Is(target error) bool { return target == ErrMalformedHeader }

func (e *HeaderError) Unwrap() error { return e.Err }

// SchemaError reports the field that failed validation.
// It matches ErrSchemaViolation with errors.Is.
type SchemaError struct {
	ID     string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("schema violation on %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema violation in %s on %q: %s", e.ID, e.Field, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaViolation }

// ConflictWarning is attached to an ingest result when an existing record was
// replaced. It is informational and never returned as an error.
type ConflictWarning struct {
	ID       string
	Previous Record
}

func (w ConflictWarning) String() string {
	return fmt.Sprintf("record %s replaced (previous title %q)", w.ID, w.Previous.Title)
}
