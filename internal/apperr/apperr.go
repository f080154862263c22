// internal/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when the bearer token is missing or wrong.
// No further detail is ever attached to it.
var ErrUnauthorized = errors.New("unauthorized")

// FieldError describes a single failed field in an ingestion payload.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError aggregates every schema violation found in a payload so the
// caller can fix them all before retrying.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidation builds a ValidationError with a single field entry.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// IntegrityError marks a payload that is internally inconsistent, e.g. a repo
// referencing a different project than the one carried in the same payload.
// It is detected before any write, never left to store foreign-key failures.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "payload integrity: " + e.Reason
}

// StoreError wraps any failure of the transactional reconciliation. The whole
// transaction is rolled back before it is returned.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
