// Package common defines shared constants and sentinel errors used across the
// server, the HTTP layer and the admin tooling. Callers should use errors.Is
// to match these values.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Authentication errors. Both kinds are reported with the same shape so the
	// caller cannot learn whether the email is registered.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLockedOut          = errors.New("account temporarily locked")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Authorization errors.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries per-field messages for malformed input.
// It matches ErrValidation via errors.Is.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records msg for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no messages were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e if it holds messages and nil otherwise.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], ", ")))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
