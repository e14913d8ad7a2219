package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
)

var (
	ErrSlotAlreadyExists = errors.New("slot already exists")
	ErrSlotUnavailable   = errors.New("slot is no longer available")
	ErrEmailTaken        = errors.New("email is already registered")
)

var (
	ErrForbidden          = errors.New("user does not have permission for this action")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoRole             = errors.New("no role found for this user")
)

var (
	ErrValidation = errors.New("validation error")
)

// ValidationError carries a message per offending field. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
