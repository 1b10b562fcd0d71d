// Package services holds the business workflows: accounts, event lifecycle,
// registrations, and the attendee-cache reconciler. Handlers translate the
// sentinel errors below into HTTP responses; anything else is a persistence
// failure and surfaces as a generic server error.
package services

import (
	"errors"
	"strings"
)

var ErrAccountExists = errors.New("account already exists")

var ErrInvalidCredentials = errors.New("invalid credentials")

var ErrAccountNotFound = errors.New("account not found")

var ErrEventNotFound = errors.New("event not found")

var ErrAlreadyRegistered = errors.New("already registered for this event")

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Fields, "; ")
}
