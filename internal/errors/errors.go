// Package errors defines the base error taxonomy shared by all modules.
// Use cases return these (usually wrapped in a module sentinel) and the HTTP
// layer maps them onto status codes and OAuth error codes, so repositories
// never leak driver errors upward.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation, such as a scope name or
	// user email that already exists.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates valid credentials without sufficient permission.
	ErrForbidden = errors.New("forbidden")

	// ErrTransient indicates the underlying store was temporarily unavailable.
	// Unlike the errors above it is retryable and must never be conflated with
	// an access denial.
	ErrTransient = errors.New("transient store error")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to err while keeping the chain intact, so callers can
// still match the underlying sentinel with Is.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
