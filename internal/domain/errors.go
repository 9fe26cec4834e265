package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during volume estimation.
var (
	// ErrInvalidConfiguration indicates that session or geometry
	// configuration is invalid or incomplete. Configuration errors fail
	// fast, before any sampling starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSessionFinished indicates an operation on a session whose phase
	// is already terminal.
	ErrSessionFinished = errors.New("session already finished")

	// ErrSessionRunning indicates a second concurrent start of the same
	// session.
	ErrSessionRunning = errors.New("session already running")

	// ErrUnknownDomain indicates a reference to a domain id that is not
	// tracked by the session.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrSnapshotNotFound indicates that a persisted snapshot does not
	// exist in the store.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrClassifier indicates the classification oracle failed on a
	// point. A misbehaving classifier is a programming error, not a
	// transient condition, so the session propagates it without retry.
	ErrClassifier = errors.New("classifier failure")
)

// ValidationError represents one or more validation failures for a
// named entity, collected so callers see every problem at once.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap lets errors.Is match ValidationError against
// ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
