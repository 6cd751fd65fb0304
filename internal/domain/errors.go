package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during scoring and game operations.
var (
	// ErrNoActiveTeam indicates that an operation requiring an active team
	// was invoked before any team buzzed in or was selected.
	ErrNoActiveTeam = errors.New("no active team")

	// ErrWrongRoundType indicates that an operation was invoked during a
	// round type that does not support it.
	ErrWrongRoundType = errors.New("wrong round type")

	// ErrQuestionMismatch indicates that vote evidence references a
	// different question than the one being scored.
	ErrQuestionMismatch = errors.New("question id mismatch")

	// ErrAnswerNotFound indicates that a referenced answer id is absent
	// from the loaded answer set.
	ErrAnswerNotFound = errors.New("answer not found")

	// ErrTeamIndexRange indicates a team index outside {0, 1}.
	ErrTeamIndexRange = errors.New("team index out of range")
)

// ValidationError represents a structural precondition failure on input
// data, such as ballots referencing the wrong question. It is always fatal
// to the call; proceeding would silently misattribute votes or scores.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation failure messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new failure message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation failures.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// InvalidStateError represents an operation invoked in a game state that
// violates its precondition, such as setting strikes without an active
// team. It is thrown synchronously so the caller can surface it; the
// moderator surface is expected to make these preconditions unreachable,
// so an occurrence indicates a caller bug rather than a user error.
type InvalidStateError struct {
	// Operation identifies the mutator that was rejected.
	Operation string

	// Err is the underlying precondition that failed.
	Err error
}

// Error implements the error interface for InvalidStateError.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: operation=%s, err=%v", e.Operation, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *InvalidStateError) Unwrap() error { return e.Err }

// NewInvalidStateError creates a new InvalidStateError with the given details.
func NewInvalidStateError(operation string, err error) *InvalidStateError {
	return &InvalidStateError{Operation: operation, Err: err}
}

// NotFoundError represents a reference to an id that does not exist, such
// as revealing an answer that is not on the board. Unknown answer ids are
// fatal because they indicate a data desync that must not be masked.
type NotFoundError struct {
	// Kind names the referenced entity type, e.g. "answer" or "team".
	Kind string

	// ID is the missing identifier.
	ID string

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *NotFoundError) Unwrap() error { return e.Err }

// NewNotFoundError creates a new NotFoundError for the given entity kind and id.
func NewNotFoundError(kind, id string, err error) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id, Err: err}
}
