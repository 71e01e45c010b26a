// Package domain contains the quote and user entities and the errors storage
// adapters use to report expected outcomes.
// Domain errors are infrastructure-agnostic: adapters translate driver errors
// into them and the application layer turns them into Result failures.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness or reference constraint blocked a write.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable indicates a required dependency could not be reached.
	ErrUnavailable = errors.New("unavailable")

	// ErrUnauthorized indicates a credential or token was rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictKind distinguishes the constraint behind a ConflictError.
type ConflictKind int

const (
	// ConflictDuplicate means a unique constraint was violated.
	ConflictDuplicate ConflictKind = iota

	// ConflictReference means another record still references the target.
	ConflictReference
)

// ConflictError provides context for conflict errors.
type ConflictError struct {
	Entity string
	Kind   ConflictKind
	Reason string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewDuplicateError reports a unique constraint violation.
func NewDuplicateError(entity, reason string) error {
	return &ConflictError{Entity: entity, Kind: ConflictDuplicate, Reason: reason}
}

// NewReferenceError reports a write blocked by a dependent record.
func NewReferenceError(entity, reason string) error {
	return &ConflictError{Entity: entity, Kind: ConflictReference, Reason: reason}
}

// UnavailableError provides context for unavailable errors.
// Cause keeps the driver error so callers can inspect it further down the chain.
type UnavailableError struct {
	Service string
	Reason  string
	Cause   error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("service %q unavailable", e.Service)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *UnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUnavailable}
	}

	return []error{ErrUnavailable, e.Cause}
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string, cause error) error {
	return &UnavailableError{Service: service, Reason: reason, Cause: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsReferenceConflict reports whether err is a conflict caused by a dependent record.
func IsReferenceConflict(err error) bool {
	var conflict *ConflictError

	return errors.As(err, &conflict) && conflict.Kind == ConflictReference
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsUnauthorized checks if an error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
