// Package result defines APIError and the Result outcome type returned by
// application services.
//
// A Result is either a success carrying a value or a failure carrying at least
// one APIError. Business failures travel as Result values; unexpected faults
// travel as ordinary Go errors and are handled by the HTTP failure boundary.
package result

// Stable error codes.
const (
	CodeUnknownFailure     = "UNKNOWN_FAILURE"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidID          = "INVALID_ID_FORMAT"
	CodeQuoteNotFound      = "QUOTE_NOT_FOUND"
	CodeConflict           = "CONFLICT_ERROR"
	CodeDependencyExists   = "DEPENDENCY_EXISTS"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeDBUnavailable      = "DB_UNAVAILABLE"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// UnknownFailureMessage accompanies a synthesized CodeUnknownFailure error.
const UnknownFailureMessage = "An unknown failure occurred."

// APIError is a machine-readable error code with a human-readable message.
// Field is set only for per-field validation errors.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewError creates an APIError that is not tied to a field.
func NewError(code, message string) APIError {
	return APIError{Code: code, Message: message}
}

// NewFieldError creates an APIError for a single request field.
func NewFieldError(field, code, message string) APIError {
	return APIError{Code: code, Message: message, Field: field}
}

// UnknownFailure is the error substituted when a failure is built without errors.
func UnknownFailure() APIError {
	return NewError(CodeUnknownFailure, UnknownFailureMessage)
}

// Normalize returns a copy of errs, or a single UnknownFailure when errs is empty.
func Normalize(errs []APIError) []APIError {
	if len(errs) == 0 {
		return []APIError{UnknownFailure()}
	}

	out := make([]APIError, len(errs))
	copy(out, errs)

	return out
}

type state uint8

const (
	stateInvalid state = iota
	stateSuccess
	stateFailure
)

// Unit is the payload of results that carry no value.
type Unit struct{}

// Result is the outcome of an application operation.
// The zero value is neither a success nor a failure.
type Result[T any] struct {
	state  state
	value  T
	errors []APIError
}

// Success wraps value in a successful Result.
func Success[T any](value T) Result[T] {
	return Result[T]{state: stateSuccess, value: value}
}

// Ok returns a successful Result with no payload.
func Ok() Result[Unit] {
	return Success(Unit{})
}

// Failure builds a failed Result. Called with no errors it carries a single
// UNKNOWN_FAILURE error so a failure is never unexplained.
func Failure[T any](errs ...APIError) Result[T] {
	return Result[T]{state: stateFailure, errors: Normalize(errs)}
}

// IsSuccess reports whether r is a success.
func (r Result[T]) IsSuccess() bool {
	return r.state == stateSuccess
}

// IsFailure reports whether r is a failure.
func (r Result[T]) IsFailure() bool {
	return r.state == stateFailure
}

// Value returns the success payload. It panics on a failure or a zero Result;
// check IsSuccess first.
func (r Result[T]) Value() T {
	if r.state != stateSuccess {
		panic("result: Value called on a Result that is not a success")
	}

	return r.value
}

// Errors returns a copy of the failure errors, or nil for a success.
func (r Result[T]) Errors() []APIError {
	if r.state != stateFailure {
		return nil
	}

	out := make([]APIError, len(r.errors))
	copy(out, r.errors)

	return out
}

// FirstError returns the leading failure error. ok is false for a success.
func (r Result[T]) FirstError() (APIError, bool) {
	if r.state != stateFailure {
		return APIError{}, false
	}

	return r.errors[0], true
}

// Match calls onSuccess or onFailure depending on the arm of r.
func (r Result[T]) Match(onSuccess func(T), onFailure func([]APIError)) {
	switch r.state {
	case stateSuccess:
		onSuccess(r.value)
	case stateFailure:
		onFailure(r.Errors())
	default:
		panic("result: Match called on a zero Result")
	}
}

// Map transforms the payload of a successful Result and forwards failures unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.state == stateFailure {
		return Result[U]{state: stateFailure, errors: r.errors}
	}

	return Success(fn(r.Value()))
}
