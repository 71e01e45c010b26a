// Package dto defines the JSON envelope every API response is wrapped in and
// the query parameter bindings of the quote endpoints.
package dto

import (
	"github.com/idusortus/quotes-service/internal/app/result"
)

// Default envelope messages.
const (
	DefaultSuccessMessage = "Request successful."
	DefaultErrorMessage   = "An error occurred."
)

// Response is the envelope for every API response. Errors is never null.
type Response[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []result.APIError `json:"errors"`
	Data    *T                `json:"data,omitempty"`
}

// OK wraps data in a success envelope.
func OK[T any](data T, message string) Response[T] {
	return Response[T]{
		Success: true,
		Message: orDefault(message, DefaultSuccessMessage),
		Errors:  []result.APIError{},
		Data:    &data,
	}
}

// OKEmpty is a success envelope without data.
func OKEmpty(message string) Response[any] {
	return Response[any]{
		Success: true,
		Message: orDefault(message, DefaultSuccessMessage),
		Errors:  []result.APIError{},
	}
}

// Error is a failure envelope. Without errors it carries a single UNKNOWN_FAILURE,
// the same substitution result.Failure makes.
func Error(message string, errs ...result.APIError) Response[any] {
	return failure[any](message, errs)
}

// FromResult converts a service outcome into an envelope.
func FromResult[T any](res result.Result[T], successMessage, failureMessage string) Response[T] {
	if res.IsSuccess() {
		return OK(res.Value(), successMessage)
	}

	return failure[T](failureMessage, res.Errors())
}

func failure[T any](message string, errs []result.APIError) Response[T] {
	return Response[T]{
		Success: false,
		Message: orDefault(message, DefaultErrorMessage),
		Errors:  result.Normalize(errs),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
