package dto

import (
	"net/http"

	"github.com/idusortus/quotes-service/internal/app/result"
)

// StatusFromCode maps an error code to the HTTP status it is reported with.
func StatusFromCode(code string) int {
	switch code {
	case result.CodeValidationFailed, result.CodeInvalidID:
		return http.StatusBadRequest
	case result.CodeInvalidCredentials, result.CodeUnauthorized:
		return http.StatusUnauthorized
	case result.CodeQuoteNotFound:
		return http.StatusNotFound
	case result.CodeConflict, result.CodeDependencyExists, result.CodeDuplicateEmail:
		return http.StatusConflict
	case result.CodeDBUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FailureStatus returns the status for a failed outcome: that of its first error.
func FailureStatus(errs []result.APIError) int {
	if len(errs) == 0 {
		return http.StatusInternalServerError
	}

	return StatusFromCode(errs[0].Code)
}
