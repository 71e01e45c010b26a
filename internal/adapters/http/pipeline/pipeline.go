// Package pipeline composes API handlers from two stages: a validation gate
// that rejects bad request bodies before a handler runs, and a failure
// boundary that turns any fault escaping a handler into an error envelope.
//
//	engine.POST("/quotes", boundary.Wrap(pipeline.Validate(app.QuoteCreateRules, h.Create)))
package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/adapters/http/dto"
	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/app/validation"
)

// Gate messages.
const (
	ValidationFailedMessage = "One or more validation errors occurred."
	MalformedBodyMessage    = "Request body is malformed."
)

// HandlerFunc is a gin handler that reports faults by returning them.
// Expected outcomes are written as responses and never returned.
type HandlerFunc func(c *gin.Context) error

// Validate binds the JSON body into T and runs rules on it. Violations are
// answered with 400 and next is not called.
func Validate[T any](rules validation.Rules[T], next func(c *gin.Context, req T) error) HandlerFunc {
	return func(c *gin.Context) error {
		var req T

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.Error(ValidationFailedMessage,
				result.NewError(result.CodeValidationFailed, MalformedBodyMessage)))

			return nil
		}

		if errs := rules.Validate(req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, dto.Error(ValidationFailedMessage, errs...))
			return nil
		}

		return next(c, req)
	}
}
