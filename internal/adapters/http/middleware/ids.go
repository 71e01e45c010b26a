// Package middleware provides the gin middleware of the quotes API.
package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/idusortus/quotes-service/internal/platform/logging"
)

const (
	// HeaderRequestID identifies one request.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID follows a business transaction across services.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin context key of the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin context key of the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength bounds caller-supplied IDs before they reach logs and headers.
const maxIDLength = 128

// RequestID seeds the request context with logger and tags it with the
// request ID taken from X-Request-ID or generated. The ID is echoed back.
func RequestID(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger != nil {
			c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		}

		id := propagateID(c, HeaderRequestID, ContextKeyRequestID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// CorrelationID propagates X-Correlation-ID, starting a new one when the
// request is the origin of the transaction.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := propagateID(c, HeaderCorrelationID, ContextKeyCorrelationID)
		c.Request = c.Request.WithContext(logging.WithCorrelationID(c.Request.Context(), id))

		c.Next()
	}
}

// GetRequestID returns the request ID, or "" outside RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID, or "" outside CorrelationID.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

func propagateID(c *gin.Context, header, key string) string {
	id := c.GetHeader(header)
	if !validID(id) {
		id = uuid.NewString()
	}

	c.Set(key, id)
	c.Header(header, id)

	return id
}

// validID accepts non-empty printable ASCII up to maxIDLength.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}
