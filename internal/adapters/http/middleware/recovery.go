package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/adapters/http/dto"
	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/platform/logging"
	"github.com/idusortus/quotes-service/internal/platform/telemetry"
)

// Recovery catches panics outside the API boundary, in middleware or the
// probe handlers, and answers with a 500 envelope. It runs first in the chain.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			if r == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(r)
			}

			ctx := c.Request.Context()

			logging.FromContextOr(ctx, logger).ErrorContext(ctx, "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", telemetry.TraceID(ctx)),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Error(
				"An unexpected internal server error occurred.",
				result.NewError(result.CodeInternal, "Please try again later. If the problem persists, contact support."),
			))
		}()

		c.Next()
	}
}
