package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/platform/logging"
	"github.com/idusortus/quotes-service/internal/platform/telemetry"
)

// DefaultSkipPrefixes keeps the probes out of the access log.
var DefaultSkipPrefixes = []string{"/-/"}

// Logging writes one access log line per request, at WARN for 4xx and ERROR
// for 5xx. It runs after the telemetry middleware so the trace ID is known.
func Logging(logger *slog.Logger, skipPrefixes ...string) gin.HandlerFunc {
	if len(skipPrefixes) == 0 {
		skipPrefixes = DefaultSkipPrefixes
	}

	return func(c *gin.Context) {
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		start := time.Now()

		ctx := c.Request.Context()
		if traceID := telemetry.TraceID(ctx); traceID != "" {
			ctx = logging.WithTraceID(logging.WithContext(ctx, logging.FromContextOr(ctx, logger)), traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		log := logging.FromContextOr(ctx, logger)

		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path += "?" + c.Request.URL.RawQuery
		}

		log.Log(ctx, logging.LevelTrace, "request started",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		level := slog.LevelInfo

		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		log.Log(ctx, level, "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
		)
	}
}
