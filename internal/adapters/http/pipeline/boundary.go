package pipeline

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/adapters/http/dto"
	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/platform/logging"
	"github.com/idusortus/quotes-service/internal/platform/telemetry"
)

// Boundary messages.
const (
	DBUnavailableMessage = "The database is currently unavailable. Please try again later."
	DBUnavailableDetail  = "A temporary issue prevents connection to the database."
	InternalMessage      = "An unexpected internal server error occurred."
	InternalDetail       = "Please try again later. If the problem persists, contact support."
)

// PanicError carries a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panic value that is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

// BoundaryConfig configures a Boundary.
type BoundaryConfig struct {
	Logger *slog.Logger

	// Debug adds the fault's type and message to response details.
	Debug bool

	// Matchers recognise driver-specific transient storage failures.
	Matchers []Matcher

	// Faults is optional.
	Faults *telemetry.FaultCounter
}

// Boundary is the outermost stage of every API handler.
type Boundary struct {
	logger   *slog.Logger
	debug    bool
	matchers []Matcher
	faults   *telemetry.FaultCounter
}

// NewBoundary creates a boundary.
func NewBoundary(cfg BoundaryConfig) *Boundary {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Boundary{
		logger:   cfg.Logger,
		debug:    cfg.Debug,
		matchers: cfg.Matchers,
		faults:   cfg.Faults,
	}
}

// Wrap adapts h to gin. A returned error or a panic is logged once, counted,
// and answered with a 503 or 500 envelope unless h already wrote a response.
func (b *Boundary) Wrap(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := b.run(c, h); err != nil {
			b.fail(c, err)
		}
	}
}

func (b *Boundary) run(c *gin.Context, h HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if r == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(r)
			}

			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	return h(c)
}

func (b *Boundary) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	kind, cause := Classify(err, b.matchers...)

	attrs := []any{
		slog.Any("error", err),
		slog.String("fault_kind", string(kind)),
		slog.String("fault_type", fmt.Sprintf("%T", cause)),
		slog.String("method", c.Request.Method),
		slog.String("route", c.FullPath()),
	}

	if traceID := telemetry.TraceID(ctx); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}

	if p, ok := err.(*PanicError); ok { //nolint:errorlint // run returns it unwrapped
		attrs = append(attrs, slog.String("stack", string(p.Stack)))
	}

	logging.FromContextOr(ctx, b.logger).ErrorContext(ctx, "unhandled fault", attrs...)
	b.faults.Record(ctx, string(kind))

	if c.Writer.Written() {
		c.Abort()
		return
	}

	status, resp := b.response(kind, err, cause)
	c.AbortWithStatusJSON(status, resp)
}

func (b *Boundary) response(kind FaultKind, err, cause error) (int, dto.Response[any]) {
	msg := Truncate(err.Error(), MaxDetailLength)

	if kind == FaultTransientStorage {
		detail := DBUnavailableDetail
		if b.debug {
			detail = fmt.Sprintf("Original Error: %s... (Type: %T)", msg, cause)
		}

		return http.StatusServiceUnavailable, dto.Error(DBUnavailableMessage,
			result.NewError(result.CodeDBUnavailable, detail))
	}

	detail := InternalDetail
	if b.debug {
		detail += fmt.Sprintf(" (Type: %T, Message: %s...)", cause, msg)
	}

	return http.StatusInternalServerError, dto.Error(InternalMessage,
		result.NewError(result.CodeInternal, detail))
}
