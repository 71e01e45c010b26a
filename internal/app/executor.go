package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/platform/logging"
)

// Every service call moves through the same stages:
//
//   RECEIVED  → input accepted by the service method
//   VALIDATED → business rules on the input hold, or the call ends in a failure Result
//   DELEGATED → the storage collaborator answered, or an expected outcome
//               (not found, conflict) ended the call in a failure Result
//   MAPPED    → the stored value is projected into the response type
//
// Business failures are values. Anything the storage collaborator returns that
// Reject does not recognise is a fault: it leaves Execute as an error wrapped in
// a StageError and is never turned into a Result.

// Stage names a step of an operation.
type Stage string

const (
	StageReceived  Stage = "received"
	StageValidated Stage = "validated"
	StageDelegated Stage = "delegated"
	StageMapped    Stage = "mapped"
)

// StageError wraps a fault with the operation and stage it escaped from.
type StageError struct {
	Operation string
	Stage     Stage
	Cause     error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Cause
}

// FaultStage extracts the stage from a fault returned by Execute.
func FaultStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}

	return "", false
}

// Executor runs operations and logs their stage transitions.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation defines the functions for each stage of a service call.
type Operation[I, S, O any] struct {
	// Name identifies this operation for logging.
	Name string

	// Validate checks business rules on the input. Returning errors ends the
	// call in a failure Result before storage is consulted.
	Validate func(input I) []result.APIError

	// Delegate calls the storage collaborator.
	Delegate func(ctx context.Context, input I) (S, error)

	// Reject translates expected storage outcomes into a failure.
	// It returns false for faults, which Execute then returns as errors.
	Reject func(input I, err error) (result.APIError, bool)

	// Map projects the stored value into the response type.
	Map func(stored S) O
}

// Execute runs op for input.
// It returns a Result for success and business failures, and an error only for faults.
func Execute[I, S, O any](ctx context.Context, exec *Executor, op Operation[I, S, O], input I) (result.Result[O], error) {
	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	logger.Log(ctx, logging.LevelTrace, "operation stage", slog.String("stage", string(StageReceived)))

	if op.Validate != nil {
		if errs := op.Validate(input); len(errs) > 0 {
			logger.InfoContext(ctx, "operation rejected input",
				slog.Int("violations", len(errs)),
				slog.String("code", errs[0].Code),
			)

			return result.Failure[O](errs...), nil
		}
	}

	logger.Log(ctx, logging.LevelTrace, "operation stage", slog.String("stage", string(StageValidated)))

	stored, err := op.Delegate(ctx, input)
	if err != nil {
		if op.Reject != nil {
			if apiErr, ok := op.Reject(input, err); ok {
				logger.InfoContext(ctx, "operation ended with expected outcome",
					slog.String("code", apiErr.Code),
					slog.Any("error", err),
				)

				return result.Failure[O](apiErr), nil
			}
		}

		// Faults are logged once by the HTTP failure boundary.
		logger.DebugContext(ctx, "operation fault", slog.Any("error", err))

		return result.Result[O]{}, &StageError{Operation: op.Name, Stage: StageDelegated, Cause: err}
	}

	logger.Log(ctx, logging.LevelTrace, "operation stage", slog.String("stage", string(StageDelegated)))

	out := op.Map(stored)

	logger.DebugContext(ctx, "operation completed",
		slog.String("stage", string(StageMapped)),
		slog.Duration("duration", time.Since(start)),
	)

	return result.Success(out), nil
}
