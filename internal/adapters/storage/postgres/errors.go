package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/idusortus/quotes-service/internal/domain"
)

// SQLSTATE codes the adapter reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeAdminShutdown        = "57P01"
	codeCrashShutdown        = "57P02"
	codeCannotConnectNow     = "57P03"
)

// Connection exception (08) and insufficient resources (53) classes.
var unavailableClasses = []string{"08", "53"}

// RetryExhaustedError is returned once every attempt of a storage call failed
// with a transient error.
type RetryExhaustedError struct {
	Attempts int
	Cause    error
}

// Error implements the error interface.
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("storage retries exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the last transient error.
func (e *RetryExhaustedError) Unwrap() error {
	return e.Cause
}

// RetryExhausted marks the error as the end of a retry sequence.
func (e *RetryExhaustedError) RetryExhausted() bool {
	return true
}

// IsConnectivityError reports whether err means the database could not be reached
// or refused work: connect failures, driver timeouts, connection exceptions,
// resource exhaustion and server shutdowns.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	if pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, class := range unavailableClasses {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}

		switch pgErr.Code {
		case codeAdminShutdown, codeCrashShutdown, codeCannotConnectNow:
			return true
		}
	}

	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}

// isRetryable reports whether repeating the call may succeed.
// Cancellation and deadlines are final.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if IsConnectivityError(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}

	return false
}

// translate maps driver errors onto domain errors. Unknown errors pass through wrapped.
func translate(entity, op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return domain.NewDuplicateError(entity, constraintReason(pgErr))
		case codeForeignKeyViolation:
			return domain.NewReferenceError(entity, constraintReason(pgErr))
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewDuplicateError(entity, "unique constraint")
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.NewReferenceError(entity, "foreign key constraint")
	}

	if IsConnectivityError(err) {
		return domain.NewUnavailableError("postgres", op, err)
	}

	return fmt.Errorf("postgres: %s %s: %w", op, entity, err)
}

func constraintReason(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return "violates " + pgErr.ConstraintName
	}

	return pgErr.Message
}
