package pipeline

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"
	"unicode/utf8"

	"github.com/idusortus/quotes-service/internal/domain"
)

// FaultKind classifies a fault for the response and the faults metric.
type FaultKind string

const (
	// FaultTransientStorage means storage was unreachable or kept failing; retrying later may work.
	FaultTransientStorage FaultKind = "transient_storage"

	// FaultInternal is every other fault.
	FaultInternal FaultKind = "internal"
)

// MaxDetailLength bounds, in runes, the fault message echoed in debug mode.
const MaxDetailLength = 200

// Matcher reports whether err, or anything it wraps, is a transient storage failure.
type Matcher func(err error) bool

// Classify walks the chain of err and returns its kind together with the error
// the response describes: the first transient link, or otherwise the root cause.
func Classify(err error, matchers ...Matcher) (FaultKind, error) {
	chain := unwrapAll(err)

	for _, e := range chain {
		if isTransient(e) {
			return FaultTransientStorage, e
		}
	}

	// Matchers may look through wrappers themselves, so the deepest hit is the most specific.
	var hit error

	for _, e := range chain {
		for _, match := range matchers {
			if match(e) {
				hit = e
				break
			}
		}
	}

	if hit != nil {
		return FaultTransientStorage, hit
	}

	return FaultInternal, rootCause(err)
}

// isTransient checks a single link, without looking at what it wraps.
func isTransient(err error) bool {
	//nolint:errorlint // links are compared one at a time
	switch err {
	case domain.ErrUnavailable, context.DeadlineExceeded, driver.ErrBadConn, sql.ErrConnDone:
		return true
	}

	switch e := err.(type) { //nolint:errorlint // links are inspected one at a time
	case *domain.UnavailableError:
		return true
	case *net.OpError:
		return true
	case net.Error:
		return e.Timeout()
	case interface{ RetryExhausted() bool }:
		return e.RetryExhausted()
	}

	return false
}

// unwrapAll lists err and every error it wraps, depth first.
func unwrapAll(err error) []error {
	var out []error

	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}

		out = append(out, e)

		switch u := e.(type) { //nolint:errorlint // walking the chain by hand
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		}
	}

	walk(err)

	return out
}

// rootCause follows the first wrapped error until there is none.
func rootCause(err error) error {
	for {
		var next error

		switch u := err.(type) { //nolint:errorlint // walking the chain by hand
		case interface{ Unwrap() error }:
			next = u.Unwrap()
		case interface{ Unwrap() []error }:
			if errs := u.Unwrap(); len(errs) > 0 {
				next = errs[0]
			}
		}

		if next == nil {
			return err
		}

		err = next
	}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)

	return string(runes[:n])
}
