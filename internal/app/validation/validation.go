// Package validation runs declarative per-request rule tables.
//
// A table lists the fields of a request type in order. Each field has an
// accessor and an ordered chain of checks; each check is a validator/v10 tag
// expression paired with the message reported when it fails. One engine
// evaluates every table:
//
//   - every field is evaluated, so independent violations are all reported
//   - a field's chain stops at its first failing check
//   - each violation becomes an APIError with code VALIDATION_FAILED
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/idusortus/quotes-service/internal/app/result"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", notBlank)
	})

	return validate
}

// notBlank fails on empty or whitespace-only strings.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Check is one predicate in a field's chain.
type Check struct {
	// Tag is a validator/v10 tag expression such as "max=100".
	Tag string

	// Other names another field of the same table. When set, the field is
	// compared against that field's value using Tag.
	Other string

	// Message is reported when the check fails.
	Message string
}

// FieldRule binds a request field to its chain of checks.
type FieldRule[T any] struct {
	Name   string
	Value  func(T) any
	Checks []Check
}

// Rules is the rule table for request type T.
type Rules[T any] []FieldRule[T]

// Validate evaluates every field of req and returns the violations in table order.
// It returns nil when req is valid.
func (r Rules[T]) Validate(req T) []result.APIError {
	var errs []result.APIError

	for _, field := range r {
		value := field.Value(req)

		for _, check := range field.Checks {
			if r.passes(req, value, check) {
				continue
			}

			errs = append(errs, result.NewFieldError(field.Name, result.CodeValidationFailed, check.Message))

			break
		}
	}

	return errs
}

// Fields returns the field names of the table in order.
func (r Rules[T]) Fields() []string {
	names := make([]string, 0, len(r))
	for _, field := range r {
		names = append(names, field.Name)
	}

	return names
}

func (r Rules[T]) passes(req T, value any, check Check) bool {
	if check.Other == "" {
		return Validator().Var(value, check.Tag) == nil
	}

	other, ok := r.field(check.Other)
	if !ok {
		panic(fmt.Sprintf("validation: check references unknown field %q", check.Other))
	}

	return Validator().VarWithValue(value, other.Value(req), check.Tag) == nil
}

func (r Rules[T]) field(name string) (FieldRule[T], bool) {
	for _, field := range r {
		if field.Name == name {
			return field, true
		}
	}

	return FieldRule[T]{}, false
}

// NotBlank requires a non-empty value; whitespace alone counts as empty.
func NotBlank(message string) Check {
	return Check{Tag: "notblank", Message: message}
}

// Email requires a syntactically valid email address.
func Email(message string) Check {
	return Check{Tag: "email", Message: message}
}

// MinLength requires at least n characters.
func MinLength(n int, message string) Check {
	return Check{Tag: "min=" + strconv.Itoa(n), Message: message}
}

// MaxLength allows at most n characters.
func MaxLength(n int, message string) Check {
	return Check{Tag: "max=" + strconv.Itoa(n), Message: message}
}

// ExactLength requires exactly n characters.
func ExactLength(n int, message string) Check {
	return Check{Tag: "len=" + strconv.Itoa(n), Message: message}
}

// Min requires a number of at least n.
func Min(n int, message string) Check {
	return Check{Tag: "min=" + strconv.Itoa(n), Message: message}
}

// Range requires a number between lo and hi inclusive.
func Range(lo, hi int, message string) Check {
	return Check{Tag: fmt.Sprintf("min=%d,max=%d", lo, hi), Message: message}
}

// OneOf allows an empty value or one of values.
func OneOf(values []string, message string) Check {
	return Check{Tag: "omitempty,oneof=" + strings.Join(values, " "), Message: message}
}

// EqualsField requires the value to equal the field named other.
func EqualsField(other, message string) Check {
	return Check{Tag: "eqcsfield", Other: other, Message: message}
}
