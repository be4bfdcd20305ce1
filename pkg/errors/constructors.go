package errors

import (
	"fmt"
)

// Errorf builds a Custom error with code [CodeCustom], severity
// [SeverityError] and recoverable false. The message is formatted with
// fmt.Errorf, so %w verbs keep the wrapped errors reachable through
// errors.Is and errors.As.
//
//	return erks.Errorf("user %q not found in %s", id, namespace)
func Errorf(format string, args ...any) *Error {
	formatted := fmt.Errorf(format, args...)
	switch formatted.(type) {
	case interface{ Unwrap() error }, interface{ Unwrap() []error }:
		return Wrap(NewCustom(CodeCustom, formatted, ""))
	default:
		return Wrap(NewCustom(CodeCustom, nil, formatted.Error()))
	}
}

// Bail returns the zero value of T together with an [Errorf] error, for
// early returns from functions with a result:
//
//	if len(args) == 0 {
//	    return erks.Bail[Config]("no arguments given")
//	}
func Bail[T any](format string, args ...any) (T, error) {
	var zero T
	return zero, Errorf(format, args...)
}

// Ensure returns nil when cond holds and an [Errorf] error otherwise.
// The format arguments are only rendered when cond is false.
//
//	if err := erks.Ensure(x > 0, "x=%d must be positive", x); err != nil {
//	    return err
//	}
func Ensure(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return Errorf(format, args...)
}
