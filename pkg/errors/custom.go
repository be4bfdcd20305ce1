package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// CustomError is the variant for application-defined failures:
// validation, state machine violations, resource limits and business
// rules. Errors built with [Errorf], [Bail] and [Ensure] are also
// CustomErrors.
type CustomError struct {
	Base
}

// NewCustom builds a custom error with an arbitrary code. The code may
// belong to any registered category; the variant's category stays
// "custom". A nil cause is allowed.
func NewCustom(code Code, cause error, message string, opts ...Option) *CustomError {
	all := append([]Option{WithMessage(message)}, opts...)
	return &CustomError{Base: NewBase(CategoryCustom, code, cause, all...)}
}

// Validation reports a value that violates constraints on a field.
//
//	erks.Validation("port", "0", "1..65535")
//	// validation error: field "port" rejected value "0" (constraints: 1..65535)
func Validation(field, value string, constraints ...string) *CustomError {
	msg := fmt.Sprintf("field %q rejected value %q", field, value)
	joined := strings.Join(constraints, ", ")
	if joined != "" {
		msg += " (constraints: " + joined + ")"
	}
	return NewCustom(CodeValidation, nil, msg,
		WithField("field", field),
		WithField("value", value),
		WithField("constraints", joined),
	)
}

// InvalidState reports an operation attempted in the wrong state.
func InvalidState(current, expected string) *CustomError {
	return NewCustom(CodeInvalidState, nil,
		fmt.Sprintf("state is %q, expected %q", current, expected),
		WithField("current_state", current),
		WithField("expected_state", expected),
	)
}

// InvalidTransition reports a state transition that the current state
// does not allow.
func InvalidTransition(current, expected, transition string) *CustomError {
	return NewCustom(CodeInvalidState, nil,
		fmt.Sprintf("transition %q requires state %q, current state is %q", transition, expected, current),
		WithField("current_state", current),
		WithField("expected_state", expected),
		WithField("transition", transition),
	)
}

// ResourceLimit reports a quota or capacity limit being reached. The
// error is recoverable: capacity may free up.
func ResourceLimit(resource string, limit, current int64, unit string) *CustomError {
	msg := fmt.Sprintf("%s at %d of %d", resource, current, limit)
	if unit != "" {
		msg += " " + unit
	}
	return NewCustom(CodeResourceLimit, nil, msg,
		WithField("resource_type", resource),
		WithField("limit", strconv.FormatInt(limit, 10)),
		WithField("current", strconv.FormatInt(current, 10)),
		WithField("unit", unit),
	)
}

// BusinessLogic reports a domain rule that rejected an operation.
func BusinessLogic(operation, context string) *CustomError {
	return NewCustom(CodeBusinessLogic, nil,
		fmt.Sprintf("%s: %s", operation, context),
		WithField("operation", operation),
		WithField("context", context),
	)
}
