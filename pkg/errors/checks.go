package errors

import (
	"errors"
)

// AsError finds the first *Error in err's chain.
// Returns the Error and true if found, nil and false otherwise.
//
// Example:
//
//	if e, ok := erks.AsError(err); ok {
//	    log.Printf("code: %s, severity: %s", e.Code(), e.Severity())
//	}
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// GetCode returns the code err resolves to under [From].
// Returns an empty code for a nil error.
//
// Example:
//
//	if erks.GetCode(err) == erks.CodeIONotFound {
//	    // fall back to defaults
//	}
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	return From(err).Code()
}

// HasCode checks if err resolves to the specified code.
// Returns false if the error is nil.
func HasCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetSeverity returns the severity err resolves to under [From].
// A nil error reports [SeverityInfo].
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}
	return From(err).Severity()
}

// GetCategory returns the category err resolves to under [From].
// Returns an empty category for a nil error.
func GetCategory(err error) Category {
	if err == nil {
		return ""
	}
	return From(err).Category()
}

// IsRecoverable reports whether retrying the operation that produced err
// has a reasonable chance of succeeding. Returns false for a nil error.
//
// Example:
//
//	if erks.IsRecoverable(err) {
//	    // schedule a retry
//	}
func IsRecoverable(err error) bool {
	return err != nil && From(err).Recoverable()
}

// IsCategory checks if err resolves to the given category.
func IsCategory(err error, category Category) bool {
	return err != nil && GetCategory(err) == category
}
