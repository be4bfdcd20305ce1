package errors

// OtherError is the catch-all variant for untyped or foreign causes
// that no converter recognized.
type OtherError struct {
	Base
}

// Other wraps an untyped cause. The code is [CodeUnknown].
func Other(cause error, opts ...Option) *OtherError {
	return &OtherError{Base: NewBase(CategoryOther, CodeUnknown, cause, opts...)}
}
