package errors

// Variant is implemented by every category error. A variant owns the
// original cause and answers the classification questions for its
// domain. Variants are coerced into [*Error] with [Wrap].
//
// Types outside this package implement Variant by embedding [Base].
type Variant interface {
	error

	// Unwrap returns the original cause, or nil.
	Unwrap() error

	// Category returns the lowercase domain name.
	Category() Category

	// Code returns the code of the specific failure condition.
	Code() Code

	// Severity returns the code's default severity unless overridden.
	Severity() Severity

	// Recoverable reports whether retrying is meaningful.
	Recoverable() bool

	// Metadata returns the context attached at construction.
	Metadata() Metadata
}

// Base carries the state shared by all variants. Domain packages embed
// it in their variant types:
//
//	type Error struct {
//	    erks.Base
//	    Line int
//	}
//
// The zero Base is valid and classifies as [CodeUnknown].
type Base struct {
	category    Category
	code        Code
	severity    Severity
	recoverable bool
	message     string
	cause       error
	meta        Metadata
}

// Option customizes a [Base] at construction.
type Option func(*Base)

// WithSeverity overrides the code's default severity.
func WithSeverity(s Severity) Option {
	return func(b *Base) { b.severity = s }
}

// WithRecoverable overrides the code's default recoverability.
func WithRecoverable(recoverable bool) Option {
	return func(b *Base) { b.recoverable = recoverable }
}

// WithMessage sets an explanatory message rendered before the cause.
func WithMessage(msg string) Option {
	return func(b *Base) { b.message = msg }
}

// WithMetadata merges m into the variant's metadata.
func WithMetadata(m Metadata) Option {
	return func(b *Base) { b.meta = b.meta.Merge(m) }
}

// WithField adds one metadata field. Empty values are skipped so
// constructors can pass optional context unconditionally.
func WithField(key, value string) Option {
	return func(b *Base) {
		if value != "" {
			b.meta = b.meta.With(key, value)
		}
	}
}

// NewBase builds the shared state of a variant. Severity and
// recoverability default to the code's registered values. An empty
// category is taken from the code's registration.
func NewBase(category Category, code Code, cause error, opts ...Option) Base {
	if code == "" {
		code = CodeUnknown
	}
	if category == "" {
		category = code.Category()
	}
	b := Base{
		category:    category,
		code:        code,
		severity:    code.DefaultSeverity(),
		recoverable: code.Recoverable(),
		cause:       cause,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Error renders the code description followed by the message and the
// cause text. When both are empty only the description is returned, so
// the result is never empty.
func (b Base) Error() string {
	desc := b.Code().Description()
	if detail := b.Detail(); detail != "" {
		return desc + ": " + detail
	}
	return desc
}

// Detail returns the message and cause text without the description
// prefix.
func (b Base) Detail() string {
	var causeText string
	if b.cause != nil {
		causeText = b.cause.Error()
	}
	switch {
	case b.message != "" && causeText != "":
		return b.message + ": " + causeText
	case b.message != "":
		return b.message
	default:
		return causeText
	}
}

// Unwrap returns the original cause.
func (b Base) Unwrap() error { return b.cause }

// Category returns the variant's category.
func (b Base) Category() Category {
	if b.category == "" {
		return CategoryOther
	}
	return b.category
}

// Code returns the variant's code.
func (b Base) Code() Code {
	if b.code == "" {
		return CodeUnknown
	}
	return b.code
}

// Severity returns the variant's severity.
func (b Base) Severity() Severity {
	if b.code == "" {
		return CodeUnknown.DefaultSeverity()
	}
	return b.severity
}

// Recoverable reports whether the variant is recoverable.
func (b Base) Recoverable() bool { return b.recoverable }

// Metadata returns the metadata attached at construction.
func (b Base) Metadata() Metadata { return b.meta }
