package errors

import (
	"errors"
	"fmt"
	"reflect"
)

// Context is the capability set every unified error supports. Consumers
// such as log handlers, exit handlers and retry loops depend on Context
// rather than on concrete variants.
type Context interface {
	Severity() Severity
	Code() Code
	Recoverable() bool
	Metadata() Metadata
	Category() Category
	Message() string
}

var _ Context = (*Error)(nil)

// Error is the unified error. It holds exactly one [Variant] plus the
// metadata added while the error travels up the call stack.
//
// Error is created by [Wrap], [From], the domain From functions and the
// helpers ([Errorf], [Bail], [Ensure]); it is never built bare. It is
// immutable: enrichment methods such as [Error.With] return a copy.
//
// All methods are safe on a nil *Error and resolve to the fallbacks of
// [CodeUnknown].
type Error struct {
	variant Variant

	// inherited holds the metadata of an *Error found in the variant's
	// cause chain at wrap time.
	inherited Metadata

	// meta holds enrichment added with With* methods.
	meta Metadata

	// text overrides the rendered message when the error was recovered
	// from a wrapping chain whose outer layers added text.
	text string
}

// Wrap coerces a variant into the unified error. Wrapping is idempotent
// and never nests unified errors: an *Error passed as the variant is
// returned unchanged, and when the variant's cause chain already holds
// an *Error its metadata is lifted into the result so it is rendered
// once. The inner error stays reachable through [errors.As].
//
// A nil interface yields nil. A typed nil pointer, such as a nil
// *IOError, yields an [OtherError] with [CodeUnknown].
func Wrap(v Variant) *Error {
	if v == nil {
		return nil
	}
	if isNilVariant(v) {
		return &Error{variant: Other(nil, WithMessage(fmt.Sprintf("nil %T", v)))}
	}
	if e, ok := v.(*Error); ok {
		return e
	}
	out := &Error{variant: v}
	var inner *Error
	if cause := v.Unwrap(); cause != nil && errors.As(cause, &inner) && inner != nil {
		out.inherited = inner.Metadata()
	}
	return out
}

func isNilVariant(v Variant) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Variant returns the active category variant, or nil for a nil or
// zero Error.
func (e *Error) Variant() Variant {
	if e == nil || e.variant == nil {
		return nil
	}
	return e.variant
}

// Error implements the error interface. The result contains the
// original cause's text verbatim.
func (e *Error) Error() string {
	switch {
	case e == nil || e.variant == nil:
		return CodeUnknown.Description()
	case e.text != "":
		return e.text
	default:
		return e.variant.Error()
	}
}

// Message returns [Error.Error] followed by the metadata rendered as
// key=value pairs in brackets.
func (e *Error) Message() string {
	msg := e.Error()
	if md := e.Metadata(); !md.IsEmpty() {
		return msg + " [" + md.String() + "]"
	}
	return msg
}

// Unwrap returns the active variant, so both the variant and the
// original cause are reachable with errors.Is and errors.As.
func (e *Error) Unwrap() error {
	if v := e.Variant(); v != nil {
		return v
	}
	return nil
}

// Category returns the stable lowercase name of the active variant.
func (e *Error) Category() Category {
	if v := e.Variant(); v != nil {
		return v.Category()
	}
	return CategoryOther
}

// Code returns the code of the active variant.
func (e *Error) Code() Code {
	if v := e.Variant(); v != nil {
		return v.Code()
	}
	return CodeUnknown
}

// Severity returns the severity of the active variant.
func (e *Error) Severity() Severity {
	if v := e.Variant(); v != nil {
		return v.Severity()
	}
	return CodeUnknown.DefaultSeverity()
}

// Recoverable reports whether retrying is meaningful.
func (e *Error) Recoverable() bool {
	if v := e.Variant(); v != nil {
		return v.Recoverable()
	}
	return false
}

// Metadata returns the variant's metadata merged with inherited and
// enrichment metadata. Enrichment wins on conflicts.
func (e *Error) Metadata() Metadata {
	v := e.Variant()
	if v == nil {
		if e == nil {
			return Metadata{}
		}
		return e.meta
	}
	return e.inherited.Merge(v.Metadata()).Merge(e.meta)
}

// With returns a copy of e with the field added.
func (e *Error) With(key, value string) *Error {
	return e.enrich(Metadata{}.With(key, value))
}

// WithValue returns a copy of e with the field added, formatting value
// with fmt.Sprint.
func (e *Error) WithValue(key string, value any) *Error {
	return e.enrich(Metadata{}.WithValue(key, value))
}

// WithComponent returns a copy of e naming the failed component.
func (e *Error) WithComponent(name string) *Error {
	return e.enrich(Metadata{}.WithComponent(name))
}

// WithOperation returns a copy of e naming the failed operation.
func (e *Error) WithOperation(name string) *Error {
	return e.enrich(Metadata{}.WithOperation(name))
}

// WithMetadata returns a copy of e with m merged into its enrichment.
func (e *Error) WithMetadata(m Metadata) *Error {
	return e.enrich(m)
}

func (e *Error) enrich(m Metadata) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.meta = e.meta.Merge(m)
	return &cp
}

func (e *Error) withText(text string) *Error {
	if e == nil || text == "" || text == e.Error() {
		return e
	}
	cp := *e
	cp.text = text
	return &cp
}

// Format implements fmt.Formatter. %v and %s print [Error.Error], %q
// quotes it, and %+v prints the full classification, the metadata and
// the cause chain.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "Error{Category: %q, Code: %q, Severity: %s, Recoverable: %t, Message: %q",
				e.Category(), e.Code(), e.Severity(), e.Recoverable(), e.Error())
			if md := e.Metadata(); !md.IsEmpty() {
				fmt.Fprintf(s, ", Metadata: {%s}", md)
			}
			if v := e.Variant(); v != nil {
				if cause := v.Unwrap(); cause != nil {
					fmt.Fprintf(s, ", Cause: %+v", cause)
				}
			}
			fmt.Fprint(s, "}")
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// Summary renders a single line suited to terminal output:
//
//	[io][ERROR] IO_NOT_FOUND: file system error: not found: open x (recoverable: false)
func (e *Error) Summary() string {
	return fmt.Sprintf("[%s][%s] %s: %s (recoverable: %t)",
		e.Category(), e.Severity(), e.Code(), e.Message(), e.Recoverable())
}
