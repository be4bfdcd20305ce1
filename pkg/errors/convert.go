package errors

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Converter recognizes errors of one external domain and returns the
// matching variant. A converter must be total and side-effect free: it
// returns false for errors it does not recognize and never panics. The
// variant it returns should keep the whole err as its cause so the
// conversion is not lossy.
type Converter func(err error) (Variant, bool)

type namedConverter struct {
	name string
	fn   Converter
}

var converters struct {
	mu   sync.RWMutex
	list []namedConverter
}

// RegisterConverter adds a converter consulted by [From]. Converters run
// in registration order, before the built-in context and I/O
// classification. Domain packages call RegisterConverter from init, so
// importing the package enables its conversions.
//
// RegisterConverter panics if fn is nil or name is already registered.
func RegisterConverter(name string, fn Converter) {
	if fn == nil {
		panic("erks: RegisterConverter with nil converter")
	}

	converters.mu.Lock()
	defer converters.mu.Unlock()

	for _, c := range converters.list {
		if c.name == name {
			panic(fmt.Sprintf("erks: converter %q registered twice", name))
		}
	}
	converters.list = append(converters.list, namedConverter{name: name, fn: fn})
}

// ConverterNames returns the names of the registered converters in the
// order [From] consults them.
func ConverterNames() []string {
	converters.mu.RLock()
	defer converters.mu.RUnlock()

	names := make([]string, len(converters.list))
	for i, c := range converters.list {
		names[i] = c.name
	}
	return names
}

// From converts any error into the unified error. It is total and never
// panics:
//
//   - nil yields nil
//   - an *Error anywhere in the chain is returned without adding a layer
//   - a [Variant] anywhere in the chain is wrapped with [Wrap]
//   - registered converters are consulted in order
//   - context.Canceled and context.DeadlineExceeded map to
//     [CodeCancelled] and [CodeDeadlineExceeded]
//   - errors carrying an I/O signal become an [IOError]
//   - anything else becomes an [OtherError] with [CodeUnknown]
//
// When the *Error or variant is found below wrapping layers (for example
// fmt.Errorf("load: %w", err)), the outer text is kept as the message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if v, ok := nilVariant(err); ok {
		return Wrap(v)
	}

	if e, ok := AsError(err); ok {
		return e.withText(err.Error())
	}

	var v Variant
	if errors.As(err, &v) {
		return Wrap(v).withText(err.Error())
	}

	converters.mu.RLock()
	list := converters.list
	converters.mu.RUnlock()

	for _, c := range list {
		if v, ok := c.fn(err); ok && v != nil {
			return Wrap(v)
		}
	}

	if v, ok := fromContext(err); ok {
		return Wrap(v)
	}
	if hasIOSignal(err) {
		return Wrap(FromIO(err))
	}
	return Wrap(Other(err))
}

// nilVariant finds a typed nil variant in err's chain. The chain is
// walked by hand because errors.As would call Unwrap on the nil pointer.
func nilVariant(err error) (Variant, bool) {
	for err != nil {
		if v, ok := err.(Variant); ok && isNilVariant(v) {
			return v, true
		}
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				if v, ok := nilVariant(e); ok {
					return v, true
				}
			}
			return nil, false
		default:
			return nil, false
		}
	}
	return nil, false
}

// Cancellation builds the error reported when work is abandoned because
// its context ended. The code is [CodeDeadlineExceeded] when cause is or
// wraps context.DeadlineExceeded and [CodeCancelled] otherwise.
func Cancellation(cause error, opts ...Option) *Error {
	code := CodeCancelled
	if errors.Is(cause, context.DeadlineExceeded) {
		code = CodeDeadlineExceeded
	}
	return Wrap(&OtherError{Base: NewBase(CategoryOther, code, cause, opts...)})
}

func fromContext(err error) (Variant, bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &OtherError{Base: NewBase(CategoryOther, CodeDeadlineExceeded, err)}, true
	case errors.Is(err, context.Canceled):
		return &OtherError{Base: NewBase(CategoryOther, CodeCancelled, err)}, true
	}
	return nil, false
}
