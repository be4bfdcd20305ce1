package errors

// Result holds either a value of type T or a unified error. It lets
// collaborators pass fallible outcomes through channels, slices and
// struct fields where a (T, error) pair does not fit.
//
// The zero Result is a success holding the zero value of T.
type Result[T any] struct {
	value T
	err   *Error
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed Result holding [From] of err. A nil err still
// yields a failure, classified as [CodeUnknown], so a Result built with
// Fail is never mistaken for a success.
func Fail[T any](err error) Result[T] {
	e := From(err)
	if e == nil {
		e = Wrap(Other(nil, WithMessage("result failed without an error")))
	}
	return Result[T]{err: e}
}

// Of builds a Result from a conventional (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

// Try runs fn and captures its outcome.
func Try[T any](fn func() (T, error)) Result[T] {
	return Of(fn())
}

// IsOk reports whether r holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Value returns the held value, or the zero value of T on failure.
func (r Result[T]) Value() T { return r.value }

// ValueOr returns the held value, or def on failure.
func (r Result[T]) ValueOr(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// Err returns the held error, or nil on success.
func (r Result[T]) Err() *Error { return r.err }

// Unwrap returns the conventional (value, error) pair. The error is an
// untyped nil on success.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		return r.value, r.err
	}
	return r.value, nil
}

// Map applies fn to a successful Result's value. Failures pass through
// unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(fn(r.value))
}

// AndThen chains a fallible step onto a successful Result.
func AndThen[T, U any](r Result[T], fn func(T) (U, error)) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Of(fn(r.value))
}
