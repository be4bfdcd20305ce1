// Package jsonerr converts encoding/json failures into unified errors.
//
// Importing the package registers a converter with erks.From, so any
// *json.SyntaxError, *json.UnmarshalTypeError or
// *json.InvalidUnmarshalError in an error chain is classified in the
// "json" category:
//
//	var cfg Config
//	if err := jsonerr.Unmarshal(data, &cfg); err != nil {
//	    return err // JSON_SYNTAX with line, column and offset metadata
//	}
package jsonerr

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Error is the variant for JSON encoding and decoding failures.
type Error struct {
	erks.Base

	// Offset is the input byte offset of the failure, or -1 when unknown.
	Offset int64

	// Field is the dotted path of the offending struct field, if known.
	Field string
}

func init() {
	erks.RegisterConverter("json", func(err error) (erks.Variant, bool) {
		if !recognized(err) {
			return nil, false
		}
		return New(err), true
	})
}

// New classifies err as a JSON failure. Errors without a JSON-specific
// signal become JSON_ERROR, except io.ErrUnexpectedEOF which a
// json.Decoder returns for truncated streams.
func New(err error, opts ...erks.Option) *Error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		targetErr *json.InvalidUnmarshalError
	)

	condition := erks.ConditionGeneric
	offset := int64(-1)
	var field string
	var extra []erks.Option

	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
		condition = erks.ConditionSyntax
		if strings.Contains(syntaxErr.Error(), "unexpected end of JSON input") {
			condition = erks.ConditionUnexpectedEOF
		}
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
		field = typeErr.Field
		condition = erks.ConditionTypeMismatch
		extra = append(extra, erks.WithField("json_value", typeErr.Value))
		if typeErr.Type != nil {
			extra = append(extra, erks.WithField("go_type", typeErr.Type.String()))
		}
	case errors.As(err, &targetErr):
		condition = erks.ConditionInvalidTarget
	case errors.Is(err, io.ErrUnexpectedEOF):
		condition = erks.ConditionUnexpectedEOF
	}

	if offset >= 0 {
		extra = append(extra, erks.WithField("offset", strconv.FormatInt(offset, 10)))
	}
	extra = append(extra, erks.WithField("field", field))

	code := erks.CodeFor(erks.CategoryJSON, condition)
	return &Error{
		Base:   erks.NewBase(erks.CategoryJSON, code, err, append(extra, opts...)...),
		Offset: offset,
		Field:  field,
	}
}

// From converts err into a unified error. An err that already carries
// an *erks.Error is returned unchanged. From returns nil for a nil err.
func From(err error) *erks.Error {
	if err == nil {
		return nil
	}
	if e, ok := erks.AsError(err); ok {
		return e
	}
	return erks.Wrap(New(err))
}

// Unmarshal decodes data into v with json.Unmarshal. Failures are
// returned as unified errors whose metadata includes the line and
// column of the offending byte.
func Unmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	e := New(err)
	out := erks.Wrap(e)
	if e.Offset >= 0 {
		line, col := Position(data, e.Offset)
		out = out.WithValue("line", line).WithValue("column", col)
	}
	return out
}

// Position converts a byte offset in data to a 1-based line and column.
// Offsets past the end are clamped to the end of data.
func Position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte{'\n'}) + 1
	col = int(offset) - (bytes.LastIndexByte(prefix, '\n') + 1)
	if col == 0 {
		col = 1
	}
	return line, col
}

func recognized(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		targetErr *json.InvalidUnmarshalError
		typeEnc   *json.UnsupportedTypeError
		valueEnc  *json.UnsupportedValueError
		marshaler *json.MarshalerError
	)
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &targetErr) ||
		errors.As(err, &typeEnc) ||
		errors.As(err, &valueEnc) ||
		errors.As(err, &marshaler)
}
