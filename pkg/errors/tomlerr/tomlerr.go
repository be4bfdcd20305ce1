// Package tomlerr converts github.com/BurntSushi/toml failures into
// unified errors in the "toml" category.
//
// Importing the package registers a converter with erks.From. Decode and
// DecodeFile wrap the toml functions of the same name and, with Strict,
// report keys the target type does not declare.
package tomlerr

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Error is the variant for TOML decoding failures.
type Error struct {
	erks.Base

	// Line is the 1-based line of a parse failure, or 0 when unknown.
	Line int

	// Key is the last key parsed before the failure.
	Key string

	// Undecoded lists keys left over by a strict decode.
	Undecoded []string
}

func init() {
	erks.RegisterConverter("toml", func(err error) (erks.Variant, bool) {
		if _, ok := asParseError(err); ok {
			return New(err), true
		}
		if strings.HasPrefix(err.Error(), "toml: ") {
			return New(err), true
		}
		return nil, false
	})
}

// New classifies err as a TOML failure. A toml.ParseError yields
// TOML_PARSE_FAILED with line and key metadata; anything else yields
// TOML_ERROR.
func New(err error, opts ...erks.Option) *Error {
	pe, ok := asParseError(err)
	if !ok {
		return &Error{Base: erks.NewBase(erks.CategoryTOML, erks.CodeTOML, err, opts...)}
	}

	line := pe.Position.Line
	if line == 0 {
		line = pe.Line
	}
	extra := []erks.Option{erks.WithField("key", pe.LastKey)}
	if line > 0 {
		extra = append(extra, erks.WithField("line", strconv.Itoa(line)))
	}
	if pe.Position.Start > 0 {
		extra = append(extra, erks.WithField("offset", strconv.Itoa(pe.Position.Start)))
	}
	return &Error{
		Base: erks.NewBase(erks.CategoryTOML, erks.CodeTOMLParseFailed, err, append(extra, opts...)...),
		Line: line,
		Key:  pe.LastKey,
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

// Strict reports the keys of a decoded document that the target type
// did not declare as a TOML_UNDECODED_KEYS error. It returns nil when
// every key was decoded.
func Strict(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	joined := strings.Join(keys, ", ")
	return erks.Wrap(&Error{
		Base: erks.NewBase(erks.CategoryTOML, erks.CodeTOMLUndecodedKeys, nil,
			erks.WithMessage("unknown keys: "+joined),
			erks.WithField("keys", joined),
			erks.WithField("count", strconv.Itoa(len(keys))),
		),
		Undecoded: keys,
	})
}

// Decode decodes data into v. Failures are returned as unified errors.
func Decode(data string, v any) (toml.MetaData, error) {
	md, err := toml.Decode(data, v)
	if err != nil {
		return md, From(err)
	}
	return md, nil
}

// DecodeFile reads and decodes the file at path into v. A file that
// cannot be read is reported in the "io" category; a malformed file in
// the "toml" category with the path attached.
func DecodeFile(path string, v any) (toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return toml.MetaData{}, erks.Wrap(erks.FromIO(err))
	}
	md, err := toml.Decode(string(data), v)
	if err != nil {
		return md, erks.Wrap(New(err, erks.WithField("path", path)))
	}
	return md, nil
}

func asParseError(err error) (toml.ParseError, bool) {
	var pe toml.ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	var ppe *toml.ParseError
	if errors.As(err, &ppe) && ppe != nil {
		return *ppe, true
	}
	return toml.ParseError{}, false
}
