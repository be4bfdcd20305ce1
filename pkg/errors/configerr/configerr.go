// Package configerr defines the "config" category variants: missing or
// malformed configuration files, missing keys, invalid values and
// environment problems.
//
// Importing the package registers a converter with erks.From that
// classifies gopkg.in/yaml.v3 errors as CONFIG_PARSE_FAILED.
package configerr

import (
	"errors"
	"io/fs"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Error is the variant for configuration failures.
type Error struct {
	erks.Base

	// Key is the configuration key involved, if any.
	Key string

	// Path is the configuration file involved, if any.
	Path string
}

var yamlLine = regexp.MustCompile(`^yaml: line (\d+):`)

func init() {
	erks.RegisterConverter("yaml", func(err error) (erks.Variant, bool) {
		if !isYAML(err) {
			return nil, false
		}
		return ParseFailed("", err), true
	})
}

func newError(condition erks.Condition, key, path string, cause error, opts ...erks.Option) *Error {
	extra := []erks.Option{erks.WithField("key", key), erks.WithField("path", path)}
	code := erks.CodeFor(erks.CategoryConfig, condition)
	return &Error{
		Base: erks.NewBase(erks.CategoryConfig, code, cause, append(extra, opts...)...),
		Key:  key,
		Path: path,
	}
}

// FileNotFound reports a configuration file that does not exist.
func FileNotFound(path string, cause error) *Error {
	return newError(erks.ConditionNotFound, "", path, cause,
		erks.WithMessage("no configuration at "+strconv.Quote(path)))
}

// ParseFailed reports a malformed configuration file. Position metadata
// (line, offset, key) carried by the cause's own classification is
// merged into the result.
func ParseFailed(path string, cause error) *Error {
	opts := positionOf(cause)
	if path != "" {
		opts = append(opts, erks.WithMessage("cannot parse "+strconv.Quote(path)))
	}
	return newError(erks.ConditionParse, "", path, cause, opts...)
}

// MissingKey reports a required key without a value.
func MissingKey(key string) *Error {
	return newError(erks.ConditionMissingKey, key, "", nil,
		erks.WithMessage("required key "+strconv.Quote(key)+" is empty"))
}

// InvalidValue reports a key whose value cannot be used.
func InvalidValue(key, value string, cause error, opts ...erks.Option) *Error {
	base := []erks.Option{
		erks.WithMessage("key " + strconv.Quote(key) + " has invalid value " + strconv.Quote(value)),
		erks.WithField("value", value),
	}
	return newError(erks.ConditionInvalidValue, key, "", cause, append(base, opts...)...)
}

// UnsupportedFormat reports a configuration file whose extension no
// decoder handles.
func UnsupportedFormat(path, ext string) *Error {
	return newError(erks.ConditionUnsupportedFormat, "", path, nil,
		erks.WithMessage("unsupported file extension "+strconv.Quote(ext)),
		erks.WithField("ext", ext))
}

// Environment reports a problem with the process environment. It is
// recoverable: the environment may be fixed without a code change.
func Environment(msg string, cause error) *Error {
	return newError(erks.ConditionEnvironment, "", "", cause, erks.WithMessage(msg))
}

// Invalid reports a configuration failure without a finer condition,
// such as a failed custom validation.
func Invalid(cause error, msg string) *Error {
	return newError(erks.ConditionGeneric, "", "", cause, erks.WithMessage(msg))
}

// New classifies err as a configuration failure: missing files become
// CONFIG_NOT_FOUND, YAML errors CONFIG_PARSE_FAILED, number parse errors
// CONFIG_INVALID_VALUE and anything else CONFIG_ERROR.
func New(err error) *Error {
	var numErr *strconv.NumError
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		var p string
		if errors.As(err, &pathErr) {
			p = pathErr.Path
		}
		return newError(erks.ConditionNotFound, "", p, err)
	case isYAML(err):
		return ParseFailed("", err)
	case errors.As(err, &numErr):
		return InvalidValue("", numErr.Num, err)
	}
	return Invalid(err, "")
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

func isYAML(err error) bool {
	var typeErr *yaml.TypeError
	return errors.As(err, &typeErr) || strings.HasPrefix(err.Error(), "yaml: ")
}

// positionOf extracts position metadata from a decoder error.
func positionOf(cause error) []erks.Option {
	if cause == nil {
		return nil
	}
	if m := yamlLine.FindStringSubmatch(cause.Error()); m != nil {
		return []erks.Option{erks.WithField("line", m[1])}
	}
	if isYAML(cause) {
		return nil
	}
	inner := erks.From(cause)
	if inner.Category() == erks.CategoryOther {
		return nil
	}
	md := erks.NewMetadata()
	for _, k := range []string{"line", "column", "offset", "key", "field"} {
		if v, ok := inner.Metadata().Get(k); ok {
			md = md.With(k, v)
		}
	}
	return []erks.Option{erks.WithMetadata(md)}
}
