// Package globerr reports glob pattern and match-walk failures as
// unified errors in the "glob" category.
package globerr

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Error is the variant for glob failures.
type Error struct {
	erks.Base

	// Pattern is the glob pattern being evaluated.
	Pattern string

	// Path is the entry being visited when iteration failed.
	Path string
}

func init() {
	erks.RegisterConverter("glob", func(err error) (erks.Variant, bool) {
		if errors.Is(err, filepath.ErrBadPattern) || errors.Is(err, path.ErrBadPattern) {
			return New(err), true
		}
		return nil, false
	})
}

// Pattern reports a malformed pattern as GLOB_PATTERN_INVALID.
func Pattern(pattern string, cause error) *Error {
	return &Error{
		Base: erks.NewBase(erks.CategoryGlob, erks.CodeGlobPatternInvalid, cause,
			erks.WithField("pattern", pattern)),
		Pattern: pattern,
	}
}

// Iteration reports a failure while visiting path as GLOB_ITERATION.
func Iteration(pattern, path string, cause error) *Error {
	return &Error{
		Base: erks.NewBase(erks.CategoryGlob, erks.CodeGlobIteration, cause,
			erks.WithField("pattern", pattern), erks.WithField("path", path)),
		Pattern: pattern,
		Path:    path,
	}
}

// New classifies err: a bad-pattern error becomes a pattern failure and
// anything else an iteration failure.
func New(err error) *Error {
	if errors.Is(err, filepath.ErrBadPattern) || errors.Is(err, path.ErrBadPattern) {
		return Pattern("", err)
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return Iteration("", pathErr.Path, err)
	}
	return Iteration("", "", err)
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

// Glob returns the names of all files matching pattern, like
// filepath.Glob. A malformed pattern is reported as GLOB_PATTERN_INVALID.
func Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, erks.Wrap(Pattern(pattern, err))
	}
	return matches, nil
}

// Walk walks the tree rooted at root and returns the slash-separated
// paths, relative to root, whose relative path matches pattern. The
// pattern is validated before walking. A directory that cannot be read
// aborts the walk with GLOB_ITERATION.
func Walk(root, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, erks.Wrap(Pattern(pattern, err))
	}

	var matches []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return Iteration(pattern, p, walkErr)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return Iteration(pattern, p, err)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if ok, _ := path.Match(pattern, rel); ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, erks.From(err)
	}
	sort.Strings(matches)
	return matches, nil
}
