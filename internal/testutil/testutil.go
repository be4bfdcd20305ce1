// Package testutil provides shared test helpers for the erks packages.
//
// All helpers accept [testing.TB] so they work in tests and benchmarks.
// Helpers named Require halt the test on failure via [require]; helpers
// named Assert record the failure and return false via [assert].
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// RequireCode halts the test if err is nil, does not carry an
// *erks.Error, or carries a different code. It returns the unified
// error so that callers can inspect its metadata.
//
//	e := testutil.RequireCode(t, loader.Load(&cfg), erks.CodeConfigMissingKey)
//	assert.Equal(t, "Name", testutil.RequireField(t, e, "key"))
func RequireCode(t testing.TB, err error, code erks.Code, msgAndArgs ...any) *erks.Error {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	e, ok := erks.AsError(err)
	require.True(t, ok, "expected *erks.Error, got %T: %v", err, err)
	require.Equal(t, code, e.Code(),
		"error code mismatch: got %q, want %q (message: %s)", e.Code(), code, e.Message())
	return e
}

// AssertCode records a failure unless err resolves to code under
// [erks.From]. Plain errors are classified first, so a bare
// context.Canceled satisfies erks.CodeCancelled.
func AssertCode(t testing.TB, err error, code erks.Code, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Error(t, err, msgAndArgs...) {
		return false
	}
	e := erks.From(err)
	return assert.Equal(t, code, e.Code(),
		"error code mismatch: got %q, want %q (message: %s)", e.Code(), code, e.Message())
}

// AssertCategory records a failure unless err resolves to category.
func AssertCategory(t testing.TB, err error, category erks.Category) bool {
	t.Helper()
	if !assert.Error(t, err) {
		return false
	}
	return assert.Equal(t, category, erks.GetCategory(err), "category mismatch for %v", err)
}

// AssertRecoverable records a failure unless the recoverability of err
// equals want.
func AssertRecoverable(t testing.TB, err error, want bool) bool {
	t.Helper()
	if !assert.Error(t, err) {
		return false
	}
	return assert.Equal(t, want, erks.IsRecoverable(err), "recoverable mismatch for %v", err)
}

// RequireField halts the test unless e carries the metadata field key,
// and returns its value.
func RequireField(t testing.TB, e *erks.Error, key string) string {
	t.Helper()
	require.NotNil(t, e)
	v, ok := e.Metadata().Get(key)
	require.True(t, ok, "metadata field %q missing from %s", key, e.Metadata())
	return v
}

// TempConfigFile writes content to a file named config<ext> inside
// t.TempDir() and returns its path. The file is created with mode 0600.
func TempConfigFile(t testing.TB, content, ext string) string {
	t.Helper()
	return TempFile(t, "config"+ext, content)
}

// TempFile writes content to name inside t.TempDir() and returns the
// path.
func TempFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600),
		"failed to write temp file %s", path)
	return path
}

// SetEnv sets an environment variable and restores the previous value
// (or unsets it) when the test completes. Tests using SetEnv on shared
// variables must not call t.Parallel().
func SetEnv(t testing.TB, key, value string) {
	t.Helper()
	prev, existed := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value), "failed to set env var %s", key)
	t.Cleanup(func() {
		if existed {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}
