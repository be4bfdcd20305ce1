package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsError(t *testing.T) {
	t.Parallel()
	e := Errorf("x")

	got, ok := AsError(fmt.Errorf("outer: %w", e))
	assert.True(t, ok)
	assert.Same(t, e, got)

	got, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok = AsError(nil)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestChecks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		code        Code
		severity    Severity
		category    Category
		recoverable bool
	}{
		{"nil", nil, "", SeverityInfo, "", false},
		{"custom", Errorf("x"), CodeCustom, SeverityError, CategoryCustom, false},
		{"plain error", errors.New("x"), CodeUnknown, SeverityError, CategoryOther, false},
		{"missing file", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}, CodeIONotFound, SeverityError, CategoryIO, false},
		{"deadline", context.DeadlineExceeded, CodeDeadlineExceeded, SeverityWarning, CategoryOther, true},
		{"resource limit", ResourceLimit("slots", 1, 1, ""), CodeResourceLimit, SeverityError, CategoryCustom, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.severity, GetSeverity(tt.err))
			assert.Equal(t, tt.category, GetCategory(tt.err))
			assert.Equal(t, tt.recoverable, IsRecoverable(tt.err))
			if tt.err != nil {
				assert.True(t, HasCode(tt.err, tt.code))
				assert.True(t, IsCategory(tt.err, tt.category))
			} else {
				assert.False(t, HasCode(tt.err, ""))
				assert.False(t, IsCategory(tt.err, ""))
			}
		})
	}
}
