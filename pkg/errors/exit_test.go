package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"info", Wrap(Other(nil, WithSeverity(SeverityInfo))), ExitOK},
		{"warning", Wrap(Validation("f", "v")), ExitWarning},
		{"error", errors.New("plain"), ExitFailure},
		{"critical", Wrap(InvalidState("a", "b")), ExitCritical},
		{"out of range", Wrap(Other(nil, WithSeverity(Severity(9)))), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
	assert.NotEqual(t, ExitCode(Wrap(InvalidState("a", "b"))), ExitCode(Wrap(Validation("f", "v"))),
		"critical and warning must exit differently")
}
