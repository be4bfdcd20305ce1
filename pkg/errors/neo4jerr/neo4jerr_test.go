package neo4jerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

func TestNew_StatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code        string
		want        erks.Code
		recoverable bool
	}{
		{"Neo.TransientError.Transaction.DeadlockDetected", CodeTransient, true},
		{"Neo.TransientError.General.DatabaseUnavailable", CodeTransient, true},
		{"Neo.ClientError.Security.Unauthorized", CodeSecurity, false},
		{"Neo.ClientError.Statement.EntityNotFound", CodeNotFound, false},
		{"Neo.ClientError.Database.DatabaseNotFound", CodeNotFound, false},
		{"Neo.ClientError.Statement.SyntaxError", CodeSyntax, false},
		{"Neo.ClientError.Schema.ConstraintValidationFailed", CodeConstraint, false},
		{"Neo.ClientError.Cluster.NotALeader", CodeTransient, true},
		{"Neo.ClientError.Statement.ParameterMissing", CodeClient, false},
		{"Neo.DatabaseError.General.UnknownError", CodeDatabase, false},
		{"garbage", CodeNeo4j, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			err := New(&neo4j.Neo4jError{Code: tt.code, Msg: "server failure"})
			assert.Equal(t, Category, err.Category())
			assert.Equal(t, tt.want, err.Code())
			assert.Equal(t, tt.recoverable, err.Recoverable())
			assert.Equal(t, tt.code, err.Neo4jCode)
		})
	}
}

func TestNew_DatabaseErrorIsCritical(t *testing.T) {
	t.Parallel()
	err := New(&neo4j.Neo4jError{Code: "Neo.DatabaseError.General.UnknownError"})
	assert.Equal(t, erks.SeverityCritical, err.Severity())
}

func TestNew_UsageError(t *testing.T) {
	t.Parallel()
	err := New(&neo4j.UsageError{Message: "session is closed"})
	assert.Equal(t, CodeClient, err.Code())
}

func TestSplit(t *testing.T) {
	t.Parallel()
	class, cat, title, ok := Split("Neo.ClientError.Schema.ConstraintValidationFailed")
	assert.True(t, ok)
	assert.Equal(t, "ClientError", class)
	assert.Equal(t, "Schema", cat)
	assert.Equal(t, "ConstraintValidationFailed", title)

	_, _, _, ok = Split("Neo.ClientError")
	assert.False(t, ok)
}

func TestFrom_Converter(t *testing.T) {
	t.Parallel()
	cause := &neo4j.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected", Msg: "deadlock"}
	e := erks.From(fmt.Errorf("merge node: %w", cause))

	assert.Equal(t, Category, e.Category())
	assert.Equal(t, CodeTransient, e.Code())
	assert.True(t, erks.IsRecoverable(e))

	var nErr *neo4j.Neo4jError
	assert.ErrorAs(t, e, &nErr)
	code, _ := e.Metadata().Get("neo4j_code")
	assert.Equal(t, cause.Code, code)
}

func TestFrom(t *testing.T) {
	t.Parallel()
	assert.Nil(t, From(nil))
	assert.Equal(t, CodeNeo4j, From(errors.New("boom")).Code())
}
