// Package pgerr classifies PostgreSQL failures reported by
// github.com/jackc/pgx/v5 into the "postgres" category.
//
// Classification follows the SQLSTATE class of a *pgconn.PgError:
//
//	class 08        PG_CONNECTION        (recoverable)
//	class 22        PG_DATA
//	class 23        PG_CONSTRAINT
//	40001, 40P01    PG_SERIALIZATION     (recoverable)
//	class 42        PG_SYNTAX, 42501 PG_PERMISSION_DENIED
//	class 53, 57P0x PG_UNAVAILABLE       (recoverable)
//	57014           PG_QUERY_CANCELED
//
// pgx.ErrNoRows becomes PG_NO_ROWS and network timeouts PG_TIMEOUT.
// Importing the package registers the converter with erks.From.
package pgerr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Category is the category of every PostgreSQL error.
const Category erks.Category = "postgres"

// Conditions specific to PostgreSQL.
const (
	ConditionSerialization erks.Condition = "serialization"
	ConditionData          erks.Condition = "data"
)

// Codes registered by this package.
const (
	CodePG               erks.Code = "PG_ERROR"
	CodeNoRows           erks.Code = "PG_NO_ROWS"
	CodeConstraint       erks.Code = "PG_CONSTRAINT"
	CodeSerialization    erks.Code = "PG_SERIALIZATION"
	CodeConnection       erks.Code = "PG_CONNECTION"
	CodeQueryCanceled    erks.Code = "PG_QUERY_CANCELED"
	CodePermissionDenied erks.Code = "PG_PERMISSION_DENIED"
	CodeSyntax           erks.Code = "PG_SYNTAX"
	CodeUnavailable      erks.Code = "PG_UNAVAILABLE"
	CodeData             erks.Code = "PG_DATA"
	CodeTimeout          erks.Code = "PG_TIMEOUT"
)

func init() {
	erks.RegisterCodes(
		erks.CodeDefinition{Code: CodePG, Category: Category, Condition: erks.ConditionGeneric, Severity: erks.SeverityError, Description: "database error"},
		erks.CodeDefinition{Code: CodeNoRows, Category: Category, Condition: erks.ConditionNotFound, Severity: erks.SeverityWarning, Description: "no rows in result set"},
		erks.CodeDefinition{Code: CodeConstraint, Category: Category, Condition: erks.ConditionConflict, Severity: erks.SeverityError, Description: "constraint violation"},
		erks.CodeDefinition{Code: CodeSerialization, Category: Category, Condition: ConditionSerialization, Severity: erks.SeverityWarning, Recoverable: true, Description: "transaction serialization failure"},
		erks.CodeDefinition{Code: CodeConnection, Category: Category, Condition: erks.ConditionConnect, Severity: erks.SeverityError, Recoverable: true, Description: "database connection failure"},
		erks.CodeDefinition{Code: CodeQueryCanceled, Category: Category, Condition: erks.ConditionCancelled, Severity: erks.SeverityWarning, Description: "query canceled"},
		erks.CodeDefinition{Code: CodePermissionDenied, Category: Category, Condition: erks.ConditionPermissionDenied, Severity: erks.SeverityCritical, Description: "database permission denied"},
		erks.CodeDefinition{Code: CodeSyntax, Category: Category, Condition: erks.ConditionSyntax, Severity: erks.SeverityCritical, Description: "invalid sql statement"},
		erks.CodeDefinition{Code: CodeUnavailable, Category: Category, Condition: erks.ConditionUnavailable, Severity: erks.SeverityError, Recoverable: true, Description: "database unavailable"},
		erks.CodeDefinition{Code: CodeData, Category: Category, Condition: ConditionData, Severity: erks.SeverityError, Description: "invalid data for column"},
		erks.CodeDefinition{Code: CodeTimeout, Category: Category, Condition: erks.ConditionTimeout, Severity: erks.SeverityWarning, Recoverable: true, Description: "database operation timed out"},
	)

	erks.RegisterConverter("postgres", func(err error) (erks.Variant, bool) {
		if !claims(err) {
			return nil, false
		}
		return New(err), true
	})
}

// Error is the variant for PostgreSQL failures.
type Error struct {
	erks.Base

	// SQLState is the five character SQLSTATE, when the server reported one.
	SQLState string

	// Table, Column and Constraint name the object involved, when known.
	Table      string
	Column     string
	Constraint string
}

// New classifies err. Errors that are not PostgreSQL failures become
// PG_ERROR.
func New(err error, opts ...erks.Option) *Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromPgError(pgErr, err, opts)
	}

	code := CodePG
	var extra []erks.Option
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		code = CodeNoRows
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		code = CodeTimeout
	case errors.Is(err, context.Canceled):
		code = CodeQueryCanceled
	case isConnectError(err):
		code = CodeConnection
	}
	if pgconn.SafeToRetry(err) {
		extra = append(extra, erks.WithRecoverable(true), erks.WithField("safe_to_retry", "true"))
	}
	return &Error{Base: erks.NewBase(Category, code, err, append(extra, opts...)...)}
}

// From converts err into a unified error. An err that already carries an
// *erks.Error is returned unchanged. From returns nil for a nil err.
func From(err error) *erks.Error {
	if err == nil {
		return nil
	}
	if e, ok := erks.AsError(err); ok {
		return e
	}
	return erks.Wrap(New(err))
}

// IsNoRows reports whether err classifies as PG_NO_ROWS.
func IsNoRows(err error) bool {
	return erks.HasCode(err, CodeNoRows)
}

// IsConstraint reports whether err is a constraint violation, and for
// which constraint.
func IsConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func fromPgError(pgErr *pgconn.PgError, cause error, opts []erks.Option) *Error {
	extra := []erks.Option{
		erks.WithField("sqlstate", pgErr.Code),
		erks.WithField("table", pgErr.TableName),
		erks.WithField("column", pgErr.ColumnName),
		erks.WithField("constraint", pgErr.ConstraintName),
		erks.WithField("detail", pgErr.Detail),
	}
	if pgErr.Severity == "FATAL" || pgErr.Severity == "PANIC" {
		extra = append(extra, erks.WithSeverity(erks.SeverityCritical))
	}
	return &Error{
		Base:       erks.NewBase(Category, codeForState(pgErr.Code), cause, append(extra, opts...)...),
		SQLState:   pgErr.Code,
		Table:      pgErr.TableName,
		Column:     pgErr.ColumnName,
		Constraint: pgErr.ConstraintName,
	}
}

func codeForState(state string) erks.Code {
	switch state {
	case "40001", "40P01":
		return CodeSerialization
	case "42501":
		return CodePermissionDenied
	case "57014":
		return CodeQueryCanceled
	case "57P01", "57P02", "57P03":
		return CodeUnavailable
	}
	if len(state) < 2 {
		return CodePG
	}
	switch state[:2] {
	case "08":
		return CodeConnection
	case "22":
		return CodeData
	case "23":
		return CodeConstraint
	case "28":
		return CodePermissionDenied
	case "42":
		return CodeSyntax
	case "53":
		return CodeUnavailable
	}
	return CodePG
}

func isConnectError(err error) bool {
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// claims reports whether the converter should classify err.
func claims(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) ||
		errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, pgx.ErrTxClosed) ||
		errors.Is(err, pgx.ErrTxCommitRollback) ||
		isConnectError(err)
}
