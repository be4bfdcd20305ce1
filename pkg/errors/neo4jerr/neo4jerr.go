// Package neo4jerr classifies failures reported by
// github.com/neo4j/neo4j-go-driver/v5 into the "neo4j" category.
//
// Server errors carry a status code of the form
// Neo.<Classification>.<Category>.<Title>, for example
// Neo.ClientError.Schema.ConstraintValidationFailed. The classification
// decides retryability; the category and title pick the code. Importing
// the package registers the converter with erks.From.
package neo4jerr

import (
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Category is the category of every Neo4j error.
const Category erks.Category = "neo4j"

// Conditions specific to Neo4j.
const (
	ConditionTransient erks.Condition = "transient"
	ConditionClient    erks.Condition = "client"
	ConditionDatabase  erks.Condition = "database"
)

// Codes registered by this package.
const (
	CodeNeo4j       erks.Code = "NEO4J_ERROR"
	CodeTransient   erks.Code = "NEO4J_TRANSIENT"
	CodeSecurity    erks.Code = "NEO4J_SECURITY"
	CodeNotFound    erks.Code = "NEO4J_NOT_FOUND"
	CodeSyntax      erks.Code = "NEO4J_SYNTAX"
	CodeConstraint  erks.Code = "NEO4J_CONSTRAINT"
	CodeClient      erks.Code = "NEO4J_CLIENT"
	CodeDatabase    erks.Code = "NEO4J_DATABASE"
	CodeUnavailable erks.Code = "NEO4J_UNAVAILABLE"
)

func init() {
	erks.RegisterCodes(
		erks.CodeDefinition{Code: CodeNeo4j, Category: Category, Condition: erks.ConditionGeneric, Severity: erks.SeverityError, Description: "graph database error"},
		erks.CodeDefinition{Code: CodeTransient, Category: Category, Condition: ConditionTransient, Severity: erks.SeverityWarning, Recoverable: true, Description: "transient graph database error"},
		erks.CodeDefinition{Code: CodeSecurity, Category: Category, Condition: erks.ConditionUnauthorized, Severity: erks.SeverityCritical, Description: "graph database security error"},
		erks.CodeDefinition{Code: CodeNotFound, Category: Category, Condition: erks.ConditionNotFound, Severity: erks.SeverityWarning, Description: "graph entity not found"},
		erks.CodeDefinition{Code: CodeSyntax, Category: Category, Condition: erks.ConditionSyntax, Severity: erks.SeverityCritical, Description: "invalid cypher statement"},
		erks.CodeDefinition{Code: CodeConstraint, Category: Category, Condition: erks.ConditionConflict, Severity: erks.SeverityError, Description: "graph constraint violation"},
		erks.CodeDefinition{Code: CodeClient, Category: Category, Condition: ConditionClient, Severity: erks.SeverityError, Description: "graph database client error"},
		erks.CodeDefinition{Code: CodeDatabase, Category: Category, Condition: ConditionDatabase, Severity: erks.SeverityCritical, Description: "graph database internal error"},
		erks.CodeDefinition{Code: CodeUnavailable, Category: Category, Condition: erks.ConditionUnavailable, Severity: erks.SeverityError, Recoverable: true, Description: "graph database unavailable"},
	)

	erks.RegisterConverter("neo4j", func(err error) (erks.Variant, bool) {
		var nErr *neo4j.Neo4jError
		var uErr *neo4j.UsageError
		if errors.As(err, &nErr) || errors.As(err, &uErr) || neo4j.IsConnectivityError(err) {
			return New(err), true
		}
		return nil, false
	})
}

// Error is the variant for Neo4j failures.
type Error struct {
	erks.Base

	// Neo4jCode is the full server status code, when the server reported one.
	Neo4jCode string
}

// New classifies err. Errors the server did not report are checked for
// connectivity and usage problems before falling back to NEO4J_ERROR.
func New(err error, opts ...erks.Option) *Error {
	var nErr *neo4j.Neo4jError
	if errors.As(err, &nErr) {
		extra := []erks.Option{erks.WithField("neo4j_code", nErr.Code)}
		return &Error{
			Base:      erks.NewBase(Category, classify(nErr.Code), err, append(extra, opts...)...),
			Neo4jCode: nErr.Code,
		}
	}

	code := CodeNeo4j
	var uErr *neo4j.UsageError
	switch {
	case neo4j.IsConnectivityError(err):
		code = CodeUnavailable
	case errors.As(err, &uErr):
		code = CodeClient
	case neo4j.IsRetryable(err):
		code = CodeTransient
	}
	return &Error{Base: erks.NewBase(Category, code, err, opts...)}
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

// Split breaks a status code into its classification, category and
// title. ok is false when the code does not have four dotted parts.
func Split(code string) (classification, category, title string, ok bool) {
	parts := strings.Split(code, ".")
	if len(parts) != 4 || parts[0] != "Neo" {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}

func classify(code string) erks.Code {
	classification, category, title, ok := Split(code)
	if !ok {
		return CodeNeo4j
	}
	switch classification {
	case "TransientError":
		return CodeTransient
	case "DatabaseError":
		return CodeDatabase
	case "ClientError":
		return clientCode(category, title)
	}
	return CodeNeo4j
}

func clientCode(category, title string) erks.Code {
	switch {
	case category == "Security":
		return CodeSecurity
	case title == "EntityNotFound" || title == "DatabaseNotFound":
		return CodeNotFound
	case title == "SyntaxError":
		return CodeSyntax
	case title == "ConstraintValidationFailed":
		return CodeConstraint
	case category == "Cluster" && title == "NotALeader":
		return CodeTransient
	}
	return CodeClient
}
