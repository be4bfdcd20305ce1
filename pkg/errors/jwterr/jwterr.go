// Package jwterr classifies token validation failures reported by
// github.com/golang-jwt/jwt/v5 into the "jwt" category. Importing it
// registers the converter with erks.From.
package jwterr

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Category is the category of every token error.
const Category erks.Category = "jwt"

// Conditions specific to token validation.
const (
	ConditionExpired          erks.Condition = "expired"
	ConditionNotValidYet      erks.Condition = "not_valid_yet"
	ConditionSignatureInvalid erks.Condition = "signature_invalid"
	ConditionMalformed        erks.Condition = "malformed"
	ConditionClaimsInvalid    erks.Condition = "claims_invalid"
	ConditionKeyInvalid       erks.Condition = "key_invalid"
)

// Codes registered by this package.
const (
	CodeInvalid          erks.Code = "JWT_INVALID"
	CodeExpired          erks.Code = "JWT_EXPIRED"
	CodeNotValidYet      erks.Code = "JWT_NOT_VALID_YET"
	CodeSignatureInvalid erks.Code = "JWT_SIGNATURE_INVALID"
	CodeMalformed        erks.Code = "JWT_MALFORMED"
	CodeClaimsInvalid    erks.Code = "JWT_CLAIMS_INVALID"
	CodeKeyInvalid       erks.Code = "JWT_KEY_INVALID"
)

func init() {
	erks.RegisterCodes(
		erks.CodeDefinition{Code: CodeInvalid, Category: Category, Condition: erks.ConditionGeneric, Severity: erks.SeverityError, Description: "invalid token"},
		erks.CodeDefinition{Code: CodeExpired, Category: Category, Condition: ConditionExpired, Severity: erks.SeverityWarning, Description: "token has expired"},
		erks.CodeDefinition{Code: CodeNotValidYet, Category: Category, Condition: ConditionNotValidYet, Severity: erks.SeverityWarning, Recoverable: true, Description: "token is not yet valid"},
		erks.CodeDefinition{Code: CodeSignatureInvalid, Category: Category, Condition: ConditionSignatureInvalid, Severity: erks.SeverityCritical, Description: "token signature is invalid"},
		erks.CodeDefinition{Code: CodeMalformed, Category: Category, Condition: ConditionMalformed, Severity: erks.SeverityError, Description: "token is malformed"},
		erks.CodeDefinition{Code: CodeClaimsInvalid, Category: Category, Condition: ConditionClaimsInvalid, Severity: erks.SeverityError, Description: "token claims are invalid"},
		erks.CodeDefinition{Code: CodeKeyInvalid, Category: Category, Condition: ConditionKeyInvalid, Severity: erks.SeverityCritical, Description: "token key is unusable"},
	)

	erks.RegisterConverter("jwt", func(err error) (erks.Variant, bool) {
		if classify(err) == "" {
			return nil, false
		}
		return New(err), true
	})
}

// Order matters: expiry is reported together with ErrTokenInvalidClaims
// and must win over it.
var sentinels = []struct {
	err  error
	code erks.Code
}{
	{jwt.ErrTokenExpired, CodeExpired},
	{jwt.ErrTokenNotValidYet, CodeNotValidYet},
	{jwt.ErrTokenUsedBeforeIssued, CodeNotValidYet},
	{jwt.ErrTokenSignatureInvalid, CodeSignatureInvalid},
	{jwt.ErrSignatureInvalid, CodeSignatureInvalid},
	{jwt.ErrTokenMalformed, CodeMalformed},
	{jwt.ErrTokenInvalidAudience, CodeClaimsInvalid},
	{jwt.ErrTokenInvalidIssuer, CodeClaimsInvalid},
	{jwt.ErrTokenInvalidSubject, CodeClaimsInvalid},
	{jwt.ErrTokenInvalidId, CodeClaimsInvalid},
	{jwt.ErrTokenRequiredClaimMissing, CodeClaimsInvalid},
	{jwt.ErrTokenInvalidClaims, CodeClaimsInvalid},
	{jwt.ErrInvalidKey, CodeKeyInvalid},
	{jwt.ErrInvalidKeyType, CodeKeyInvalid},
	{jwt.ErrHashUnavailable, CodeKeyInvalid},
	{jwt.ErrTokenUnverifiable, CodeKeyInvalid},
}

// Error is the variant for token validation failures.
type Error struct {
	erks.Base
}

// New classifies err. Errors that are not token validation failures
// become JWT_INVALID.
func New(err error, opts ...erks.Option) *Error {
	code := classify(err)
	if code == "" {
		code = CodeInvalid
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

// Parse parses and validates a token like jwt.Parse and reports failures
// as unified errors.
func Parse(token string, keyFunc jwt.Keyfunc, opts ...jwt.ParserOption) (*jwt.Token, error) {
	parsed, err := jwt.Parse(token, keyFunc, opts...)
	if err != nil {
		return nil, From(err)
	}
	return parsed, nil
}

func classify(err error) erks.Code {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return ""
}
