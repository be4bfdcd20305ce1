// Package rediserr classifies github.com/redis/go-redis/v9 failures into
// the "redis" category. Importing it registers the converter with
// erks.From.
package rediserr

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Category is the category of every Redis error.
const Category erks.Category = "redis"

// Conditions specific to Redis.
const (
	ConditionRedirect  erks.Condition = "redirect"
	ConditionWrongType erks.Condition = "wrong_type"
	ConditionTxFailed  erks.Condition = "tx_failed"
)

// Codes registered by this package.
const (
	CodeRedis       erks.Code = "REDIS_ERROR"
	CodeNil         erks.Code = "REDIS_NIL"
	CodeClosed      erks.Code = "REDIS_CLOSED"
	CodeTxFailed    erks.Code = "REDIS_TX_FAILED"
	CodeUnavailable erks.Code = "REDIS_UNAVAILABLE"
	CodeRedirect    erks.Code = "REDIS_REDIRECT"
	CodeAuth        erks.Code = "REDIS_AUTH"
	CodeWrongType   erks.Code = "REDIS_WRONG_TYPE"
	CodeTimeout     erks.Code = "REDIS_TIMEOUT"
)

func init() {
	erks.RegisterCodes(
		erks.CodeDefinition{Code: CodeRedis, Category: Category, Condition: erks.ConditionGeneric, Severity: erks.SeverityError, Description: "redis error"},
		erks.CodeDefinition{Code: CodeNil, Category: Category, Condition: erks.ConditionNotFound, Severity: erks.SeverityInfo, Description: "redis key not found"},
		erks.CodeDefinition{Code: CodeClosed, Category: Category, Condition: erks.ConditionClosed, Severity: erks.SeverityError, Description: "redis client closed"},
		erks.CodeDefinition{Code: CodeTxFailed, Category: Category, Condition: ConditionTxFailed, Severity: erks.SeverityWarning, Recoverable: true, Description: "redis transaction aborted"},
		erks.CodeDefinition{Code: CodeUnavailable, Category: Category, Condition: erks.ConditionUnavailable, Severity: erks.SeverityWarning, Recoverable: true, Description: "redis temporarily unavailable"},
		erks.CodeDefinition{Code: CodeRedirect, Category: Category, Condition: ConditionRedirect, Severity: erks.SeverityInfo, Recoverable: true, Description: "redis cluster redirect"},
		erks.CodeDefinition{Code: CodeAuth, Category: Category, Condition: erks.ConditionUnauthorized, Severity: erks.SeverityCritical, Description: "redis authentication failed"},
		erks.CodeDefinition{Code: CodeWrongType, Category: Category, Condition: ConditionWrongType, Severity: erks.SeverityError, Description: "redis operation against wrong type"},
		erks.CodeDefinition{Code: CodeTimeout, Category: Category, Condition: erks.ConditionTimeout, Severity: erks.SeverityWarning, Recoverable: true, Description: "redis operation timed out"},
	)

	erks.RegisterConverter("redis", func(err error) (erks.Variant, bool) {
		var rErr redis.Error
		if errors.As(err, &rErr) || errors.Is(err, redis.ErrClosed) || errors.Is(err, redis.TxFailedErr) {
			return New(err), true
		}
		return nil, false
	})
}

// serverPrefixes maps reply error prefixes to codes.
var serverPrefixes = []struct {
	prefix string
	code   erks.Code
}{
	{"LOADING", CodeUnavailable},
	{"TRYAGAIN", CodeUnavailable},
	{"BUSY", CodeUnavailable},
	{"CLUSTERDOWN", CodeUnavailable},
	{"MASTERDOWN", CodeUnavailable},
	{"READONLY", CodeUnavailable},
	{"MOVED", CodeRedirect},
	{"ASK", CodeRedirect},
	{"NOAUTH", CodeAuth},
	{"WRONGPASS", CodeAuth},
	{"NOPERM", CodeAuth},
	{"WRONGTYPE", CodeWrongType},
}

// Error is the variant for Redis failures.
type Error struct {
	erks.Base

	// Prefix is the first word of a server error reply, such as WRONGTYPE.
	Prefix string
}

// New classifies err. Errors that Redis did not report become
// REDIS_ERROR unless they are timeouts.
func New(err error, opts ...erks.Option) *Error {
	code, prefix := classify(err)
	extra := []erks.Option{erks.WithField("reply", prefix)}
	return &Error{
		Base:   erks.NewBase(Category, code, err, append(extra, opts...)...),
		Prefix: prefix,
	}
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

// IsNil reports whether err is the missing key reply.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func classify(err error) (erks.Code, string) {
	switch {
	case errors.Is(err, redis.Nil):
		return CodeNil, ""
	case errors.Is(err, redis.ErrClosed):
		return CodeClosed, ""
	case errors.Is(err, redis.TxFailedErr):
		return CodeTxFailed, ""
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout, ""
	}

	var rErr redis.Error
	if errors.As(err, &rErr) {
		prefix, _, _ := strings.Cut(rErr.Error(), " ")
		for _, p := range serverPrefixes {
			if prefix == p.prefix {
				return p.code, prefix
			}
		}
		return CodeRedis, prefix
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout, ""
	}
	return CodeRedis, ""
}
