// Package minioerr classifies S3 error responses returned by
// github.com/minio/minio-go/v7 into the "minio" category. Importing it
// registers the converter with erks.From.
package minioerr

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/minio/minio-go/v7"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Category is the category of every object storage error.
const Category erks.Category = "minio"

// Codes registered by this package.
const (
	CodeS3             erks.Code = "S3_ERROR"
	CodeNotFound       erks.Code = "S3_NOT_FOUND"
	CodeAccessDenied   erks.Code = "S3_ACCESS_DENIED"
	CodeThrottled      erks.Code = "S3_THROTTLED"
	CodeUnavailable    erks.Code = "S3_UNAVAILABLE"
	CodeConflict       erks.Code = "S3_CONFLICT"
	CodeInvalidRequest erks.Code = "S3_INVALID_REQUEST"
)

func init() {
	erks.RegisterCodes(
		erks.CodeDefinition{Code: CodeS3, Category: Category, Condition: erks.ConditionGeneric, Severity: erks.SeverityError, Description: "object storage error"},
		erks.CodeDefinition{Code: CodeNotFound, Category: Category, Condition: erks.ConditionNotFound, Severity: erks.SeverityWarning, Description: "object or bucket not found"},
		erks.CodeDefinition{Code: CodeAccessDenied, Category: Category, Condition: erks.ConditionPermissionDenied, Severity: erks.SeverityCritical, Description: "object storage access denied"},
		erks.CodeDefinition{Code: CodeThrottled, Category: Category, Condition: erks.ConditionRateLimited, Severity: erks.SeverityWarning, Recoverable: true, Description: "object storage throttled"},
		erks.CodeDefinition{Code: CodeUnavailable, Category: Category, Condition: erks.ConditionUnavailable, Severity: erks.SeverityError, Recoverable: true, Description: "object storage unavailable"},
		erks.CodeDefinition{Code: CodeConflict, Category: Category, Condition: erks.ConditionConflict, Severity: erks.SeverityWarning, Description: "object storage conflict"},
		erks.CodeDefinition{Code: CodeInvalidRequest, Category: Category, Condition: erks.ConditionInvalidRequest, Severity: erks.SeverityError, Description: "invalid object storage request"},
	)

	erks.RegisterConverter("minio", func(err error) (erks.Variant, bool) {
		if _, ok := asResponse(err); !ok {
			return nil, false
		}
		return New(err), true
	})
}

var s3Codes = map[string]erks.Code{
	"NoSuchKey":                  CodeNotFound,
	"NoSuchBucket":               CodeNotFound,
	"NoSuchUpload":               CodeNotFound,
	"NoSuchVersion":              CodeNotFound,
	"AccessDenied":               CodeAccessDenied,
	"InvalidAccessKeyId":         CodeAccessDenied,
	"SignatureDoesNotMatch":      CodeAccessDenied,
	"AllAccessDisabled":          CodeAccessDenied,
	"SlowDown":                   CodeThrottled,
	"SlowDownRead":               CodeThrottled,
	"SlowDownWrite":              CodeThrottled,
	"RequestTimeout":             CodeThrottled,
	"RequestTimeTooSkewed":       CodeInvalidRequest,
	"InternalError":              CodeUnavailable,
	"ServiceUnavailable":         CodeUnavailable,
	"XMinioServerNotInitialized": CodeUnavailable,
	"BucketAlreadyExists":        CodeConflict,
	"BucketAlreadyOwnedByYou":    CodeConflict,
	"BucketNotEmpty":             CodeConflict,
	"OperationAborted":           CodeConflict,
	"PreconditionFailed":         CodeConflict,
	"InvalidBucketName":          CodeInvalidRequest,
	"InvalidArgument":            CodeInvalidRequest,
	"InvalidRange":               CodeInvalidRequest,
	"EntityTooLarge":             CodeInvalidRequest,
	"MalformedXML":               CodeInvalidRequest,
}

// Error is the variant for object storage failures.
type Error struct {
	erks.Base

	// S3Code is the error code of the S3 response, such as NoSuchKey.
	S3Code string

	// Bucket and Key name the object involved, when reported.
	Bucket string
	Key    string

	// RequestID identifies the request on the server.
	RequestID string

	// StatusCode is the HTTP status of the response.
	StatusCode int
}

// New classifies err by its S3 error code, falling back to the HTTP
// status. Errors without an S3 response become S3_ERROR.
func New(err error, opts ...erks.Option) *Error {
	resp, ok := asResponse(err)
	if !ok {
		return &Error{Base: erks.NewBase(Category, CodeS3, err, opts...)}
	}

	extra := []erks.Option{
		erks.WithField("s3_code", resp.Code),
		erks.WithField("bucket", resp.BucketName),
		erks.WithField("key", resp.Key),
		erks.WithField("request_id", resp.RequestID),
	}
	if resp.StatusCode != 0 {
		extra = append(extra, erks.WithField("status", strconv.Itoa(resp.StatusCode)))
	}
	return &Error{
		Base:       erks.NewBase(Category, classify(resp), err, append(extra, opts...)...),
		S3Code:     resp.Code,
		Bucket:     resp.BucketName,
		Key:        resp.Key,
		RequestID:  resp.RequestID,
		StatusCode: resp.StatusCode,
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

// IsNotFound reports whether err is a missing object or bucket.
func IsNotFound(err error) bool {
	return erks.HasCode(err, CodeNotFound)
}

func classify(resp minio.ErrorResponse) erks.Code {
	if code, ok := s3Codes[resp.Code]; ok {
		return code
	}
	switch s := resp.StatusCode; {
	case s == http.StatusNotFound:
		return CodeNotFound
	case s == http.StatusForbidden || s == http.StatusUnauthorized:
		return CodeAccessDenied
	case s == http.StatusTooManyRequests:
		return CodeThrottled
	case s == http.StatusConflict || s == http.StatusPreconditionFailed:
		return CodeConflict
	case s >= 500:
		return CodeUnavailable
	case s >= 400:
		return CodeInvalidRequest
	}
	return CodeS3
}

func asResponse(err error) (minio.ErrorResponse, bool) {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp, true
	}
	var ptr *minio.ErrorResponse
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return minio.ErrorResponse{}, false
}
