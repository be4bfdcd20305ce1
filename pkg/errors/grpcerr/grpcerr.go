// Package grpcerr maps between unified errors and gRPC statuses.
//
// Inbound, errors carrying a *status.Status are classified into the
// "grpc" category by status code; importing the package registers that
// converter with erks.From. Outbound, [ToStatus] and
// [UnaryServerInterceptor] turn any error into a status whose code
// follows the error's condition. The original erks code travels in an
// ErrorInfo detail and is surfaced again as [Error.RemoteCode].
package grpcerr

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Category is the category of every gRPC error.
const Category erks.Category = "grpc"

// Domain is the ErrorInfo domain used for erks codes.
const Domain = "erks"

// Conditions specific to gRPC.
const (
	ConditionUnimplemented erks.Condition = "unimplemented"
	ConditionInternal      erks.Condition = "internal"
)

// Codes registered by this package.
const (
	CodeGRPC              erks.Code = "GRPC_ERROR"
	CodeCancelled         erks.Code = "GRPC_CANCELLED"
	CodeInvalidArgument   erks.Code = "GRPC_INVALID_ARGUMENT"
	CodeDeadlineExceeded  erks.Code = "GRPC_DEADLINE_EXCEEDED"
	CodeNotFound          erks.Code = "GRPC_NOT_FOUND"
	CodeAlreadyExists     erks.Code = "GRPC_ALREADY_EXISTS"
	CodePermissionDenied  erks.Code = "GRPC_PERMISSION_DENIED"
	CodeUnauthenticated   erks.Code = "GRPC_UNAUTHENTICATED"
	CodeResourceExhausted erks.Code = "GRPC_RESOURCE_EXHAUSTED"
	CodeAborted           erks.Code = "GRPC_ABORTED"
	CodeUnimplemented     erks.Code = "GRPC_UNIMPLEMENTED"
	CodeUnavailable       erks.Code = "GRPC_UNAVAILABLE"
	CodeInternal          erks.Code = "GRPC_INTERNAL"
)

func init() {
	erks.RegisterCodes(
		erks.CodeDefinition{Code: CodeGRPC, Category: Category, Condition: erks.ConditionGeneric, Severity: erks.SeverityError, Description: "rpc failed"},
		erks.CodeDefinition{Code: CodeCancelled, Category: Category, Condition: erks.ConditionCancelled, Severity: erks.SeverityWarning, Description: "rpc cancelled"},
		erks.CodeDefinition{Code: CodeInvalidArgument, Category: Category, Condition: erks.ConditionInvalidRequest, Severity: erks.SeverityError, Description: "rpc rejected arguments"},
		erks.CodeDefinition{Code: CodeDeadlineExceeded, Category: Category, Condition: erks.ConditionTimeout, Severity: erks.SeverityWarning, Recoverable: true, Description: "rpc deadline exceeded"},
		erks.CodeDefinition{Code: CodeNotFound, Category: Category, Condition: erks.ConditionNotFound, Severity: erks.SeverityWarning, Description: "rpc resource not found"},
		erks.CodeDefinition{Code: CodeAlreadyExists, Category: Category, Condition: erks.ConditionAlreadyExists, Severity: erks.SeverityWarning, Description: "rpc resource already exists"},
		erks.CodeDefinition{Code: CodePermissionDenied, Category: Category, Condition: erks.ConditionPermissionDenied, Severity: erks.SeverityCritical, Description: "rpc permission denied"},
		erks.CodeDefinition{Code: CodeUnauthenticated, Category: Category, Condition: erks.ConditionUnauthorized, Severity: erks.SeverityCritical, Description: "rpc unauthenticated"},
		erks.CodeDefinition{Code: CodeResourceExhausted, Category: Category, Condition: erks.ConditionRateLimited, Severity: erks.SeverityWarning, Recoverable: true, Description: "rpc resource exhausted"},
		erks.CodeDefinition{Code: CodeAborted, Category: Category, Condition: erks.ConditionConflict, Severity: erks.SeverityWarning, Recoverable: true, Description: "rpc aborted"},
		erks.CodeDefinition{Code: CodeUnimplemented, Category: Category, Condition: ConditionUnimplemented, Severity: erks.SeverityError, Description: "rpc not implemented"},
		erks.CodeDefinition{Code: CodeUnavailable, Category: Category, Condition: erks.ConditionUnavailable, Severity: erks.SeverityWarning, Recoverable: true, Description: "rpc service unavailable"},
		erks.CodeDefinition{Code: CodeInternal, Category: Category, Condition: ConditionInternal, Severity: erks.SeverityCritical, Description: "rpc internal error"},
	)

	erks.RegisterConverter("grpc", func(err error) (erks.Variant, bool) {
		if _, ok := status.FromError(err); !ok {
			return nil, false
		}
		return New(err), true
	})
}

var inbound = map[codes.Code]erks.Code{
	codes.Canceled:           CodeCancelled,
	codes.InvalidArgument:    CodeInvalidArgument,
	codes.OutOfRange:         CodeInvalidArgument,
	codes.FailedPrecondition: CodeInvalidArgument,
	codes.DeadlineExceeded:   CodeDeadlineExceeded,
	codes.NotFound:           CodeNotFound,
	codes.AlreadyExists:      CodeAlreadyExists,
	codes.PermissionDenied:   CodePermissionDenied,
	codes.Unauthenticated:    CodeUnauthenticated,
	codes.ResourceExhausted:  CodeResourceExhausted,
	codes.Aborted:            CodeAborted,
	codes.Unimplemented:      CodeUnimplemented,
	codes.Unavailable:        CodeUnavailable,
	codes.Internal:           CodeInternal,
	codes.DataLoss:           CodeInternal,
}

// Error is the variant for failed RPCs.
type Error struct {
	erks.Base

	// StatusCode is the gRPC status code.
	StatusCode codes.Code

	// RemoteCode is the erks code reported by the peer, when the status
	// carried one.
	RemoteCode erks.Code
}

// New classifies err by its gRPC status code. Errors that carry no
// status classify as codes.Unknown.
func New(err error, opts ...erks.Option) *Error {
	st, _ := status.FromError(err)
	code, ok := inbound[st.Code()]
	if !ok {
		code = CodeGRPC
	}

	extra := []erks.Option{erks.WithField("grpc_code", st.Code().String())}
	remote := remoteCode(st)
	if remote != "" {
		extra = append(extra, erks.WithField("remote_code", string(remote)))
	}
	return &Error{
		Base:       erks.NewBase(Category, code, err, append(extra, opts...)...),
		StatusCode: st.Code(),
		RemoteCode: remote,
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

// ToStatus converts err into a gRPC status. Errors that already carry a
// status keep it. Others are converted with erks.From and mapped by
// condition; the erks code, category and metadata are attached as an
// ErrorInfo detail. ToStatus returns nil for a nil err.
func ToStatus(err error) *status.Status {
	if err == nil {
		return nil
	}
	var e *erks.Error
	if !errors.As(err, &e) {
		if st, ok := status.FromError(err); ok {
			return st
		}
	}
	if e == nil {
		e = erks.From(err)
	}
	if v, ok := e.Variant().(*Error); ok {
		return status.Convert(v.Unwrap())
	}

	st := status.New(StatusCodeOf(e), e.Error())
	info := &errdetails.ErrorInfo{
		Reason: string(e.Code()),
		Domain: Domain,
		Metadata: map[string]string{
			"category": string(e.Category()),
			"severity": e.Severity().String(),
		},
	}
	for k, v := range e.Metadata().Fields() {
		info.Metadata[k] = v
	}
	if detailed, detailErr := st.WithDetails(info); detailErr == nil {
		return detailed
	}
	return st
}

// StatusCodeOf returns the gRPC status code for the error's condition.
func StatusCodeOf(e *erks.Error) codes.Code {
	if e == nil {
		return codes.OK
	}
	def, _ := e.Code().Definition()
	switch def.Condition {
	case erks.ConditionNotFound:
		return codes.NotFound
	case erks.ConditionPermissionDenied:
		return codes.PermissionDenied
	case erks.ConditionUnauthorized:
		return codes.Unauthenticated
	case erks.ConditionAlreadyExists:
		return codes.AlreadyExists
	case erks.ConditionConflict:
		return codes.Aborted
	case erks.ConditionTimeout, erks.ConditionDeadlineExceeded:
		return codes.DeadlineExceeded
	case erks.ConditionCancelled:
		return codes.Canceled
	case erks.ConditionValidation, erks.ConditionInvalidValue, erks.ConditionInvalidRequest,
		erks.ConditionParse, erks.ConditionSyntax, erks.ConditionMissingKey,
		erks.ConditionTypeMismatch, erks.ConditionPattern:
		return codes.InvalidArgument
	case erks.ConditionInvalidState, erks.ConditionBusinessLogic:
		return codes.FailedPrecondition
	case erks.ConditionResourceLimit, erks.ConditionRateLimited, erks.ConditionOutOfResources:
		return codes.ResourceExhausted
	case erks.ConditionUnavailable, erks.ConditionConnect, erks.ConditionNetwork:
		return codes.Unavailable
	case ConditionUnimplemented, erks.ConditionUnsupportedFormat:
		return codes.Unimplemented
	}
	switch {
	case e.Recoverable():
		return codes.Unavailable
	case e.Severity() == erks.SeverityCritical:
		return codes.Internal
	}
	return codes.Unknown
}

// UnaryServerInterceptor converts handler errors into statuses with
// [ToStatus]. When logger is non-nil each failure is logged at the
// level matching its severity.
func UnaryServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if logger != nil {
			erks.Log(ctx, logger, "rpc failed", err, slog.String("method", info.FullMethod))
		}
		return resp, ToStatus(err).Err()
	}
}

func remoteCode(st *status.Status) erks.Code {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == Domain {
			return erks.Code(info.GetReason())
		}
	}
	return ""
}
