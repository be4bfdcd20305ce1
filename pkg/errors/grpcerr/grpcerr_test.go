package grpcerr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// ===========================================================================
// Inbound classification
// ===========================================================================

func TestNew_StatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status      codes.Code
		code        erks.Code
		recoverable bool
	}{
		{codes.Canceled, CodeCancelled, false},
		{codes.InvalidArgument, CodeInvalidArgument, false},
		{codes.FailedPrecondition, CodeInvalidArgument, false},
		{codes.DeadlineExceeded, CodeDeadlineExceeded, true},
		{codes.NotFound, CodeNotFound, false},
		{codes.AlreadyExists, CodeAlreadyExists, false},
		{codes.PermissionDenied, CodePermissionDenied, false},
		{codes.Unauthenticated, CodeUnauthenticated, false},
		{codes.ResourceExhausted, CodeResourceExhausted, true},
		{codes.Aborted, CodeAborted, true},
		{codes.Unimplemented, CodeUnimplemented, false},
		{codes.Unavailable, CodeUnavailable, true},
		{codes.Internal, CodeInternal, false},
		{codes.DataLoss, CodeInternal, false},
		{codes.Unknown, CodeGRPC, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			t.Parallel()
			err := New(status.Error(tt.status, "rpc failure"))
			assert.Equal(t, Category, err.Category())
			assert.Equal(t, tt.code, err.Code())
			assert.Equal(t, tt.recoverable, err.Recoverable())
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestFrom_Converter(t *testing.T) {
	t.Parallel()
	e := erks.From(fmt.Errorf("search points: %w", status.Error(codes.Unavailable, "connection reset")))
	assert.Equal(t, Category, e.Category())
	assert.Equal(t, CodeUnavailable, e.Code())
	assert.True(t, e.Recoverable())
}

func TestFrom(t *testing.T) {
	t.Parallel()
	assert.Nil(t, From(nil))
	assert.Equal(t, CodeGRPC, From(errors.New("boom")).Code())
}

// ===========================================================================
// Outbound statuses
// ===========================================================================

func TestToStatus_Conditions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", erks.Validation("email", "x"), codes.InvalidArgument},
		{"invalid state", erks.InvalidState("closed", "open"), codes.FailedPrecondition},
		{"resource limit", erks.ResourceLimit("connections", 10, 10, ""), codes.ResourceExhausted},
		{"not found", erks.IO("open", "/etc/app.yaml", os.ErrNotExist), codes.NotFound},
		{"cancelled", context.Canceled, codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"unknown", errors.New("boom"), codes.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st := ToStatus(tt.err)
			require.NotNil(t, st)
			assert.Equal(t, tt.want, st.Code())
		})
	}
}

func TestToStatus_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ToStatus(nil))
}

func TestToStatus_KeepsExistingStatus(t *testing.T) {
	t.Parallel()
	orig := status.Error(codes.NotFound, "no such collection")

	assert.Equal(t, codes.NotFound, ToStatus(orig).Code())
	assert.Equal(t, "no such collection", ToStatus(From(orig)).Message())
}

func TestToStatus_RoundTripsCode(t *testing.T) {
	t.Parallel()
	src := erks.Wrap(erks.Validation("email", "x")).WithComponent("signup")

	st := ToStatus(src)
	require.Len(t, st.Details(), 1)
	info, ok := st.Details()[0].(*errdetails.ErrorInfo)
	require.True(t, ok)
	assert.Equal(t, Domain, info.GetDomain())
	assert.Equal(t, string(erks.CodeValidation), info.GetReason())
	assert.Equal(t, "email", info.GetMetadata()["field"])

	back := New(st.Err())
	assert.Equal(t, CodeInvalidArgument, back.Code())
	assert.Equal(t, erks.CodeValidation, back.RemoteCode)
}

// ===========================================================================
// Interceptor
// ===========================================================================

func TestUnaryServerInterceptor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	icpt := UnaryServerInterceptor(logger)
	info := &grpc.UnaryServerInfo{FullMethod: "/svc.Accounts/Create"}

	resp, err := icpt(context.Background(), "req", info, func(context.Context, any) (any, error) {
		return nil, erks.Validation("email", "x")
	})
	assert.Nil(t, resp)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Contains(t, buf.String(), "/svc.Accounts/Create")

	resp, err = icpt(context.Background(), "req", info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
