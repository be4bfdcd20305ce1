package retry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/StricklySoft/erks/internal/testutil"
	erks "github.com/StricklySoft/erks/pkg/errors"
	_ "github.com/StricklySoft/erks/pkg/errors/httperr"
)

// ===========================================================================
// Test helpers
// ===========================================================================

// mockOperation is a testify mock standing in for the retried call.
type mockOperation struct {
	mock.Mock
}

func (m *mockOperation) Call(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// sleepRecorder replaces the timer wait and records requested delays.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func transient() *erks.Error {
	return erks.Wrap(erks.NewCustom(erks.CodeCustom, nil, "backend busy", erks.WithRecoverable(true)))
}

func permanent() *erks.Error {
	return erks.Wrap(erks.Validation("id", "-1", ">= 0"))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func testPolicy(maxAttempts int) Policy {
	p := DefaultPolicy()
	p.MaxAttempts = maxAttempts
	p.Jitter = 0
	return p
}

// ===========================================================================
// Retry scenarios
// ===========================================================================

func TestDo_SucceedsOnThirdAttempt(t *testing.T) {
	t.Parallel()
	op := &mockOperation{}
	op.On("Call", mock.Anything).Return("", transient()).Twice()
	op.On("Call", mock.Anything).Return("done", nil).Once()
	rec := &sleepRecorder{}

	got, err := Do(context.Background(), testPolicy(5), op.Call,
		withSleep(rec.sleep), WithLogger(quietLogger()))

	require.NoError(t, err)
	assert.Equal(t, "done", got)
	op.AssertNumberOfCalls(t, "Call", 3)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.recorded())
}

func TestDo_NonRecoverableReturnsImmediately(t *testing.T) {
	t.Parallel()
	op := &mockOperation{}
	op.On("Call", mock.Anything).Return("", permanent())
	rec := &sleepRecorder{}

	_, err := Do(context.Background(), testPolicy(5), op.Call,
		withSleep(rec.sleep), WithLogger(quietLogger()))

	require.Error(t, err)
	op.AssertNumberOfCalls(t, "Call", 1)
	assert.Empty(t, rec.recorded())
	testutil.AssertCode(t, err, erks.CodeValidation)
	attempts, _ := erks.From(err).Metadata().Get("attempts")
	assert.Equal(t, "1", attempts)
}

func TestDo_ExhaustionReturnsOriginalError(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection reset by peer")
	orig := erks.Wrap(erks.NewCustom(erks.CodeCustom, cause, "backend busy", erks.WithRecoverable(true)))
	op := &mockOperation{}
	op.On("Call", mock.Anything).Return("", orig)

	_, err := Do(context.Background(), testPolicy(3), op.Call,
		withSleep((&sleepRecorder{}).sleep), WithLogger(quietLogger()))

	require.Error(t, err)
	op.AssertNumberOfCalls(t, "Call", 3)

	e := erks.From(err)
	assert.Equal(t, erks.CodeCustom, e.Code())
	assert.ErrorIs(t, err, cause)
	attempts, _ := e.Metadata().Get("attempts")
	assert.Equal(t, "3", attempts)
	assert.Equal(t, orig.Error(), e.Error())
}

func TestDo_ForeignErrorsAreClassified(t *testing.T) {
	t.Parallel()
	calls := 0
	_, err := Do(context.Background(), testPolicy(3), func(context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	}, withSleep((&sleepRecorder{}).sleep), WithLogger(quietLogger()))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	testutil.AssertCode(t, err, erks.CodeDeadlineExceeded)
}

func TestDo_MaxElapsedStopsEarly(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	op := &mockOperation{}
	op.On("Call", mock.Anything).Return("", transient()).Run(func(mock.Arguments) {
		now = now.Add(400 * time.Millisecond)
	})

	p := testPolicy(10)
	p.MaxElapsed = time.Second

	_, err := Do(context.Background(), p, op.Call,
		withSleep((&sleepRecorder{}).sleep),
		withClock(func() time.Time { return now }),
		WithLogger(quietLogger()))

	require.Error(t, err)
	// The third failure at 1.2s leaves no room for a 400ms wait.
	op.AssertNumberOfCalls(t, "Call", 3)
	attempts, _ := erks.From(err).Metadata().Get("attempts")
	assert.Equal(t, "3", attempts)
}

func TestDo_InvalidPolicy(t *testing.T) {
	t.Parallel()
	op := &mockOperation{}

	_, err := Do(context.Background(), Policy{}, op.Call)
	require.Error(t, err)
	testutil.AssertCode(t, err, erks.CodeValidation)
	op.AssertNotCalled(t, "Call", mock.Anything)
}

// ===========================================================================
// Cancellation
// ===========================================================================

func TestDo_CancelledDuringWait(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &mockOperation{}
	op.On("Call", mock.Anything).Return("", transient())

	p := testPolicy(5)
	p.BaseDelay = time.Hour
	p.MaxDelay = time.Hour

	start := time.Now()
	_, err := Do(ctx, p, op.Call,
		WithNotify(func(Attempt) { cancel() }),
		WithLogger(quietLogger()))

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Minute)
	op.AssertNumberOfCalls(t, "Call", 1)

	e := erks.From(err)
	assert.Equal(t, erks.CodeCancelled, e.Code())
	assert.ErrorIs(t, err, context.Canceled)
	md := e.Metadata()
	attempts, _ := md.Get("attempts")
	lastCode, _ := md.Get("last_code")
	assert.Equal(t, "1", attempts)
	assert.Equal(t, string(erks.CodeCustom), lastCode)
}

func TestDo_CancelledDuringAttempt(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &mockOperation{}
	op.On("Call", mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return("", &url.Error{Op: "Get", URL: "http://example.test/", Err: context.Canceled})

	_, err := Do(ctx, testPolicy(5), op.Call, WithLogger(quietLogger()))

	require.Error(t, err)
	op.AssertNumberOfCalls(t, "Call", 1)
	e := testutil.RequireCode(t, err, erks.CodeCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "1", testutil.RequireField(t, e, "attempts"))
	assert.Equal(t, string(erks.CodeCancelled), testutil.RequireField(t, e, "last_code"))
}

func TestDo_CancelledAfterRecoverableFailure(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &mockOperation{}
	op.On("Call", mock.Anything).Run(func(mock.Arguments) { cancel() }).Return("", transient())

	_, err := Do(ctx, testPolicy(5), op.Call, WithLogger(quietLogger()))

	op.AssertNumberOfCalls(t, "Call", 1)
	e := testutil.RequireCode(t, err, erks.CodeCancelled)
	assert.Equal(t, string(erks.CodeCustom), testutil.RequireField(t, e, "last_code"))
}

func TestDo_CancelledBeforeFirstAttempt(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	op := &mockOperation{}
	_, err := Do(ctx, testPolicy(3), op.Call)

	require.Error(t, err)
	testutil.AssertCode(t, err, erks.CodeDeadlineExceeded)
	op.AssertNotCalled(t, "Call", mock.Anything)
	_, hasLast := erks.From(err).Metadata().Get("last_code")
	assert.False(t, hasLast)
}

// ===========================================================================
// Observability
// ===========================================================================

func TestDo_NotifyAndLog(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	op := &mockOperation{}
	op.On("Call", mock.Anything).Return("", transient())

	var seen []Attempt
	_, err := Do(context.Background(), testPolicy(3), op.Call,
		withSleep((&sleepRecorder{}).sleep),
		WithNotify(func(a Attempt) { seen = append(seen, a) }),
		WithLogger(logger))
	require.Error(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[0].Number)
	assert.Equal(t, 100*time.Millisecond, seen[0].Delay)
	assert.Equal(t, erks.CodeCustom, seen[1].Err.Code())

	out := buf.String()
	assert.Contains(t, out, `"retry.run_id"`)
	assert.Contains(t, out, `"msg":"retrying"`)
	assert.Contains(t, out, `"msg":"retry attempts exhausted"`)
}

func TestDo_RecordsSpan(t *testing.T) {
	t.Parallel()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	op := &mockOperation{}
	op.On("Call", mock.Anything).Return("", transient()).Twice()
	op.On("Call", mock.Anything).Return("done", nil).Once()

	_, err := Do(context.Background(), testPolicy(5), op.Call,
		withSleep((&sleepRecorder{}).sleep),
		WithTracer(tp.Tracer("test")),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "retry.Do", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Len(t, spans[0].Events, 2)
}

// ===========================================================================
// Run
// ===========================================================================

func TestRun(t *testing.T) {
	t.Parallel()
	calls := 0
	err := Run(context.Background(), testPolicy(3), func(context.Context) error {
		calls++
		if calls < 2 {
			return transient()
		}
		return nil
	}, withSleep((&sleepRecorder{}).sleep), WithLogger(quietLogger()))

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSleep(t *testing.T) {
	t.Parallel()
	require.NoError(t, sleep(context.Background(), time.Millisecond))
	require.NoError(t, sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}
