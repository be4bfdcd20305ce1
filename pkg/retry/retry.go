// Package retry re-invokes fallible operations whose failures are
// recoverable, waiting with exponential backoff and jitter between
// attempts.
//
// Failures are classified with erks.From. A failure that is not
// recoverable ends the loop at once; the last failure is returned as is,
// annotated with the number of attempts, once the attempt or time budget
// is spent:
//
//	body, err := retry.Do(ctx, retry.DefaultPolicy(), func(ctx context.Context) ([]byte, error) {
//	    return fetch(ctx, url)
//	})
//
// Attempts run sequentially on the calling goroutine. Waiting stops as
// soon as ctx is done, in which case the error has code
// erks.CodeCancelled or erks.CodeDeadlineExceeded.
package retry

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	erks "github.com/StricklySoft/erks/pkg/errors"
	"github.com/StricklySoft/erks/pkg/errors/errtrace"
)

// Attempt describes a failed attempt that is about to be retried.
type Attempt struct {
	// Number is the attempt that failed, counting from 1.
	Number int

	// Delay is the wait before the next attempt.
	Delay time.Duration

	// Err is the classified failure.
	Err *erks.Error
}

// Do invokes op until it succeeds, fails with an error that is not
// recoverable, or the policy is exhausted. An invalid policy is reported
// without invoking op.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error), opts ...Option) (T, error) {
	var zero T
	if err := policy.Validate(); err != nil {
		return zero, err
	}

	o := newOptions(opts)
	runID := uuid.NewString()
	logger := o.logger.With(slog.String("retry.run_id", runID))

	ctx, span := o.tracer.Start(ctx, "retry.Do", trace.WithAttributes(
		attribute.String("retry.run_id", runID),
		attribute.Int("retry.max_attempts", policy.MaxAttempts),
	))

	start := o.now()
	var last *erks.Error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err := cancelled(ctxErr, attempt-1, last)
			errtrace.Finish(span, err)
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			span.SetAttributes(attribute.Int("retry.attempts", attempt))
			errtrace.Finish(span, nil)
			return v, nil
		}

		last = erks.From(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err := cancelled(ctxErr, attempt, last)
			errtrace.Finish(span, err)
			return zero, err
		}
		span.AddEvent("retry.attempt", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("erks.code", string(last.Code())),
			attribute.Bool("erks.recoverable", last.Recoverable()),
		))

		if !last.Recoverable() {
			return zero, finish(span, last, attempt)
		}
		if attempt >= policy.MaxAttempts {
			logger.WarnContext(ctx, "retry attempts exhausted",
				slog.Int("attempt", attempt), slog.Any("error", last))
			return zero, finish(span, last, attempt)
		}

		delay := policy.jittered(attempt, o.rand())
		if policy.MaxElapsed > 0 && o.now().Sub(start)+delay > policy.MaxElapsed {
			logger.WarnContext(ctx, "retry time budget exhausted",
				slog.Int("attempt", attempt),
				slog.Duration("elapsed", o.now().Sub(start)),
				slog.Any("error", last))
			return zero, finish(span, last, attempt)
		}

		if o.notify != nil {
			o.notify(Attempt{Number: attempt, Delay: delay, Err: last})
		}
		logger.DebugContext(ctx, "retrying",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("code", string(last.Code())))

		if sleepErr := o.sleep(ctx, delay); sleepErr != nil {
			err := cancelled(sleepErr, attempt, last)
			errtrace.Finish(span, err)
			return zero, err
		}
	}
}

// Run is [Do] for operations without a result.
func Run(ctx context.Context, policy Policy, op func(context.Context) error, opts ...Option) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

func finish(span trace.Span, last *erks.Error, attempts int) *erks.Error {
	err := last.With("attempts", strconv.Itoa(attempts))
	span.SetAttributes(attribute.Int("retry.attempts", attempts))
	errtrace.Finish(span, err)
	return err
}

func cancelled(cause error, attempts int, last *erks.Error) *erks.Error {
	var lastCode string
	if last != nil {
		lastCode = string(last.Code())
	}
	return erks.Cancellation(cause,
		erks.WithField("attempts", strconv.Itoa(attempts)),
		erks.WithField("last_code", lastCode),
	)
}
