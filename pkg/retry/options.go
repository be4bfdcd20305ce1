package retry

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope of the spans started by [Do].
const tracerName = "github.com/StricklySoft/erks/pkg/retry"

// Option customizes a single [Do] or [Run] call.
type Option func(*options)

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
	notify func(Attempt)
	sleep  func(context.Context, time.Duration) error
	rand   func() float64
	now    func() time.Time
}

func newOptions(opts []Option) *options {
	o := &options{
		sleep: sleep,
		rand:  rand.Float64,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}

// WithLogger sets the logger for retry and exhaustion messages. The
// default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTracer sets the tracer for the retry span. The default is the
// global tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithNotify registers fn to be called before each wait.
func WithNotify(fn func(Attempt)) Option {
	return func(o *options) { o.notify = fn }
}

func withSleep(fn func(context.Context, time.Duration) error) Option {
	return func(o *options) { o.sleep = fn }
}

func withRand(fn func() float64) Option {
	return func(o *options) { o.rand = fn }
}

func withClock(fn func() time.Time) Option {
	return func(o *options) { o.now = fn }
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
