// Package errtrace records unified errors on OpenTelemetry spans.
//
// Errors are converted with erks.From and recorded with their
// classification as attributes:
//
//	ctx, span := tracer.Start(ctx, "config.Load")
//	defer func() { errtrace.Finish(span, err) }()
//
// Only errors at [erks.SeverityError] or above mark the span as failed;
// warnings and informational errors are recorded as events and leave the
// status unset.
package errtrace

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Attribute keys.
const (
	KeyCode        = attribute.Key("erks.code")
	KeyCategory    = attribute.Key("erks.category")
	KeySeverity    = attribute.Key("erks.severity")
	KeyRecoverable = attribute.Key("erks.recoverable")
	KeyComponent   = attribute.Key("erks.component")
	KeyOperation   = attribute.Key("erks.operation")

	// MetadataPrefix prefixes metadata field keys.
	MetadataPrefix = "erks.meta."
)

// Attributes returns the span attributes describing err. It returns nil
// for a nil err.
func Attributes(err error) []attribute.KeyValue {
	e := erks.From(err)
	if e == nil {
		return nil
	}

	md := e.Metadata()
	attrs := []attribute.KeyValue{
		KeyCode.String(string(e.Code())),
		KeyCategory.String(string(e.Category())),
		KeySeverity.String(e.Severity().String()),
		KeyRecoverable.Bool(e.Recoverable()),
	}
	if c := md.Component(); c != "" {
		attrs = append(attrs, KeyComponent.String(c))
	}
	if op := md.Operation(); op != "" {
		attrs = append(attrs, KeyOperation.String(op))
	}
	for _, k := range md.Keys() {
		v, _ := md.Get(k)
		attrs = append(attrs, attribute.String(MetadataPrefix+k, v))
	}
	return attrs
}

// Record records err on span. It is a no-op for a nil err.
func Record(span trace.Span, err error) {
	if err == nil {
		return
	}
	e := erks.From(err)
	span.RecordError(e, trace.WithAttributes(Attributes(e)...))
	if e.Severity().AtLeast(erks.SeverityError) {
		span.SetStatus(codes.Error, e.Error())
	}
}

// Finish records err, if any, and ends span. A nil err sets the span
// status to OK.
func Finish(span trace.Span, err error) {
	if err != nil {
		Record(span, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
