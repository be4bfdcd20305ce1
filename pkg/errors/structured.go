package errors

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Record is the flat, serializable form of an [*Error] used by log
// pipelines.
type Record struct {
	Message     string            `json:"message"`
	Category    Category          `json:"category"`
	Code        Code              `json:"code"`
	Severity    Severity          `json:"severity"`
	Recoverable bool              `json:"recoverable"`
	Component   string            `json:"component,omitempty"`
	Operation   string            `json:"operation,omitempty"`
	Fields      map[string]string `json:"metadata,omitempty"`
	Cause       string            `json:"cause,omitempty"`
}

// Structured returns the record form of e.
func (e *Error) Structured() Record {
	md := e.Metadata()
	r := Record{
		Message:     e.Error(),
		Category:    e.Category(),
		Code:        e.Code(),
		Severity:    e.Severity(),
		Recoverable: e.Recoverable(),
		Component:   md.Component(),
		Operation:   md.Operation(),
		Fields:      md.Fields(),
	}
	if v := e.Variant(); v != nil {
		if cause := v.Unwrap(); cause != nil {
			r.Cause = cause.Error()
		}
	}
	return r
}

// MarshalJSON implements json.Marshaler using [Error.Structured].
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Structured())
}

// LogValue implements slog.LogValuer, so an *Error passed as an attribute
// value is logged as a group:
//
//	logger.Error("sync failed", "error", err)
//	// error.message=... error.category=io error.code=IO_NOT_FOUND ...
func (e *Error) LogValue() slog.Value {
	r := e.Structured()
	attrs := []slog.Attr{
		slog.String("message", r.Message),
		slog.String("category", string(r.Category)),
		slog.String("code", string(r.Code)),
		slog.String("severity", r.Severity.String()),
		slog.Bool("recoverable", r.Recoverable),
	}
	if r.Component != "" {
		attrs = append(attrs, slog.String("component", r.Component))
	}
	if r.Operation != "" {
		attrs = append(attrs, slog.String("operation", r.Operation))
	}
	if len(r.Fields) > 0 {
		md := e.Metadata()
		fields := make([]any, 0, md.Len())
		for _, k := range md.Keys() {
			v, _ := md.Get(k)
			fields = append(fields, slog.String(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", fields...))
	}
	return slog.GroupValue(attrs...)
}

// Log writes err through logger at the level derived from its severity.
// A nil logger uses slog.Default, and a nil err is ignored.
func Log(ctx context.Context, logger *slog.Logger, msg string, err error, args ...any) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := From(err)
	logger.Log(ctx, e.Severity().Level(), msg, append(args, slog.Any("error", e))...)
}
