// Package httperr converts net/http client failures and error responses
// into unified errors in the "http" category.
//
// Transport failures surface as *url.Error and are claimed by the
// converter registered with erks.From. Error responses are not Go
// errors, so callers classify them explicitly:
//
//	resp, err := client.Do(req)
//	if err := httperr.Check(resp, err); err != nil {
//	    return err
//	}
package httperr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Error is the variant for HTTP transport failures and error responses.
type Error struct {
	erks.Base

	// Method is the request method, upper-cased.
	Method string

	// URL is the request URL with any credentials removed.
	URL string

	// StatusCode is the response status, or 0 for transport failures.
	StatusCode int
}

func init() {
	erks.RegisterConverter("http", func(err error) (erks.Variant, bool) {
		var uErr *url.Error
		if !errors.As(err, &uErr) || errors.Is(err, context.Canceled) {
			return nil, false
		}
		return New(err), true
	})
}

// New classifies a transport failure. The condition is taken from the
// *url.Error in the chain:
//
//	timeouts and context deadlines   HTTP_TIMEOUT
//	dial, DNS and refused connects   HTTP_CONNECT_FAILED
//	URL parse and scheme failures    HTTP_INVALID_REQUEST
//	anything else                    HTTP_ERROR
func New(err error, opts ...erks.Option) *Error {
	var method, rawURL string
	var uErr *url.Error
	if errors.As(err, &uErr) {
		if uErr.Op != "parse" {
			method = strings.ToUpper(uErr.Op)
		}
		rawURL = redact(uErr.URL)
	}
	condition := classify(err, uErr)
	extra := []erks.Option{erks.WithField("method", method), erks.WithField("url", rawURL)}
	return &Error{
		Base:   erks.NewBase(erks.CategoryHTTP, erks.CodeFor(erks.CategoryHTTP, condition), err, append(extra, opts...)...),
		Method: method,
		URL:    rawURL,
	}
}

// From converts err into a unified error. An err that already carries
// an *erks.Error is returned unchanged, and a request abandoned through
// context.Canceled is reported as CANCELLED. From returns nil for a nil
// err.
func From(err error) *erks.Error {
	if err == nil {
		return nil
	}
	if e, ok := erks.AsError(err); ok {
		return e
	}
	if errors.Is(err, context.Canceled) {
		return erks.Cancellation(err)
	}
	return erks.Wrap(New(err))
}

// FromStatus classifies an HTTP status. Statuses below 400 are not
// failures and yield nil.
//
//	401, 403       HTTP_UNAUTHORIZED
//	404, 410       HTTP_NOT_FOUND
//	408            HTTP_TIMEOUT
//	429            HTTP_RATE_LIMITED
//	other 4xx      HTTP_CLIENT_ERROR
//	5xx            HTTP_SERVER_ERROR
func FromStatus(method, rawURL string, status int, opts ...erks.Option) *erks.Error {
	if status < http.StatusBadRequest {
		return nil
	}
	method = strings.ToUpper(method)
	rawURL = redact(rawURL)
	msg := strconv.Itoa(status)
	if text := http.StatusText(status); text != "" {
		msg += " " + text
	}
	if method != "" || rawURL != "" {
		msg = strings.TrimSpace(method+" "+rawURL) + ": " + msg
	}
	extra := []erks.Option{
		erks.WithMessage(msg),
		erks.WithField("method", method),
		erks.WithField("url", rawURL),
		erks.WithField("status", strconv.Itoa(status)),
	}
	code := erks.CodeFor(erks.CategoryHTTP, statusCondition(status))
	return erks.Wrap(&Error{
		Base:       erks.NewBase(erks.CategoryHTTP, code, nil, append(extra, opts...)...),
		Method:     method,
		URL:        rawURL,
		StatusCode: status,
	})
}

// FromResponse classifies an error response. It returns nil for a nil
// response or a status below 400. A Retry-After header is kept as
// metadata. The body is neither read nor closed.
func FromResponse(resp *http.Response) *erks.Error {
	if resp == nil || resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	var method, rawURL string
	if resp.Request != nil {
		method = resp.Request.Method
		if resp.Request.URL != nil {
			rawURL = resp.Request.URL.String()
		}
	}
	return FromStatus(method, rawURL, resp.StatusCode,
		erks.WithField("retry_after", resp.Header.Get("Retry-After")))
}

// Check combines the results of an http.Client call: a transport error
// is converted with [From], an error response with [FromResponse]. It
// returns an untyped nil when the call succeeded.
func Check(resp *http.Response, err error) error {
	if err != nil {
		return From(err)
	}
	if e := FromResponse(resp); e != nil {
		return e
	}
	return nil
}

func classify(err error, uErr *url.Error) erks.Condition {
	var (
		netErr net.Error
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	switch {
	case uErr != nil && uErr.Timeout(),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return erks.ConditionTimeout
	case uErr != nil && uErr.Op == "parse",
		uErr != nil && uErr.Err != nil && strings.Contains(uErr.Err.Error(), "unsupported protocol scheme"):
		return erks.ConditionInvalidRequest
	case errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.As(err, &opErr) && opErr.Op == "dial":
		return erks.ConditionConnect
	}
	return erks.ConditionGeneric
}

func statusCondition(status int) erks.Condition {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return erks.ConditionUnauthorized
	case status == http.StatusNotFound, status == http.StatusGone:
		return erks.ConditionNotFound
	case status == http.StatusRequestTimeout:
		return erks.ConditionTimeout
	case status == http.StatusTooManyRequests:
		return erks.ConditionRateLimited
	case status >= 500:
		return erks.ConditionServerError
	default:
		return erks.ConditionClientError
	}
}

// redact removes userinfo from a URL. Unparseable input is returned as is.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
