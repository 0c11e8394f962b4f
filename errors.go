package tembang

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the closed set of failure categories surfaced by the client.
// Every transport outcome is mapped to exactly one kind; callers can rely
// on the set being stable across versions.
type ErrorKind string

const (
	// KindValidation marks a malformed or missing request parameter.
	KindValidation ErrorKind = "Validation"
	// KindNotFound marks an upstream "resource absent" response.
	KindNotFound ErrorKind = "NotFound"
	// KindRateLimited marks an upstream throttling signal.
	KindRateLimited ErrorKind = "RateLimited"
	// KindTimeout marks a missing response within the deadline, including
	// caller-side cancellation.
	KindTimeout ErrorKind = "Timeout"
	// KindUpstreamUnavailable marks a transport that could not reach the
	// upstream at all.
	KindUpstreamUnavailable ErrorKind = "UpstreamUnavailable"
	// KindUpstreamError marks a server fault reported by the upstream.
	KindUpstreamError ErrorKind = "UpstreamError"
	// KindUnknown marks anything unrecognized. Treated as non-transient.
	KindUnknown ErrorKind = "Unknown"
)

// Error is the classified failure type returned by Dispatch and the
// operation helpers. It carries enough context to render a user-facing
// message without exposing raw transport internals.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int           // upstream status code, 0 when not applicable
	Param      string        // offending parameter for validation failures
	Operation  string        // logical operation being dispatched
	Attempt    int           // attempts performed when the error surfaced
	RetryAfter time.Duration // upstream-suggested delay, 0 when absent
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Operation != "" {
		msg = fmt.Sprintf("%s (operation %s)", msg, e.Operation)
	}
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Param != "" {
		msg = fmt.Sprintf("%s (parameter %q)", msg, e.Param)
	}
	if e.Attempt > 1 {
		msg = fmt.Sprintf("%s (after %d attempts)", msg, e.Attempt)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches errors of the same kind, so callers can write
// errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Kind == te.Kind
	}
	return false
}

// KindOf extracts the ErrorKind from err. Unclassified errors report
// KindUnknown.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsTransient reports whether err is worth retrying. Throttling signals,
// timeouts and upstream faults are transient; validation failures,
// missing resources and unknown conditions are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindRateLimited, KindTimeout, KindUpstreamError, KindUpstreamUnavailable:
		return true
	default:
		return false
	}
}

func validationError(param, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Param:   param,
	}
}
