package tembang

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Classify maps a raw transport outcome to exactly one classified Error.
// A successful response (status < 400) maps to nil. The mapping is total
// and deterministic: the same outcome always produces the same kind.
//
// MusicBrainz signals throttling with 503 rather than 429; both map to
// KindRateLimited.
func Classify(resp *UpstreamResponse, err error) *Error {
	if err != nil {
		return classifyTransportError(err)
	}
	if resp == nil {
		return &Error{Kind: KindUnknown, Message: "transport returned no response and no error"}
	}

	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return &Error{
			Kind:       KindValidation,
			Message:    "upstream rejected the request as malformed",
			StatusCode: resp.StatusCode,
		}
	case resp.StatusCode == http.StatusNotFound:
		return &Error{
			Kind:       KindNotFound,
			Message:    "resource not found",
			StatusCode: resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return &Error{
			Kind:       KindRateLimited,
			Message:    "upstream rate limit exceeded",
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return &Error{
			Kind:       KindUpstreamError,
			Message:    fmt.Sprintf("upstream server fault (HTTP %d)", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	default:
		return &Error{
			Kind:       KindUnknown,
			Message:    fmt.Sprintf("unexpected upstream response (HTTP %d)", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
}

func classifyTransportError(err error) *Error {
	// Already classified errors pass through unchanged so validation
	// failures raised below the transport keep their kind.
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Message: "request cancelled or timed out", Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "no response within deadline", Cause: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Kind: KindUpstreamUnavailable, Message: "cannot reach upstream", Cause: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindUpstreamUnavailable, Message: "cannot resolve upstream host", Cause: err}
	}

	return &Error{Kind: KindUnknown, Message: "unrecognized transport failure", Cause: err}
}

// parseRetryAfter parses a Retry-After header in either delay-seconds or
// HTTP-date form. Delays are capped at one hour.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if seconds > 0 {
			delay := time.Duration(seconds) * time.Second
			if delay > time.Hour {
				delay = time.Hour
			}
			return delay
		}
		return 0
	}

	if t, err := http.ParseTime(value); err == nil {
		delay := time.Until(t)
		if delay > 0 && delay <= time.Hour {
			return delay
		}
	}

	return 0
}
