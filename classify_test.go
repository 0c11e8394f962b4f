package tembang

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestClassifySuccess(t *testing.T) {
	for _, status := range []int{200, 201, 301, 399} {
		if err := Classify(&UpstreamResponse{StatusCode: status, Header: http.Header{}}, nil); err != nil {
			t.Errorf("Expected nil for status %d, got %v", status, err)
		}
	}
}

func TestClassifyStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{400, KindValidation},
		{404, KindNotFound},
		{429, KindRateLimited},
		{503, KindRateLimited},
		{500, KindUpstreamError},
		{502, KindUpstreamError},
		{504, KindUpstreamError},
		{418, KindUnknown},
		{451, KindUnknown},
	}

	for _, tt := range tests {
		err := Classify(&UpstreamResponse{StatusCode: tt.status, Header: http.Header{}}, nil)
		if err == nil {
			t.Errorf("Expected error for status %d", tt.status)
			continue
		}
		if err.Kind != tt.want {
			t.Errorf("Status %d: expected kind %s, got %s", tt.status, tt.want, err.Kind)
		}
		if err.StatusCode != tt.status {
			t.Errorf("Status %d: expected StatusCode carried, got %d", tt.status, err.StatusCode)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	resp := &UpstreamResponse{StatusCode: 503, Header: http.Header{}}
	a := Classify(resp, nil)
	b := Classify(resp, nil)

	if a.Kind != b.Kind {
		t.Errorf("Expected deterministic classification, got %s and %s", a.Kind, b.Kind)
	}
}

func TestClassifyRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "5")
	err := Classify(&UpstreamResponse{StatusCode: 503, Header: h}, nil)

	if err.Kind != KindRateLimited {
		t.Fatalf("Expected RateLimited, got %s", err.Kind)
	}
	if err.RetryAfter != 5*time.Second {
		t.Errorf("Expected RetryAfter=5s, got %v", err.RetryAfter)
	}
}

func TestClassifyContextErrors(t *testing.T) {
	if kind := Classify(nil, context.DeadlineExceeded).Kind; kind != KindTimeout {
		t.Errorf("Expected Timeout for deadline exceeded, got %s", kind)
	}
	if kind := Classify(nil, context.Canceled).Kind; kind != KindTimeout {
		t.Errorf("Expected Timeout for cancellation, got %s", kind)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyNetTimeout(t *testing.T) {
	if kind := Classify(nil, timeoutErr{}).Kind; kind != KindTimeout {
		t.Errorf("Expected Timeout for net timeout, got %s", kind)
	}
}

func TestClassifyConnectionFailure(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	if kind := Classify(nil, opErr).Kind; kind != KindUpstreamUnavailable {
		t.Errorf("Expected UpstreamUnavailable for dial failure, got %s", kind)
	}

	dnsErr := &net.DNSError{Err: "no such host", Name: "musicbrainz.invalid"}
	if kind := Classify(nil, dnsErr).Kind; kind != KindUpstreamUnavailable {
		t.Errorf("Expected UpstreamUnavailable for DNS failure, got %s", kind)
	}
}

func TestClassifyUnknown(t *testing.T) {
	if kind := Classify(nil, errors.New("something odd")).Kind; kind != KindUnknown {
		t.Errorf("Expected Unknown for unrecognized error, got %s", kind)
	}
	if kind := Classify(nil, nil).Kind; kind != KindUnknown {
		t.Errorf("Expected Unknown for nil response and nil error, got %s", kind)
	}
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	orig := validationError("limit", "limit out of range")
	got := Classify(nil, orig)

	if got.Kind != KindValidation {
		t.Errorf("Expected classified error to pass through, got %s", got.Kind)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"0", 0},
		{"-3", 0},
		{"10", 10 * time.Second},
		{" 2 ", 2 * time.Second},
		{"7200", time.Hour}, // capped at one hour
		{"nonsense", 0},
	}

	for _, tt := range tests {
		if got := parseRetryAfter(tt.value); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}

	if got := parseRetryAfter("999999"); got != time.Hour {
		t.Errorf("Expected huge delay capped at 1h, got %v", got)
	}

	date := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(date)
	if got <= 0 || got > 31*time.Second {
		t.Errorf("Expected ~30s from HTTP-date, got %v", got)
	}
}
