package tembang

import (
	"testing"
	"time"

	"github.com/ambiyansyah-risyal/tembang/internal/backoff"
)

func TestRetryPolicyTransientRetried(t *testing.T) {
	p := NewDefaultRetryPolicy(3, 10*time.Millisecond, time.Second, 2.0, 0)

	for _, kind := range []ErrorKind{KindRateLimited, KindTimeout, KindUpstreamError, KindUpstreamUnavailable} {
		delay, retry := p.ShouldRetry(&Error{Kind: kind}, 1)
		if !retry {
			t.Errorf("Expected retry for %s", kind)
		}
		if delay <= 0 {
			t.Errorf("Expected positive delay for %s, got %v", kind, delay)
		}
	}
}

func TestRetryPolicyNonTransientNotRetried(t *testing.T) {
	p := NewDefaultRetryPolicy(3, 10*time.Millisecond, time.Second, 2.0, 0)

	for _, kind := range []ErrorKind{KindValidation, KindNotFound, KindUnknown} {
		if _, retry := p.ShouldRetry(&Error{Kind: kind}, 1); retry {
			t.Errorf("Expected no retry for %s", kind)
		}
	}
}

func TestRetryPolicyExhaustion(t *testing.T) {
	p := NewDefaultRetryPolicy(3, 10*time.Millisecond, time.Second, 2.0, 0)

	if _, retry := p.ShouldRetry(&Error{Kind: KindTimeout}, 2); !retry {
		t.Error("Expected retry on attempt 2 of 3")
	}
	if _, retry := p.ShouldRetry(&Error{Kind: KindTimeout}, 3); retry {
		t.Error("Expected no retry once max attempts performed")
	}
}

func TestRetryPolicyNilError(t *testing.T) {
	p := NewDefaultRetryPolicy(3, 10*time.Millisecond, time.Second, 2.0, 0)

	if _, retry := p.ShouldRetry(nil, 1); retry {
		t.Error("Expected no retry for nil error")
	}
}

func TestRetryPolicyBackoffGrows(t *testing.T) {
	p := NewDefaultRetryPolicy(5, 10*time.Millisecond, time.Second, 2.0, 0)

	d1, _ := p.ShouldRetry(&Error{Kind: KindUpstreamError}, 1)
	d2, _ := p.ShouldRetry(&Error{Kind: KindUpstreamError}, 2)
	d3, _ := p.ShouldRetry(&Error{Kind: KindUpstreamError}, 3)

	if !(d1 < d2 && d2 < d3) {
		t.Errorf("Expected growing backoff without jitter, got %v, %v, %v", d1, d2, d3)
	}
}

func TestRetryPolicyBackoffCapped(t *testing.T) {
	cap := 50 * time.Millisecond
	p := NewDefaultRetryPolicy(20, 10*time.Millisecond, cap, 2.0, 0)

	delay, _ := p.ShouldRetry(&Error{Kind: KindUpstreamError}, 10)
	if delay > cap {
		t.Errorf("Expected delay capped at %v, got %v", cap, delay)
	}
}

func TestRetryPolicyHonorsRetryAfter(t *testing.T) {
	p := NewDefaultRetryPolicy(3, 10*time.Millisecond, time.Minute, 2.0, 0)

	delay, retry := p.ShouldRetry(&Error{Kind: KindRateLimited, RetryAfter: 7 * time.Second}, 1)
	if !retry {
		t.Fatal("Expected retry")
	}
	if delay != 7*time.Second {
		t.Errorf("Expected Retry-After to win, got %v", delay)
	}
}

func TestRetryPolicyRetryAfterCapped(t *testing.T) {
	p := NewDefaultRetryPolicy(3, 10*time.Millisecond, 5*time.Second, 2.0, 0)

	delay, _ := p.ShouldRetry(&Error{Kind: KindRateLimited, RetryAfter: time.Minute}, 1)
	if delay != 5*time.Second {
		t.Errorf("Expected Retry-After capped at maxDelay, got %v", delay)
	}
}

func TestRetryPolicyWithDecorrelatedStrategy(t *testing.T) {
	p := NewRetryPolicyWithStrategy(3, 10*time.Millisecond, time.Second, 2.0, 0.1, backoff.DecorrelatedJitter{})

	delay, retry := p.ShouldRetry(&Error{Kind: KindTimeout}, 1)
	if !retry {
		t.Fatal("Expected retry")
	}
	if delay < 10*time.Millisecond || delay > time.Second {
		t.Errorf("Expected delay within [base, cap], got %v", delay)
	}
}
