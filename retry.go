package tembang

import (
	"time"

	"github.com/ambiyansyah-risyal/tembang/internal/backoff"
)

// RetryPolicy decides whether a failed attempt should be re-invoked and
// after what delay. attempt is the number of attempts already performed
// (1 after the first failure).
type RetryPolicy interface {
	ShouldRetry(err *Error, attempt int) (time.Duration, bool)
}

// DefaultRetryPolicy retries transient failures with bounded, capped
// exponential backoff. Non-transient failures (validation, not-found,
// unknown) are never retried. An upstream Retry-After suggestion takes
// precedence over the computed backoff.
type DefaultRetryPolicy struct {
	maxAttempts int
	base        time.Duration
	cap         time.Duration
	multiplier  float64
	jitter      float64
	strategy    backoff.Strategy
}

// Default retry tuning; mirrors the upstream's tolerance for one polite
// retry burst rather than an aggressive hammering.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxDelay    = 30 * time.Second
	DefaultMultiplier  = 2.0
	DefaultJitter      = 0.1
)

// NewDefaultRetryPolicy creates the standard policy with exponential
// jitter backoff.
func NewDefaultRetryPolicy(maxAttempts int, base, cap time.Duration, multiplier, jitter float64) *DefaultRetryPolicy {
	return &DefaultRetryPolicy{
		maxAttempts: maxAttempts,
		base:        base,
		cap:         cap,
		multiplier:  multiplier,
		jitter:      jitter,
		strategy:    backoff.ExponentialJitter{},
	}
}

// NewRetryPolicyWithStrategy creates a policy with a specific backoff
// strategy, e.g. backoff.DecorrelatedJitter for smoother tail latencies.
func NewRetryPolicyWithStrategy(maxAttempts int, base, cap time.Duration, multiplier, jitter float64, strategy backoff.Strategy) *DefaultRetryPolicy {
	p := NewDefaultRetryPolicy(maxAttempts, base, cap, multiplier, jitter)
	p.strategy = strategy
	return p
}

// ShouldRetry implements RetryPolicy.
func (p *DefaultRetryPolicy) ShouldRetry(err *Error, attempt int) (time.Duration, bool) {
	if err == nil || attempt >= p.maxAttempts {
		return 0, false
	}
	if !IsTransient(err) {
		return 0, false
	}

	if err.RetryAfter > 0 {
		delay := err.RetryAfter
		if delay > p.cap {
			delay = p.cap
		}
		return delay, true
	}

	return p.strategy.Delay(attempt-1, p.base, p.cap, p.multiplier, p.jitter), true
}

// MaxAttempts returns the attempt bound.
func (p *DefaultRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}
