package tembang

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces outbound calls so that no two grants fire less than
// minInterval apart, process-wide. MusicBrainz enforces one request per
// second per client identity; a pacer, unlike a token bucket, never lets
// a burst through.
//
// Acquire reserves the next free slot under a single mutex, so callers
// are granted in arrival order and none is skipped indefinitely.
type RateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	next        time.Time // earliest moment the next grant may fire
}

// NewRateLimiter creates a pacer with the given minimum spacing between
// grants. The interval must be positive; this is enforced by client
// configuration validation.
func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{minInterval: minInterval}
}

// Acquire blocks until a grant is available or ctx is done. On success
// the grant slot has been recorded, so a racing caller measures its own
// wait from this grant, not from the race moment.
//
// A cancelled caller does not give its reserved slot back: releasing it
// could let two calls land closer than minInterval under races, so the
// conservative gap is kept.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	rl.mu.Lock()
	now := time.Now()
	at := rl.next
	if at.Before(now) {
		at = now
	}
	rl.next = at.Add(rl.minInterval)
	rl.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Interval returns the configured minimum spacing.
func (rl *RateLimiter) Interval() time.Duration {
	return rl.minInterval
}
