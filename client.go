package tembang

import (
	"context"
	"fmt"
	"time"

	"github.com/ambiyansyah-risyal/tembang/internal/singleflight"
)

// Client is a rate-limited, cached access layer for the MusicBrainz API.
// Every dispatch flows fingerprint -> cache -> deduplication -> rate
// limiter -> transport under the retry policy -> classification. It is
// safe for concurrent use; the limiter and cache are the only shared
// mutable state and each is serialized internally.
type Client struct {
	transport   Transport
	rateLimiter *RateLimiter
	retryPolicy RetryPolicy
	cache       Cache
	dedup       *singleflight.Group
	metrics     *MetricsCollector
	logger      Logger

	baseURL   string
	userAgent string
	timeout   time.Duration

	minInterval time.Duration
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	multiplier  float64
	jitter      float64

	cacheEnabled  bool
	cacheCapacity int
	searchTTL     time.Duration
	lookupTTL     time.Duration
	browseTTL     time.Duration

	validationError error
}

// Result is a successful dispatch outcome. Payload is the opaque upstream
// response body; the client does not interpret it.
type Result struct {
	Payload    []byte
	StatusCode int
	FromCache  bool
}

// DefaultUserAgent identifies this library to MusicBrainz when the caller
// does not supply its own identity. Production callers should set their
// own contact string via WithUserAgent.
var DefaultUserAgent = "tembang/" + Version + " (https://github.com/ambiyansyah-risyal/tembang)"

// New constructs a Client from the provided functional options. A best
// effort validation is performed; check IsValid / ValidationError before
// dispatching, or let the first Dispatch surface the validation failure.
func New(options ...Option) *Client {
	c := &Client{
		logger:        NopLogger{},
		baseURL:       DefaultBaseURL,
		userAgent:     DefaultUserAgent,
		timeout:       DefaultTimeout,
		minInterval:   time.Second,
		maxAttempts:   DefaultMaxAttempts,
		baseDelay:     DefaultBaseDelay,
		maxDelay:      DefaultMaxDelay,
		multiplier:    DefaultMultiplier,
		jitter:        DefaultJitter,
		cacheEnabled:  true,
		cacheCapacity: DefaultCacheCapacity,
		searchTTL:     5 * time.Minute,
		lookupTTL:     time.Hour,
		browseTTL:     10 * time.Minute,
		dedup:         singleflight.New(),
	}

	for _, option := range options {
		option(c)
	}

	if err := c.ValidateConfiguration(); err != nil {
		c.validationError = err
		return c
	}

	if c.rateLimiter == nil {
		c.rateLimiter = NewRateLimiter(c.minInterval)
	}
	if c.retryPolicy == nil {
		c.retryPolicy = NewDefaultRetryPolicy(c.maxAttempts, c.baseDelay, c.maxDelay, c.multiplier, c.jitter)
	}
	if c.cacheEnabled && c.cache == nil {
		c.cache = NewInMemoryCache(c.cacheCapacity)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(c.baseURL, c.userAgent, c.timeout)
	}

	return c
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// Dispatch performs a logical operation with the given parameters,
// caching the opaque result under ttl. On a cache hit neither the rate
// limiter nor the transport is touched. A non-positive ttl disables
// caching for this call.
func (c *Client) Dispatch(ctx context.Context, operation string, params Params, ttl time.Duration) (*Result, error) {
	if c.validationError != nil {
		return nil, &Error{
			Kind:    KindValidation,
			Message: "client configuration is invalid",
			Cause:   c.validationError,
		}
	}
	if operation == "" {
		return nil, validationError("operation", "operation name cannot be empty")
	}

	start := time.Now()
	fp := Fingerprint(operation, params)

	if c.metrics != nil {
		c.metrics.RecordRequestStart(operation)
		defer c.metrics.RecordRequestEnd(operation)
	}

	if entry, ok := c.cacheGet(fp); ok {
		c.logger.Debug("cache hit", "operation", operation, "fingerprint", fp)
		if c.metrics != nil {
			c.metrics.RecordCacheHit(operation)
			c.metrics.RecordRequest(operation, "success", time.Since(start))
		}
		return &Result{Payload: entry.Payload, StatusCode: entry.StatusCode, FromCache: true}, nil
	}
	if c.cacheActive() {
		c.logger.Debug("cache miss", "operation", operation, "fingerprint", fp)
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(operation)
		}
	}

	var res *Result
	var err error
	if c.dedup != nil {
		var val interface{}
		var shared bool
		val, err, shared = c.dedup.Do(ctx, fp, func() (interface{}, error) {
			return c.fetch(ctx, operation, params, fp, ttl)
		})
		if shared {
			c.logger.Debug("joined in-flight request", "operation", operation, "fingerprint", fp)
			if c.metrics != nil {
				c.metrics.RecordDedupHit(operation)
			}
		}
		if val != nil {
			res = val.(*Result)
		}
		if err != nil {
			// A waiter cancelled while parked on the in-flight call
			// surfaces its own ctx error, not the owner's outcome.
			err = classifyTransportError(err)
		}
	} else {
		res, err = c.fetch(ctx, operation, params, fp, ttl)
	}

	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = string(KindOf(err))
			c.metrics.RecordError(operation, KindOf(err))
		}
		c.metrics.RecordRequest(operation, outcome, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// fetch is the owner path of a dispatch: permit, transport attempts under
// the retry policy, classification, cache store. Only classified errors
// escape it.
func (c *Client) fetch(ctx context.Context, operation string, params Params, fp string, ttl time.Duration) (*Result, error) {
	attempt := 0
	for {
		attempt++

		if err := c.acquirePermit(ctx); err != nil {
			return nil, &Error{
				Kind:      KindTimeout,
				Message:   "cancelled while waiting for rate limiter permit",
				Operation: operation,
				Attempt:   attempt,
				Cause:     err,
			}
		}

		resp, err := c.transport.Perform(ctx, operation, params)
		cerr := Classify(resp, err)
		if cerr == nil {
			res := &Result{Payload: resp.Body, StatusCode: resp.StatusCode}
			c.cacheSet(fp, res, ttl)
			return res, nil
		}

		cerr.Operation = operation
		cerr.Attempt = attempt

		// Caller cancellation ends the backoff sequence immediately.
		if ctx.Err() != nil {
			if cerr.Kind != KindTimeout {
				cerr = &Error{
					Kind:      KindTimeout,
					Message:   "request cancelled",
					Operation: operation,
					Attempt:   attempt,
					Cause:     ctx.Err(),
				}
			}
			return nil, cerr
		}

		delay, retry := c.retryPolicy.ShouldRetry(cerr, attempt)
		if !retry {
			c.logger.Warn("dispatch failed",
				"operation", operation, "kind", cerr.Kind, "attempts", attempt)
			return nil, cerr
		}

		c.logger.Info("retrying after transient failure",
			"operation", operation, "kind", cerr.Kind, "attempt", attempt, "backoff", delay)
		if c.metrics != nil {
			c.metrics.RecordRetry(operation)
		}

		if err := sleepCtx(ctx, delay); err != nil {
			return nil, &Error{
				Kind:      KindTimeout,
				Message:   "cancelled during retry backoff",
				Operation: operation,
				Attempt:   attempt,
				Cause:     err,
			}
		}
	}
}

func (c *Client) acquirePermit(ctx context.Context) error {
	waitStart := time.Now()
	if err := c.rateLimiter.Acquire(ctx); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordLimiterWait(time.Since(waitStart))
	}
	return nil
}

func (c *Client) cacheActive() bool {
	return c.cacheEnabled && c.cache != nil
}

func (c *Client) cacheGet(fp string) (*CacheEntry, bool) {
	if !c.cacheActive() {
		return nil, false
	}
	return c.cache.Get(fp)
}

func (c *Client) cacheSet(fp string, res *Result, ttl time.Duration) {
	if !c.cacheActive() || ttl <= 0 {
		return
	}
	payload := make([]byte, len(res.Payload))
	copy(payload, res.Payload)
	c.cache.Set(fp, &CacheEntry{Payload: payload, StatusCode: res.StatusCode}, ttl)
	if c.metrics != nil {
		c.metrics.RecordCacheSize("default", c.cache.Len())
	}
}

// InvalidateCache drops every cached entry.
func (c *Client) InvalidateCache() {
	if c.cacheActive() {
		c.cache.Clear()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// String renders a short configuration summary for logs.
func (c *Client) String() string {
	return fmt.Sprintf("tembang.Client{interval: %s, attempts: %d, cache: %t, dedup: %t}",
		c.minInterval, c.maxAttempts, c.cacheEnabled, c.dedup != nil)
}
