package tembang

import (
	"strings"
	"time"

	"github.com/ambiyansyah-risyal/tembang/internal/backoff"
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithTransport replaces the underlying transport. Useful for tests and
// for callers that already own an HTTP stack.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithBaseURL points the default HTTP transport at a different API root,
// e.g. a local MusicBrainz mirror.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithUserAgent sets the client identity sent upstream. MusicBrainz
// requires a meaningful User-Agent with contact information.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout bounds a single transport attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit sets the minimum interval between outbound calls. The
// default of one second matches the MusicBrainz budget of one request
// per second.
func WithRateLimit(minInterval time.Duration) Option {
	return func(c *Client) {
		c.minInterval = minInterval
		c.rateLimiter = nil
	}
}

// WithMaxAttempts sets how many times a transient failure is attempted in
// total, the first call included.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithBaseDelay sets the initial backoff delay.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithMaxDelay caps the backoff delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithBackoffMultiplier sets the exponential growth factor.
func WithBackoffMultiplier(f float64) Option {
	return func(c *Client) {
		c.multiplier = f
	}
}

// WithJitter sets the jitter factor for backoff (0.0 to 1.0).
func WithJitter(f float64) Option {
	return func(c *Client) {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		c.jitter = f
	}
}

// WithBackoffStrategy selects a backoff strategy, e.g.
// backoff.DecorrelatedJitter{}.
func WithBackoffStrategy(s backoff.Strategy) Option {
	return func(c *Client) {
		c.retryPolicy = NewRetryPolicyWithStrategy(c.maxAttempts, c.baseDelay, c.maxDelay, c.multiplier, c.jitter, s)
	}
}

// WithRetryPolicy replaces the retry policy entirely.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = p
	}
}

// WithCacheCapacity bounds the default in-memory cache.
func WithCacheCapacity(n int) Option {
	return func(c *Client) {
		c.cacheCapacity = n
	}
}

// WithCustomCache installs a caller-provided cache, e.g. a RedisCache.
func WithCustomCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheEnabled = true
	}
}

// WithoutCache disables response caching entirely: every lookup misses
// and stores are dropped.
func WithoutCache() Option {
	return func(c *Client) {
		c.cacheEnabled = false
		c.cache = nil
	}
}

// WithoutDeduplication disables in-flight request coalescing; concurrent
// identical misses then each hit the upstream.
func WithoutDeduplication() Option {
	return func(c *Client) {
		c.dedup = nil
	}
}

// WithSearchTTL overrides the cache TTL used by the search helpers.
func WithSearchTTL(d time.Duration) Option {
	return func(c *Client) {
		c.searchTTL = d
	}
}

// WithLookupTTL overrides the cache TTL used by the lookup helpers.
func WithLookupTTL(d time.Duration) Option {
	return func(c *Client) {
		c.lookupTTL = d
	}
}

// WithBrowseTTL overrides the cache TTL used by the browse helpers.
func WithBrowseTTL(d time.Duration) Option {
	return func(c *Client) {
		c.browseTTL = d
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(m *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithConfig applies a loaded process configuration. Options given after
// WithConfig override individual fields.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		c.userAgent = cfg.UserAgent
		if cfg.BaseURL != "" {
			c.baseURL = cfg.BaseURL
		}
		c.minInterval = cfg.RateInterval
		c.rateLimiter = nil
		c.timeout = cfg.Timeout
		c.maxAttempts = cfg.MaxAttempts
		c.baseDelay = cfg.RetryBaseDelay
		c.cacheEnabled = cfg.Cache.Enabled
		if cfg.Cache.MaxEntries > 0 {
			c.cacheCapacity = cfg.Cache.MaxEntries
		}
		if cfg.Cache.SearchTTL > 0 {
			c.searchTTL = cfg.Cache.SearchTTL
		}
		if cfg.Cache.LookupTTL > 0 {
			c.lookupTTL = cfg.Cache.LookupTTL
		}
		if cfg.Cache.BrowseTTL > 0 {
			c.browseTTL = cfg.Cache.BrowseTTL
		}
	}
}

// ValidateConfiguration validates the client configuration and returns a
// classified error when something is off.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	problems = append(problems, c.validateIdentity()...)
	problems = append(problems, c.validateRateLimiter()...)
	problems = append(problems, c.validateRetry()...)
	problems = append(problems, c.validateCache()...)

	if len(problems) > 0 {
		return &Error{
			Kind:    KindValidation,
			Message: "configuration validation failed: " + strings.Join(problems, "; "),
		}
	}
	return nil
}

func (c *Client) validateIdentity() []string {
	var problems []string
	if c.userAgent == "" {
		problems = append(problems, "userAgent must not be empty")
	}
	if c.timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	return problems
}

func (c *Client) validateRateLimiter() []string {
	var problems []string
	interval := c.minInterval
	if c.rateLimiter != nil {
		interval = c.rateLimiter.Interval()
	}
	if interval <= 0 {
		problems = append(problems, "rate limit interval must be positive")
	}
	return problems
}

func (c *Client) validateRetry() []string {
	var problems []string
	if c.maxAttempts < 1 {
		problems = append(problems, "maxAttempts must be at least 1")
	}
	if c.baseDelay <= 0 {
		problems = append(problems, "baseDelay must be positive")
	}
	if c.maxDelay < c.baseDelay {
		problems = append(problems, "maxDelay must be greater than or equal to baseDelay")
	}
	if c.multiplier <= 0 {
		problems = append(problems, "backoff multiplier must be positive")
	}
	if c.jitter < 0 || c.jitter > 1 {
		problems = append(problems, "jitter must be between 0 and 1")
	}
	return problems
}

func (c *Client) validateCache() []string {
	var problems []string
	if c.cacheEnabled && c.cache == nil && c.cacheCapacity <= 0 {
		problems = append(problems, "cache capacity must be positive when caching is enabled")
	}
	if c.searchTTL < 0 || c.lookupTTL < 0 || c.browseTTL < 0 {
		problems = append(problems, "cache TTLs must be non-negative")
	}
	return problems
}
