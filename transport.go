package tembang

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the MusicBrainz web service root.
const DefaultBaseURL = "https://musicbrainz.org/ws/2"

// DefaultTimeout bounds a single transport attempt.
const DefaultTimeout = 30 * time.Second

// UpstreamResponse is the raw outcome of one transport attempt: a status
// code plus an opaque payload. Classification happens above the
// transport.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs one upstream request for a logical operation. The
// operation name is the path relative to the API root (for example
// "artist" or "artist/<mbid>"); params become the query string.
//
// Implementations return either a response or a transport-level error,
// never both. They do not retry, throttle or cache; those belong to the
// Client.
type Transport interface {
	Perform(ctx context.Context, operation string, params Params) (*UpstreamResponse, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, operation string, params Params) (*UpstreamResponse, error)

// Perform implements Transport.
func (f TransportFunc) Perform(ctx context.Context, operation string, params Params) (*UpstreamResponse, error) {
	return f(ctx, operation, params)
}

// HTTPTransport talks to the MusicBrainz HTTP API. It forces JSON
// responses and sends the configured client identity; MusicBrainz rejects
// anonymous clients.
type HTTPTransport struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewHTTPTransport creates a transport for the given API root and client
// identity. A zero timeout falls back to DefaultTimeout, an empty baseURL
// to DefaultBaseURL.
func NewHTTPTransport(baseURL, userAgent string, timeout time.Duration) *HTTPTransport {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Perform implements Transport.
func (t *HTTPTransport) Perform(ctx context.Context, operation string, params Params) (*UpstreamResponse, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s/%s?%s", t.baseURL, operation, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", operation, err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", operation, err)
	}

	return &UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}
