// Package catalog speaks the Douban Books wire protocol: the JSON search
// endpoint, the subject detail pages, and cover image downloads. It is the
// only package that knows what Douban payloads look like.
package catalog

import (
	"net/http"
	"strings"
	"time"

	"github.com/bookmeta/douban/internal/ratelimit"
)

const (
	defaultSearchURL     = "https://www.douban.com/j/search"
	defaultBookURL       = "https://book.douban.com/subject"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultRatePerSecond = 2 // Douban throttles bulk traffic with 403s
	defaultRetryAttempts = 1
	defaultRetryBackoff  = 2 * time.Second
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client fetches search results, subject pages and covers from Douban.
type Client struct {
	searchURL     string
	bookURL       string
	userAgent     string
	httpClient    HTTPDoer
	rateLimiter   *ratelimit.Limiter
	retryAttempts int
	retryBackoff  time.Duration
}

// NewClient creates a Douban catalog client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		searchURL:     defaultSearchURL,
		bookURL:       defaultBookURL,
		userAgent:     defaultUserAgent,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		rateLimiter:   ratelimit.New("douban", defaultRatePerSecond),
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithSearchURL sets a custom base URL for the search endpoint.
func WithSearchURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.searchURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithBookURL sets a custom base URL for subject detail pages.
func WithBookURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.bookURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}

// WithRetryPolicy sets how many attempts a request gets and the backoff
// between them. Only rate-limited responses are retried; a Retry-After
// hint from the server overrides the configured backoff.
func WithRetryPolicy(attempts int, backoff time.Duration) Option {
	return func(client *Client) {
		if attempts > 0 {
			client.retryAttempts = attempts
		}
		if backoff > 0 {
			client.retryBackoff = backoff
		}
	}
}
