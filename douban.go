// Package douban looks up book metadata on Douban Books. Given whatever
// title, author and identifier hints a host application holds, it plans
// catalog requests, searches and scrapes the catalog, ranks the candidates
// against the query and returns host-ready normalized records, optionally
// resolving a cover image.
package douban

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bookmeta/douban/internal/catalog"
	"github.com/bookmeta/douban/internal/match"
	"github.com/bookmeta/douban/internal/ratelimit"
)

// Config is the lookup configuration a host supplies. The zero value is
// usable; every field has a documented default.
type Config struct {
	// Timeout bounds each catalog request. Default 10s. The caller's
	// context deadline still bounds the lookup as a whole.
	Timeout time.Duration

	// MinScore is the acceptance threshold: candidates scoring below it
	// are treated as non-matches. Default 0.5. Must be at most 1.
	MinScore float64

	// MaxResults caps how many records Identify returns. Default 5.
	MaxResults int

	// RequestsPerSecond paces catalog traffic. Default 2.
	RequestsPerSecond float64

	// RetryAttempts is the total number of tries for a rate-limited
	// request. Default 1, meaning no retry; timeouts and unreachable
	// errors are never retried here, that decision belongs to the host.
	RetryAttempts int

	// RetryBackoff is the base delay between retry attempts. Default 2s.
	// A Retry-After hint from the catalog overrides it.
	RetryBackoff time.Duration

	// OmitSubtitle leaves the 副标题 field out of the normalized title.
	// By default the subtitle is appended as "Title: Subtitle".
	OmitSubtitle bool

	// MaxCoverWidth shrinks fetched covers wider than this many pixels.
	// 0 keeps the original bytes.
	MaxCoverWidth int

	// UserAgent overrides the User-Agent header sent to the catalog.
	UserAgent string

	// SearchURL and BookURL override the catalog endpoints, mainly for
	// tests.
	SearchURL string
	BookURL   string

	// HTTPClient overrides the transport. Default: http.Client with
	// Timeout applied.
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MinScore <= 0 {
		c.MinScore = match.DefaultMinScore
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 5
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 2
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 1
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
	return c
}

// Source is a ready-to-use Douban lookup. It holds no per-lookup state;
// concurrent Identify and Cover calls are safe.
type Source struct {
	cfg    Config
	client *catalog.Client
}

// New validates the configuration, fills defaults and builds a Source.
func New(cfg Config) (*Source, error) {
	if cfg.MinScore > 1 {
		return nil, fmt.Errorf("douban: MinScore %v out of range (0,1]", cfg.MinScore)
	}
	cfg = cfg.withDefaults()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	client := catalog.NewClient(
		catalog.WithHTTPClient(httpClient),
		catalog.WithSearchURL(cfg.SearchURL),
		catalog.WithBookURL(cfg.BookURL),
		catalog.WithUserAgent(cfg.UserAgent),
		catalog.WithRateLimiter(ratelimit.New("douban", cfg.RequestsPerSecond)),
		catalog.WithRetryPolicy(cfg.RetryAttempts, cfg.RetryBackoff),
	)

	return &Source{cfg: cfg, client: client}, nil
}
