package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bookmeta/douban/metadata"
)

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		body, err := c.doRequest(ctx, endpoint)
		if err != nil {
			lastErr = err
			if !metadata.IsRateLimited(err) || attempt == c.retryAttempts {
				return nil, err
			}
			if serr := c.sleep(ctx, retryDelay(err, c.retryBackoff, attempt)); serr != nil {
				return nil, serr
			}
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, &metadata.LookupError{Kind: metadata.FailTimeout, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &metadata.LookupError{Kind: metadata.FailUnreachable, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}
	return body, nil
}

// classifyStatus maps a non-2xx response to a typed lookup failure.
// Douban throttles with 403 rather than 429, so both mean rate limited.
func classifyStatus(resp *http.Response) *metadata.LookupError {
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return &metadata.LookupError{
			Kind:       metadata.FailRateLimited,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	case http.StatusNotFound:
		return &metadata.LookupError{
			Kind: metadata.FailNotFound,
			Err:  fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &metadata.LookupError{
		Kind: metadata.FailUnreachable,
		Err:  fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
	}
}

func classifyTransport(err error) *metadata.LookupError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &metadata.LookupError{Kind: metadata.FailTimeout, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &metadata.LookupError{Kind: metadata.FailTimeout, Err: err}
	}
	return &metadata.LookupError{Kind: metadata.FailUnreachable, Err: err}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func retryDelay(err error, backoff time.Duration, attempt int) time.Duration {
	if le, ok := metadata.AsLookupError(err); ok && le.RetryAfter > 0 {
		return le.RetryAfter
	}
	// exponential backoff capped at 30 seconds
	delay := backoff * time.Duration(1<<uint(attempt-1))
	if delay > 30*time.Second {
		return 30 * time.Second
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &metadata.LookupError{Kind: metadata.FailTimeout, Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}
