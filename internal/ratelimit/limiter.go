// Package ratelimit paces outbound catalog requests.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging/debugging.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a limiter admitting requestsPerSecond sustained requests.
// Fractional rates are allowed; douban answers 403 to anything resembling
// bulk traffic. Burst is the rate rounded up, at least one.
func New(name string, requestsPerSecond float64) *Limiter {
	burst := int(requestsPerSecond)
	if float64(burst) < requestsPerSecond {
		burst++
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		name:    name,
	}
}

// Wait blocks until the rate limiter allows a request to proceed.
// Returns an error if the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}
