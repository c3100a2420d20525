// Package ratelimit wraps golang.org/x/time/rate in the shared,
// token-bucket limiter every upstream caller passes through (spec §5). A
// single Limiter instance is shared across the indexer, RSS poller, and any
// fallback search calls — never a per-call limiter — so the configured
// requests/second figure is honored process-wide.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter gates upstream calls at a configured requests-per-second rate.
type Limiter struct {
	bucket  *rate.Limiter
	enabled bool
}

// New creates a Limiter at the given requests/second (spec §6
// requestsPerSecond, default 1). Passing enabled=false makes Wait a no-op,
// matching the "skipped in test mode" requirement (spec §5).
func New(requestsPerSecond float64, enabled bool) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		bucket:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		enabled: enabled,
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || !l.enabled {
		return nil
	}
	return l.bucket.Wait(ctx)
}
