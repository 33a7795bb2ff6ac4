package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/corpus"
	"golang.org/x/time/rate"
)

var _ corpus.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter enforces a minimum delay between requests to the same
// origin using token buckets. Each origin gets its own limiter, so
// concurrent requests to different origins never wait on each other.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delay    time.Duration
}

// NewDomainLimiter creates a DomainLimiter with the given minimum delay
// between two requests to one origin. A zero or negative delay disables
// limiting entirely.
func NewDomainLimiter(delay time.Duration) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until the rate limit allows a request to the origin.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, origin string) error {
	if d.delay <= 0 {
		return ctx.Err()
	}

	d.mu.Lock()
	limiter, ok := d.limiters[origin]
	if !ok {
		// Burst of 1: consecutive requests to one origin are spaced by
		// at least the configured delay.
		limiter = rate.NewLimiter(rate.Every(d.delay), 1)
		d.limiters[origin] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
