package mock

import (
	"context"

	"github.com/fwojciec/corpus"
)

var _ corpus.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy is a mock implementation of corpus.RobotsPolicy.
type RobotsPolicy struct {
	AllowedFn func(ctx context.Context, url string) bool
}

func (r *RobotsPolicy) Allowed(ctx context.Context, url string) bool {
	return r.AllowedFn(ctx, url)
}

var _ corpus.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of corpus.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, origin string) error
}

func (d *DomainLimiter) Wait(ctx context.Context, origin string) error {
	return d.WaitFn(ctx, origin)
}
