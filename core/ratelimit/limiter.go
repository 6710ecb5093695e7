package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces external requests at least one interval apart.
// There is one pipeline instance and one endpoint per application, so a local token
// bucket with a burst of one is enough.
type Limiter struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// New returns a limiter allowing requestsPerMinute acquisitions per minute.
func New(requestsPerMinute int) (*Limiter, error) {
	if requestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", requestsPerMinute)
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}, nil
}

// Unlimited returns a limiter that never blocks.
func Unlimited() *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
}

// Acquire blocks until the interval since the previous acquisition has elapsed.
// It returns early with an error when ctx is done or its deadline is too close.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Interval returns the minimum spacing between acquisitions.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
