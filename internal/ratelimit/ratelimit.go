// Package ratelimit provides the global pacing primitive shared by all load
// workers. A single Limiter caps the aggregate request rate of the whole
// process, not the rate of any individual worker.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces grants at least one interval apart across every goroutine
// sharing it. The zero value is not usable; construct with New and pass the
// same instance to each worker.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// New returns a Limiter spacing grants 1/rps apart, or nil when rps <= 0.
// A nil Limiter is valid and never waits, so callers can thread it through
// unconditionally.
func New(rps int) *Limiter {
	if rps <= 0 {
		return nil
	}
	return &Limiter{interval: time.Second / time.Duration(rps)}
}

// Interval reports the minimum spacing between grants. Zero for a nil Limiter.
func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}

// Wait blocks until at least one interval has elapsed since the previously
// granted acquisition, then returns. The grant slot is reserved under the
// mutex before sleeping, so concurrent callers queue behind one another and
// two grants are never closer than the interval. An idle limiter grants the
// first call immediately; unused time never accumulates into a burst.
//
// Returns ctx.Err() if the context is cancelled while waiting. The reserved
// slot is not returned on cancellation; the next caller simply waits from it.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	grant := l.last.Add(l.interval)
	if grant.Before(now) {
		grant = now
	}
	l.last = grant
	l.mu.Unlock()

	delay := time.Until(grant)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
