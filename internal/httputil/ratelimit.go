// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the API client.
package httputil

import (
	"context"
	"time"
)

// RateLimiter enforces a minimum wall-clock interval between consecutive
// outbound calls. It is not safe for concurrent use: one client issues
// requests sequentially and owns its limiter.
type RateLimiter struct {
	interval time.Duration
	last     time.Time

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewRateLimiter returns a limiter that spaces calls at least interval
// apart. A zero or negative interval disables waiting.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		now:      time.Now,
		after:    time.After,
	}
}

// Wait blocks until at least the interval has passed since the previous
// Wait returned, then records the current time as the last call. If the
// clock reads earlier than the recorded call the wait is skipped.
//
// If ctx is cancelled while waiting, Wait returns ctx.Err() and leaves the
// last-call time unchanged.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if now := r.now(); !r.last.IsZero() && !now.Before(r.last) {
		sleep := r.last.Add(r.interval).Sub(now)
		if sleep > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.after(sleep):
			}
		}
	}

	r.last = r.now()
	return nil
}
