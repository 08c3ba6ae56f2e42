// Package ratelimit implements a sliding-window-log quota keyed by client.
//
// Each admitted request leaves a timestamp in the key's log; a request is
// admitted while fewer than limit timestamps fall inside the trailing window.
// Rejected requests are not recorded, so a client that keeps retrying while
// blocked does not extend its own lockout.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one quota check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Store checks and records requests against a sliding window
type Store interface {
	Name() string
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// decide applies the sliding-window rule to a pruned log.
// count is the number of admitted requests inside the window, oldest the
// earliest of them (zero when count is 0).
func decide(now time.Time, count int, oldest time.Time, limit int, window time.Duration) Decision {
	d := Decision{Limit: limit}

	if count >= limit {
		d.ResetAt = oldest.Add(window)
		d.RetryAfter = d.ResetAt.Sub(now)
		if d.RetryAfter < time.Second {
			d.RetryAfter = time.Second
		}
		return d
	}

	d.Allowed = true
	d.Remaining = limit - count - 1
	if count == 0 {
		d.ResetAt = now.Add(window)
	} else {
		d.ResetAt = oldest.Add(window)
	}
	return d
}
