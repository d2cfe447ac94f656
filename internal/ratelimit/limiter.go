// Package ratelimit throttles bursts of swipes per user with Redis windows.
// It is independent of the daily quota.
package ratelimit

import (
	"context"
	"time"
)

// WindowCounter increments a key inside an expiring window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Result of one Allow call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter allows up to limit hits per window per key.
type Limiter struct {
	counter WindowCounter
	prefix  string
	limit   int
	window  time.Duration
}

// NewPerMinute builds a limiter with a one minute window. limit <= 0 disables it.
func NewPerMinute(counter WindowCounter, prefix string, limit int) *Limiter {
	return &Limiter{counter: counter, prefix: prefix, limit: limit, window: time.Minute}
}

// Allow records a hit for key. A disabled limiter always allows.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	if l == nil || l.counter == nil || l.limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	count, ttl, err := l.counter.IncrWindow(ctx, l.prefix+":"+key, l.window)
	if err != nil {
		return Result{}, err
	}
	if count > int64(l.limit) {
		return Result{Allowed: false, RetryAfter: ttl}, nil
	}
	return Result{Allowed: true, Remaining: l.limit - int(count)}, nil
}
