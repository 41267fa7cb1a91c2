// Package ratelimit implements the per-user fixed-window throttle used on the
// profile endpoints. The counter itself is an injected collaborator with an
// atomic check-and-increment contract, so the budget holds across service
// instances sharing one redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"account-service/internal/infrastructure/cache"
)

// Counter is the atomic keyed counter the limiter charges requests against.
// Implemented by cache.Redis.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (count int64, reset time.Duration, err error)
}

// Decision reports the outcome of charging one request.
type Decision struct {
	Allowed bool
	// RetryAfter is the time until the current window resets. Only
	// meaningful when Allowed is false.
	RetryAfter time.Duration
}

type FixedWindowLimiter struct {
	counter Counter
	limit   int
	window  time.Duration
	logger  *log.Logger

	warnedDegraded atomic.Bool
}

func NewFixedWindowLimiter(counter Counter, limit int, window time.Duration, logger *log.Logger) *FixedWindowLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{counter: counter, limit: limit, window: window, logger: logger}
}

// Allow charges one request against (scope, subject) and reports whether it
// fits the window's budget. When the counter store is unreachable the limiter
// fails open: throttling degrades, the service keeps answering.
func (l *FixedWindowLimiter) Allow(ctx context.Context, scope, subject string) Decision {
	key := fmt.Sprintf("throttle:%s:%s", scope, subject)

	count, reset, err := l.counter.IncrWindow(ctx, key, l.window)
	if err != nil {
		// A broken counter store must not take the profile API down with
		// it; throttling degrades instead.
		if !errors.Is(err, cache.ErrUnavailable) && l.logger != nil {
			l.logger.Printf("[Throttle] counter error for %s: %v", key, err)
		}
		l.warnDegradedOnce()
		return Decision{Allowed: true}
	}

	if count > int64(l.limit) {
		return Decision{Allowed: false, RetryAfter: reset}
	}
	return Decision{Allowed: true}
}

func (l *FixedWindowLimiter) warnDegradedOnce() {
	if l.logger == nil {
		return
	}
	if l.warnedDegraded.CompareAndSwap(false, true) {
		l.logger.Printf("[Throttle] counter store unavailable, failing open")
	}
}
