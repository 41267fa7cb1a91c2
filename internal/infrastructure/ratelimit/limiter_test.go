package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"account-service/internal/infrastructure/cache"
)

type memCounter struct {
	counts map[string]int64
	err    error
}

func (m *memCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], window, nil
}

func TestFixedWindowLimiter_BudgetBoundary(t *testing.T) {
	counter := &memCounter{}
	l := NewFixedWindowLimiter(counter, 3, time.Minute, nil)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if d := l.Allow(ctx, "profile", "user-1"); !d.Allowed {
			t.Fatalf("request %d within budget must be allowed", i)
		}
	}

	d := l.Allow(ctx, "profile", "user-1")
	if d.Allowed {
		t.Fatalf("request over budget must be rejected")
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("rejection must carry the window reset, got %v", d.RetryAfter)
	}
}

func TestFixedWindowLimiter_SubjectsIsolated(t *testing.T) {
	counter := &memCounter{}
	l := NewFixedWindowLimiter(counter, 1, time.Minute, nil)

	ctx := context.Background()
	if d := l.Allow(ctx, "profile", "user-1"); !d.Allowed {
		t.Fatalf("first request must pass")
	}
	if d := l.Allow(ctx, "profile", "user-1"); d.Allowed {
		t.Fatalf("user-1 budget exhausted")
	}
	if d := l.Allow(ctx, "profile", "user-2"); !d.Allowed {
		t.Fatalf("user-2 must have an untouched budget")
	}
}

func TestFixedWindowLimiter_FailsOpenWhenCounterDown(t *testing.T) {
	counter := &memCounter{err: cache.ErrUnavailable}
	l := NewFixedWindowLimiter(counter, 1, time.Minute, nil)

	for i := 0; i < 5; i++ {
		if d := l.Allow(context.Background(), "profile", "user-1"); !d.Allowed {
			t.Fatalf("limiter must fail open when the counter store is down")
		}
	}
}

func TestFixedWindowLimiter_FailsOpenOnCounterError(t *testing.T) {
	counter := &memCounter{err: errors.New("connection reset")}
	l := NewFixedWindowLimiter(counter, 1, time.Minute, nil)

	if d := l.Allow(context.Background(), "profile", "user-1"); !d.Allowed {
		t.Fatalf("limiter must fail open on counter errors")
	}
}

func TestFixedWindowLimiter_DefaultsAppliedForBadConfig(t *testing.T) {
	l := NewFixedWindowLimiter(&memCounter{}, 0, 0, nil)
	if l.limit <= 0 || l.window <= 0 {
		t.Fatalf("non-positive config must fall back to defaults")
	}
}
