package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type Store interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter is a fixed-window counter on top of redis. The first hit in a
// window sets the TTL; once the count exceeds the limit, callers wait out
// the remaining TTL.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

func NewLimiter(store Store, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.store == nil || l.limit <= 0 || l.window <= 0 {
		return Decision{Allowed: true}, nil
	}
	if key == "" {
		return Decision{}, fmt.Errorf("rate key is required")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, key, l.window)
	if err != nil {
		return Decision{}, fmt.Errorf("increment rate window: %w", err)
	}

	if count > l.limit {
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true}, nil
}

// ReportKey scopes report submissions per reporter.
func ReportKey(userID int64) string {
	return "rate:reports:" + strconv.FormatInt(userID, 10)
}
