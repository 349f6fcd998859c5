package ports

import (
	"context"
	"time"
)

// Decision is the outcome of a rate limiter check.
type Decision struct {
	Allowed bool
	// RetryAfter is the remaining window when the call was throttled.
	RetryAfter time.Duration
}

// RateLimiter marks a key for window and rejects further calls until the
// mark expires. The check and the mark happen atomically in the backing store.
type RateLimiter interface {
	Allow(ctx context.Context, key string, window time.Duration) (Decision, error)
}

// RateLimitKey builds a limiter key from an action prefix and a caller identifier.
func RateLimitKey(prefix, id string) string {
	return prefix + ":" + id
}
