package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sunflower/sunflower-api/internal/core/ports"
)

// allowScript sets the key only when absent and otherwise reports its
// remaining TTL, so the decision is one atomic round-trip.
//
// Returns {1, 0} when the key was set, {0, pttl_ms} when it already existed.
var allowScript = redis.NewScript(`
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
	return {1, 0}
end
return {0, redis.call("PTTL", KEYS[1])}
`)

// RateLimiter is an advisory, TTL-backed limiter: at most one call per key
// succeeds per window. Key format: <prefix>:<identifier>.
type RateLimiter struct {
	client redis.Scripter
	now    func() time.Time
}

// NewRateLimiter creates a RateLimiter wrapping the given Redis client.
func NewRateLimiter(client redis.Scripter) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

var _ ports.RateLimiter = (*RateLimiter)(nil)

// Allow marks key for window if no mark exists. Throttled calls have no side effect.
func (l *RateLimiter) Allow(ctx context.Context, key string, window time.Duration) (ports.Decision, error) {
	if window <= 0 {
		return ports.Decision{}, errors.New("rate limit: window must be positive")
	}

	ms := window.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	res, err := allowScript.Run(ctx, l.client, []string{key},
		strconv.FormatInt(l.now().Unix(), 10), ms).Int64Slice()
	if err != nil {
		return ports.Decision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(res) != 2 {
		return ports.Decision{}, fmt.Errorf("rate limit %s: unexpected reply %v", key, res)
	}

	if res[0] == 1 {
		return ports.Decision{Allowed: true}, nil
	}

	retry := time.Duration(res[1]) * time.Millisecond
	// -1: key without expiry, -2: key vanished between SET and PTTL.
	if res[1] < 0 {
		retry = window
	}
	return ports.Decision{Allowed: false, RetryAfter: retry}, nil
}
