package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisRateLimiter struct {
	client *redis.Client
	window time.Duration
	max    int
	prefix string
}

// NewRedisRateLimiter counts OTP requests per key in a fixed window using a
// single INCR+EXPIRE script. Returns nil when redis is not configured; the
// manager treats a nil limiter as open.
func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Hour
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "dentanet:otp:rl:",
	}
}

func (l *redisRateLimiter) Allow(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	count, err := l.client.Eval(ctx, otpAllowScript, []string{l.prefix + normalized}, seconds).Int()
	if err != nil {
		// Fail open: a redis hiccup must not block registration
		return true
	}
	return count <= l.max
}
