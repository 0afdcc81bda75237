package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

const rateLimitPrefix = "ims:ratelimit:"

// Limiter is a fixed-window counter. A nil Limiter allows everything, and
// Redis errors fail open.
type Limiter struct {
	client *Client
	script *goredis.Script
	limit  int
	window time.Duration
}

func NewLimiter(c *Client, limit int, window time.Duration) *Limiter {
	if c == nil || limit <= 0 || window <= 0 {
		return nil
	}
	return &Limiter{client: c, script: goredis.NewScript(rateLimitScript), limit: limit, window: window}
}

func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil || key == "" {
		return true
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client.rdb, []string{rateLimitPrefix + key}, ttl, l.limit).Int64()
	if err != nil {
		l.client.logger.Warn("rate limit check failed", "err", err)
		return true
	}
	return allowed == 1
}
