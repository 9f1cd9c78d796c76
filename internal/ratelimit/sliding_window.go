package ratelimit

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// Counts requests in the trailing window with a ZSET of request timestamps.
// Expired members are pruned before counting so a burst a minute ago does
// not block traffic now.
const slidingWindowScript = `
local key = KEYS[1]
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000000) + nowData[2]
local cutoff = now - window

redis.call("ZREMRANGEBYSCORE", key, "-inf", cutoff)
local count = redis.call("ZCARD", key)

local allowed = 0
if count < limit then
  allowed = 1
  redis.call("ZADD", key, now, now)
  count = count + 1
end

redis.call("PEXPIRE", key, math.ceil(window / 1000))

return {allowed, count}
`

type slidingWindow struct {
	client *redis.Client
	script *redis.Script
}

// NewSlidingWindow builds a redis-backed limiter. The window state lives in
// redis so the budget holds across replicas.
func NewSlidingWindow(client *redis.Client) Limiter {
	return &slidingWindow{
		client: client,
		script: redis.NewScript(slidingWindowScript),
	}
}

func (l *slidingWindow) Allow(ctx context.Context, key string, limit int) (*Result, error) {
	if key == "" {
		return nil, errors.New("rate limiter key is empty")
	}
	if limit <= 0 {
		return nil, errors.New("rate limiter limit must be positive")
	}

	res, err := l.script.Run(
		ctx,
		l.client,
		[]string{fmt.Sprintf("ratelimit:{%s}", key)},
		Window.Microseconds(),
		limit,
	).Slice()
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, errors.New("invalid rate limit script response")
	}

	allowed := castToInt(res[0]) == 1
	count := int(castToInt(res[1]))

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	out := &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
	}
	if !allowed {
		out.RetryAfter = Window
	}
	return out, nil
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}
