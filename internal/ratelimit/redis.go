package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storyforge:ratelimit:"

// allowScript prunes the window, then either records the request and
// returns 0 or returns the milliseconds until the oldest entry expires.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < max then
  redis.call('ZADD', key, ARGV[1], ARGV[4])
  redis.call('PEXPIRE', key, ARGV[2])
  return 0
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return tonumber(oldest[2]) + window - now
`)

// statusScript prunes the window and returns {count, oldest score}.
var statusScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count == 0 then
  return {0, 0}
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {count, tonumber(oldest[2])}
`)

// Redis shares windows between processes through sorted sets keyed per
// category. Scores are admission times in milliseconds.
type Redis struct {
	client redis.Scripter
	limits Limits
	now    func() time.Time
}

// NewRedis creates a Redis-backed limiter. A nil limits map uses
// DefaultLimits.
func NewRedis(client redis.Scripter, limits Limits, opts ...RedisOption) *Redis {
	if limits == nil {
		limits = DefaultLimits()
	}
	r := &Redis{client: client, limits: limits, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RedisOption configures a Redis limiter.
type RedisOption func(*Redis)

// WithRedisClock replaces the time source used for scores.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *Redis) {
		r.now = now
	}
}

func (r *Redis) Allow(ctx context.Context, category Category) error {
	w, ok := r.limits[category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	wait, err := allowScript.Run(ctx, r.client, []string{redisKeyPrefix + string(category)},
		r.now().UnixMilli(), w.Window.Milliseconds(), w.MaxRequests, uuid.NewString(),
	).Int64()
	if err != nil {
		return fmt.Errorf("rate limit %s: %w", category, err)
	}
	if wait > 0 {
		return &LimitedError{Category: category, RetryAfter: time.Duration(wait) * time.Millisecond}
	}
	return nil
}

func (r *Redis) RetryAfter(ctx context.Context, category Category) (time.Duration, error) {
	w, ok := r.limits[category]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	count, retry, err := r.window(ctx, category, w)
	if err != nil {
		return 0, err
	}
	if count < w.MaxRequests {
		return 0, nil
	}
	return retry, nil
}

func (r *Redis) Status(ctx context.Context) (map[string]Status, error) {
	out := make(map[string]Status, len(r.limits))
	for _, category := range Categories {
		w, ok := r.limits[category]
		if !ok {
			continue
		}
		count, retry, err := r.window(ctx, category, w)
		if err != nil {
			return nil, err
		}
		if count < w.MaxRequests {
			retry = 0
		}
		out[category.StatusKey()] = newStatus(count, w.MaxRequests, retry)
	}
	return out, nil
}

func (r *Redis) window(ctx context.Context, category Category, w Window) (int, time.Duration, error) {
	now := r.now().UnixMilli()
	vals, err := statusScript.Run(ctx, r.client, []string{redisKeyPrefix + string(category)},
		now, w.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit status %s: %w", category, err)
	}
	if len(vals) != 2 || vals[0] == 0 {
		return 0, 0, nil
	}
	retry := time.Duration(vals[1]+w.Window.Milliseconds()-now) * time.Millisecond
	return int(vals[0]), retry, nil
}
