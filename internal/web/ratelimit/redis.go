package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the connection check in NewRedisLimiterWithConfig
const pingTimeout = 5 * time.Second

// slidingWindow records one request in a sorted set scored by milliseconds
// if fewer than the limit fall inside the window. It returns
// {allowed, count, oldest score}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	count = count + 1
	allowed = 1
end

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if #first == 2 then
	oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// RedisLimiter is a sliding window Limiter shared by every server pointed
// at the same Redis.
type RedisLimiter struct {
	client *redis.Client
	config RedisConfig
	now    func() time.Time
}

// RedisConfig holds Redis connection and limit settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	Limit  int
	Window time.Duration
	// Prefix is prepended to every key
	Prefix string
}

// NewRedisLimiterWithConfig connects to Redis and verifies the connection
// with a PING.
func NewRedisLimiterWithConfig(ctx context.Context, config RedisConfig) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	l, err := NewRedisLimiterWithClient(client, config)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return l, nil
}

// NewRedisLimiterWithClient creates a limiter on an existing client. The
// limiter owns the client and closes it in Close.
func NewRedisLimiterWithClient(client *redis.Client, config RedisConfig) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if config.Limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	if config.Window < time.Millisecond {
		return nil, errors.New("window must be at least 1ms")
	}
	if config.Prefix == "" {
		config.Prefix = "partytracker:ratelimit:"
	}
	return &RedisLimiter{client: client, config: config, now: time.Now}, nil
}

// Allow records a request for key if the window has room
func (r *RedisLimiter) Allow(ctx context.Context, key string) (*Info, error) {
	now := r.now()
	window := r.config.Window.Milliseconds()

	res, err := slidingWindow.Run(ctx, r.client, []string{r.config.Prefix + key},
		now.UnixMilli(), window, r.config.Limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("rate limit check: unexpected result %v", res)
	}

	allowed, count, oldest := res[0] == 1, int(res[1]), res[2]
	remaining := r.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	info := &Info{
		Limit:     r.config.Limit,
		Remaining: remaining,
		Allowed:   allowed,
		ResetAt:   now,
	}
	if remaining == 0 {
		info.ResetAt = time.UnixMilli(oldest + window)
	}
	return info, nil
}

// Reset forgets every request recorded for key
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.config.Prefix+key).Err()
}

// Count returns the number of requests recorded for key in the current
// window.
func (r *RedisLimiter) Count(ctx context.Context, key string) (int, error) {
	redisKey := r.config.Prefix + key
	cutoff := r.now().UnixMilli() - r.config.Window.Milliseconds()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprint(cutoff))
	card := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit count: %w", err)
	}
	return int(card.Val()), nil
}

// Close closes the Redis connection
func (r *RedisLimiter) Close() error {
	return r.client.Close()
}
