package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KEYS[1] = sorted set of admitted request times (ms)
// ARGV[1] = now (ms), ARGV[2] = window (ms), ARGV[3] = limit, ARGV[4] = member id
// Returns: {allowed, count_after, oldest_ms}
const slidingWindowScript = `
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
    allowed = 1
end

local oldest = 0
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
    oldest = tonumber(first[2])
end

return {allowed, count, oldest}
`

// RedisStore shares request logs between instances through Redis sorted sets
type RedisStore struct {
	client    redis.UniversalClient
	script    *redis.Script
	keyPrefix string
	now       func() time.Time
}

// NewRedisStore creates a store on an existing client
func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{
		client:    client,
		script:    redis.NewScript(slidingWindowScript),
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

// Open parses a redis:// or rediss:// URL and returns a client.
// The connection is not checked; the first Allow reports unreachable servers.
func Open(url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, errors.New("redis url is empty")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.PoolSize = 10

	return redis.NewClient(opts), nil
}

func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := s.now()
	nowMs := now.UnixMilli()

	res, err := s.script.Run(ctx, s.client,
		[]string{s.keyPrefix + key},
		nowMs, window.Milliseconds(), limit, fmt.Sprintf("%d-%s", nowMs, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis sliding window: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("redis sliding window: unexpected reply length %d", len(res))
	}

	var oldest time.Time
	if res[2] > 0 {
		oldest = time.UnixMilli(res[2])
	}

	return decide(now, int(res[1]), oldest, limit, window), nil
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
