package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether a caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local info = redis.call("HMGET", key, "tokens", "last_refill")
	local tokens = tonumber(info[1])
	local last_refill = tonumber(info[2])

	if tokens == nil then
		tokens = capacity
		last_refill = now
	end

	local delta = math.max(0, now - last_refill)
	local filled_tokens = math.min(capacity, tokens + (delta / 1000 * rate))

	local allowed = 0
	if filled_tokens >= requested then
		filled_tokens = filled_tokens - requested
		allowed = 1
	end
	redis.call("HMSET", key, "tokens", filled_tokens, "last_refill", now)
	redis.call("EXPIRE", key, math.ceil(capacity / rate) * 2)

	return allowed
`)

// RedisRateLimiter is a token bucket shared by all instances through Redis.
type RedisRateLimiter struct {
	client   redis.Scripter
	capacity int
	rate     float64
	now      func() time.Time
}

// NewRedisRateLimiter allows perMinute requests per key, refilled continuously.
func NewRedisRateLimiter(client redis.Scripter, perMinute int) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		capacity: perMinute,
		rate:     float64(perMinute) / 60,
		now:      time.Now,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	keys := []string{fmt.Sprintf("rate_limit:%s", key)}
	args := []interface{}{l.capacity, l.rate, l.now().UnixMilli(), 1}

	allowed, err := tokenBucketScript.Run(ctx, l.client, keys, args...).Int()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// maxLocalBuckets bounds the per-key map of LocalRateLimiter.
const maxLocalBuckets = 10000

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter keeps one token bucket per key in process memory.
// When the map is full, refilled buckets are dropped first; they hold no
// state a fresh bucket would not. Otherwise the least recently used key goes.
type LocalRateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*localBucket
	perMinute  int
	maxBuckets int
	now        func() time.Time
}

func NewLocalRateLimiter(perMinute int) *LocalRateLimiter {
	return &LocalRateLimiter{
		buckets:    make(map[string]*localBucket),
		perMinute:  perMinute,
		maxBuckets: maxLocalBuckets,
		now:        time.Now,
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.buckets[key]
	if !exists {
		if len(l.buckets) >= l.maxBuckets {
			l.evict(now)
		}
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(l.perMinute)/60, l.perMinute)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

// evict must be called with mu held.
func (l *LocalRateLimiter) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, b := range l.buckets {
		if b.limiter.TokensAt(now) >= float64(l.perMinute) {
			delete(l.buckets, k)
			continue
		}
		if oldestKey == "" || b.lastSeen.Before(oldest) {
			oldestKey, oldest = k, b.lastSeen
		}
	}
	if len(l.buckets) >= l.maxBuckets {
		delete(l.buckets, oldestKey)
	}
}
