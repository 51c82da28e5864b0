package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TiberiusB/Nondominium/internal/ratelimit/models"
	"github.com/TiberiusB/Nondominium/pkg/platform/sentinel"
)

// RedisBucketStore implements BucketStore on a Redis sorted set per
// key, so replicas sharing the Redis instance share the limit.
type RedisBucketStore struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed bucket store.
func NewRedis(client *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{client: client, prefix: "ratelimit:"}
}

// Allow records one request and reports whether it fits the limit. The
// check-and-record runs in a MULTI/EXEC pipeline; an over-limit entry
// is removed again so denied requests do not consume budget.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	now := time.Now()
	redisKey := s.prefix + key
	member := strconv.FormatInt(now.UnixNano(), 10)
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check for %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}

	count := int(countCmd.Val())
	if count > limit {
		if err := s.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			return nil, fmt.Errorf("rate limit rollback for %s: %w: %w", key, sentinel.ErrUnavailable, err)
		}
		return &models.Result{
			Allowed:   false,
			Remaining: 0,
			Limit:     limit,
			ResetAt:   s.oldestReset(ctx, redisKey, window, now),
		}, nil
	}

	return &models.Result{
		Allowed:   true,
		Remaining: limit - count,
		Limit:     limit,
		ResetAt:   s.oldestReset(ctx, redisKey, window, now),
	}, nil
}

// oldestReset reports when the oldest live entry leaves the window.
func (s *RedisBucketStore) oldestReset(ctx context.Context, redisKey string, window time.Duration, now time.Time) time.Time {
	oldest, err := s.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
	if err != nil || len(oldest) == 0 {
		return now.Add(window)
	}
	return time.Unix(0, int64(oldest[0].Score)).Add(window)
}

// Reset clears the counter for a key.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// GetCurrentCount returns the request count still inside the window.
// The caller supplies no window here, so entries are counted as stored;
// Allow prunes expired entries on every check.
func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	count, err := s.client.ZCard(ctx, s.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit count for %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return int(count), nil
}
