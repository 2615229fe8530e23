package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter 是基于 Redis INCR/EXPIRE 的固定窗口限流器，
// 计数在所有服务实例间共享，适用于横向扩展部署。
type RedisLimiter struct {
	rdb    *redis.Client
	points int
	window time.Duration
}

// NewRedisLimiter 创建一个每窗口 points 点配额的 Redis 限流器。
func NewRedisLimiter(rdb *redis.Client, points int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, points: points, window: window}
}

// Allow 为 key 消耗一点配额。键在本窗口第一次出现时设置过期时间，
// 到期后 Redis 自动删除计数，窗口随之重置。
func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("failed to incr rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}
	if count > int64(l.points) {
		return ErrLimitExceeded
	}
	return nil
}
