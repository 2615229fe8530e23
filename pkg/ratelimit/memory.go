package ratelimit

import (
	"context"
	"sync"
	"time"
)

// pruneThreshold 控制桶 map 的清理时机，超过该数量时顺带删除过期的桶。
const pruneThreshold = 1024

type bucket struct {
	windowStart time.Time
	count       int
}

// MemoryLimiter 是进程内的固定窗口限流器。
// 状态不跨实例共享，只适用于单实例部署；多实例请使用 RedisLimiter。
type MemoryLimiter struct {
	mu      sync.Mutex
	points  int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time // 可在测试中替换
}

// NewMemoryLimiter 创建一个每窗口 points 点配额的内存限流器。
func NewMemoryLimiter(points int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		points:  points,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow 为 key 消耗一点配额。窗口从该键本窗口第一次请求时开始计时，
// 窗口结束后计数归零。
func (l *MemoryLimiter) Allow(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) >= l.window {
		if len(l.buckets) > pruneThreshold {
			l.prune(now)
		}
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}

	b.count++
	if b.count > l.points {
		return ErrLimitExceeded
	}
	return nil
}

// prune 删除所有已过期的桶，调用方必须持有锁。
func (l *MemoryLimiter) prune(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, k)
		}
	}
}
