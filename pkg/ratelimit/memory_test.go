package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsUpToPoints(t *testing.T) {
	l := NewMemoryLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		require.NoError(t, l.Allow(context.Background(), "1.2.3.4"), "request %d should pass", i+1)
	}
	err := l.Allow(context.Background(), "1.2.3.4")
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)

	require.NoError(t, l.Allow(context.Background(), "a"))
	require.NoError(t, l.Allow(context.Background(), "a"))
	require.ErrorIs(t, l.Allow(context.Background(), "a"), ErrLimitExceeded)

	// 另一个键不受影响
	assert.NoError(t, l.Allow(context.Background(), "b"))
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	require.NoError(t, l.Allow(context.Background(), "k"))
	require.NoError(t, l.Allow(context.Background(), "k"))
	require.ErrorIs(t, l.Allow(context.Background(), "k"), ErrLimitExceeded)

	// 窗口内继续被拒
	now = now.Add(59 * time.Second)
	require.ErrorIs(t, l.Allow(context.Background(), "k"), ErrLimitExceeded)

	// 过了窗口计数归零
	now = now.Add(2 * time.Second)
	assert.NoError(t, l.Allow(context.Background(), "k"))
	assert.NoError(t, l.Allow(context.Background(), "k"))
	assert.ErrorIs(t, l.Allow(context.Background(), "k"), ErrLimitExceeded)
}

func TestMemoryLimiterPrunesExpiredBuckets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i <= pruneThreshold; i++ {
		require.NoError(t, l.Allow(context.Background(), fmt.Sprintf("ip-%d", i)))
	}
	require.Greater(t, len(l.buckets), pruneThreshold)

	// 全部过期后，下一次新键写入应触发清理
	now = now.Add(2 * time.Minute)
	require.NoError(t, l.Allow(context.Background(), "fresh"))
	assert.Equal(t, 1, len(l.buckets))
}
