// Package ratelimit 提供按客户端键的固定窗口限流器。
package ratelimit

import (
	"context"
	"errors"
)

// ErrLimitExceeded 表示该键在当前窗口内的配额已耗尽。
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Limiter 定义限流器接口：每次调用消耗一点配额。
// 配额耗尽时返回 ErrLimitExceeded，调用方应当终止请求（429），不做自动重试。
type Limiter interface {
	Allow(ctx context.Context, key string) error
}
