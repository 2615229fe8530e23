// Package apperr 定义了应用内部统一的错误分类。
// 业务层只返回这里的哨兵错误（或其包装），由 handler 统一映射为 HTTP 状态码，
// 避免各层各自约定 error-vs-nil 的语义。
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized 表示请求未携带有效会话。
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited 表示客户端在当前窗口内的请求配额已耗尽。
	ErrRateLimited = errors.New("too many requests")
	// ErrNotFound 表示所需的记录或配置不存在。
	ErrNotFound = errors.New("record not found")
	// ErrInvalidConversationState 表示对话历史不满足调用模型的结构性前置条件
	// （规范化后为空，或最后一条不是用户消息）。
	ErrInvalidConversationState = errors.New("last message must be from user")
	// ErrUpstream 表示外部生成服务调用失败。
	ErrUpstream = errors.New("upstream provider error")
	// ErrInvalidCredentials 统一表示登录失败（用户不存在与密码错误不作区分）。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken 表示注册时邮箱已被占用。
	ErrEmailTaken = errors.New("user already exists")
)

// ValidationError 携带请求体校验中所有不通过的字段说明。
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request payload"
	}
	return fmt.Sprintf("invalid request payload: %s", strings.Join(e.Fields, "; "))
}

// NewValidation 构造一个包含字段错误列表的 ValidationError。
func NewValidation(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
