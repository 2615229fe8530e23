// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// clientKey 从 X-Forwarded-For 头解析限流键。
// 取第一跳地址；请求没有携带该头时退回哨兵值 "unknown"。
func clientKey(c *gin.Context) string {
	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded == "" {
		return "unknown"
	}
	first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
	if first == "" {
		return "unknown"
	}
	return first
}

// bindingErrors 把绑定失败转换为字段错误列表，逐项枚举所有不通过的字段。
func bindingErrors(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s 校验失败", fe.Namespace(), fe.Tag()))
		}
		return msgs
	}
	return []string{err.Error()}
}
