// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pytutor-go/internal/model"
)

// AdminAuthMiddleware 检查用户是否具有管理员权限。
// 此中间件必须在 AuthMiddleware 之后使用。
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			// user 对象不存在说明 AuthMiddleware 未能成功解析，属于服务器内部错误
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "无法获取用户信息"})
			return
		}

		currentUser, ok := user.(*model.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "用户数据类型错误"})
			return
		}

		if currentUser.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "权限不足，需要管理员权限"})
			return
		}

		c.Next()
	}
}
