// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pytutor-go/internal/service"
	"pytutor-go/pkg/token"
)

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 它从请求头中提取 token，验证有效性与黑名单状态，
// 并将完整的 User 对象存入 Gin 的上下文中。
// 认证检查先于限流与一切存储操作。
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请求未包含授权头"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的授权头格式"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效或已过期的 token"})
			return
		}

		// 已登出的 token 不再接受
		if userService.IsTokenRevoked(c.Request.Context(), tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token 已失效"})
			return
		}

		// 使用 claims 中的邮箱获取完整的用户信息，用户可能已被删除
		user, err := userService.GetByEmail(claims.Email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
			return
		}

		// 将完整的 User 对象与 claims 存入 context，供后续处理函数使用
		c.Set("user", user)
		c.Set("claims", claims)

		c.Next()
	}
}
