// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pytutor-go/internal/model"
	"pytutor-go/internal/service"
	"pytutor-go/pkg/log"
	"pytutor-go/pkg/ratelimit"
)

// ConversationHandler 处理对话历史查询的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
	limiter ratelimit.Limiter
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService, limiter ratelimit.Limiter) *ConversationHandler {
	return &ConversationHandler{service: service, limiter: limiter}
}

// historyMeta 是对话历史响应中的元数据。
type historyMeta struct {
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// GetHistory 处理获取对话历史的请求。
// 没有历史记录不是 404：返回空消息列表与当前时间的元数据。
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	if err := h.limiter.Allow(c.Request.Context(), clientKey(c)); err != nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests. Please try again later."})
		return
	}

	userID := c.Query("userId")
	tutorName := c.Query("tutorName")
	if userID == "" || tutorName == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "userId 和 tutorName 不能为空",
			"data":    nil,
		})
		return
	}

	conv, err := h.service.GetHistory(c.Request.Context(), userID, tutorName)
	if err != nil {
		log.Error("GetHistory: failed to retrieve conversation", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取对话历史失败",
			"data":    nil,
		})
		return
	}

	if conv == nil {
		now := time.Now()
		c.JSON(http.StatusOK, gin.H{
			"code":    http.StatusOK,
			"message": "No chat history found",
			"data": gin.H{
				"messages": model.MessageList{},
				"meta":     historyMeta{CreatedAt: now, LastUpdated: now},
			},
		})
		return
	}

	c.Header("Cache-Control", "no-store, max-age=0")
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"messages": conv.Messages,
			"meta":     historyMeta{CreatedAt: conv.CreatedAt, LastUpdated: conv.LastUpdated},
		},
	})
}
