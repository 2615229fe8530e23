// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
	"pytutor-go/internal/service"
	"pytutor-go/pkg/log"
	"pytutor-go/pkg/ratelimit"
)

// ChatHandler 负责处理聊天 API 请求。
type ChatHandler struct {
	chatService service.ChatService
	limiter     ratelimit.Limiter
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService, limiter ratelimit.Limiter) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		limiter:     limiter,
	}
}

// ChatMessagePayload 是请求体中的单条消息。
type ChatMessagePayload struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content"`
	ID      string `json:"id"`
}

// ChatRequestBody 定义了聊天 API 的请求体结构。
// messages 允许为空数组（规范化阶段会以结构性错误拒绝），但不允许缺失。
type ChatRequestBody struct {
	UserID        string               `json:"userId" binding:"required"`
	Messages      []ChatMessagePayload `json:"messages" binding:"omitempty,dive"`
	TutorName     string               `json:"tutorName"`
	TutorGreeting string               `json:"tutorGreeting"`
	TutorStyle    string               `json:"tutorStyle"`
}

// Chat 处理一次聊天请求。
// 处理顺序是固定的：认证（由 AuthMiddleware 完成）→ 限流 → 请求体校验 →
// 交给 ChatService 编排。限流与校验失败时不触碰任何存储。
func (h *ChatHandler) Chat(c *gin.Context) {
	if err := h.limiter.Allow(c.Request.Context(), clientKey(c)); err != nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests. Please try again later."})
		return
	}

	var req ChatRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Chat: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrors(err)})
		return
	}
	if req.Messages == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": []string{"messages: required 校验失败"}})
		return
	}

	// 未指定导师时使用默认人设
	if req.TutorName == "" {
		req.TutorName = model.DefaultTutorName
	}

	messages := make([]model.ChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = model.ChatMessage{Role: m.Role, Content: m.Content, ID: m.ID}
	}

	result, err := h.chatService.Chat(c.Request.Context(), &service.ChatRequest{
		UserID:        req.UserID,
		Messages:      messages,
		TutorName:     req.TutorName,
		TutorGreeting: req.TutorGreeting,
		TutorStyle:    req.TutorStyle,
	})
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeChatError 把管线错误映射为 HTTP 状态码。
func (h *ChatHandler) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidConversationState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Last message must be from user"})
	case errors.Is(err, apperr.ErrNotFound):
		log.Error("Chat: Gemini API key not configured", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gemini API key not found"})
	case errors.Is(err, apperr.ErrUpstream):
		log.Error("Chat: upstream provider failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI 服务暂时不可用，请稍后重试"})
	default:
		log.Error("Chat: pipeline failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
