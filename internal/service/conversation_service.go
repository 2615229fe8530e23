// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"pytutor-go/internal/model"
	"pytutor-go/internal/repository"
)

// ConversationService 定义了对话历史查询的接口。
type ConversationService interface {
	// GetHistory 返回 (userID, tutorName) 的对话文档，不存在时返回 (nil, nil)。
	GetHistory(ctx context.Context, userID, tutorName string) (*model.Conversation, error)
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

// GetHistory 获取指定用户与导师的完整消息历史。
func (s *conversationService) GetHistory(ctx context.Context, userID, tutorName string) (*model.Conversation, error) {
	return s.repo.Find(ctx, userID, tutorName)
}
