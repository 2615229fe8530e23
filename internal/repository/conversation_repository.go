// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pytutor-go/internal/model"
)

// ConversationRepository 定义了对话历史记录的操作接口。
type ConversationRepository interface {
	// Upsert 原子地替换 (userID, tutorName) 键下的消息列表，文档不存在时创建。
	// last_updated 每次写入都会更新，created_at 只在创建时设置。
	Upsert(ctx context.Context, userID, tutorName string, messages model.MessageList) error
	// Find 返回该键下的对话文档，不存在时返回 (nil, nil) 而不是错误。
	Find(ctx context.Context, userID, tutorName string) (*model.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Upsert 依赖 (user_id, tutor_name) 唯一索引做 INSERT ... ON DUPLICATE KEY UPDATE。
// 并发写同一键时由数据库保证原子性，消息列表整体替换，last-write-wins。
func (r *conversationRepository) Upsert(ctx context.Context, userID, tutorName string, messages model.MessageList) error {
	now := time.Now()
	conv := model.Conversation{
		UserID:      userID,
		TutorName:   tutorName,
		Messages:    messages,
		CreatedAt:   now,
		LastUpdated: now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "tutor_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"messages", "last_updated"}),
	}).Create(&conv).Error
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}
	return nil
}

// Find 查询 (userID, tutorName) 键下的对话文档。
func (r *conversationRepository) Find(ctx context.Context, userID, tutorName string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tutor_name = ?", userID, tutorName).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // 没有历史不是错误
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return &conv, nil
}
