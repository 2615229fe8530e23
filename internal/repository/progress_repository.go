package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pytutor-go/internal/model"
)

// ProgressRepository 定义了学习进度与徽章的持久化操作。
type ProgressRepository interface {
	UpsertProgress(ctx context.Context, p *model.Progress) error
	UpsertBadge(ctx context.Context, b *model.Badge) error
	FindProgressByUser(ctx context.Context, userID string) ([]model.Progress, error)
	FindBadgesByUser(ctx context.Context, userID string) ([]model.Badge, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository 创建一个新的 ProgressRepository 实例。
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

// UpsertProgress 依赖 (user_id, lesson) 唯一索引更新完成状态与分数。
func (r *progressRepository) UpsertProgress(ctx context.Context, p *model.Progress) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "score", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}
	return nil
}

// UpsertBadge 幂等写入徽章，重复授予同名徽章不产生新记录。
func (r *progressRepository) UpsertBadge(ctx context.Context, b *model.Badge) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(b).Error
	if err != nil {
		return fmt.Errorf("failed to upsert badge: %w", err)
	}
	return nil
}

// FindProgressByUser 查询用户的所有课程进度。
func (r *progressRepository) FindProgressByUser(ctx context.Context, userID string) ([]model.Progress, error) {
	var list []model.Progress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

// FindBadgesByUser 查询用户的所有徽章。
func (r *progressRepository) FindBadgesByUser(ctx context.Context, userID string) ([]model.Badge, error) {
	var list []model.Badge
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error
	return list, err
}
