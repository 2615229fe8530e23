package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pytutor-go/internal/model"
)

// SettingRepository 定义了设置表的持久化操作。
type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	// Upsert 首次写入时创建记录，此后覆盖 value。
	Upsert(ctx context.Context, key, value string) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建一个新的 SettingRepository 实例。
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get 根据键查找设置记录，未找到时原样返回 gorm.ErrRecordNotFound。
func (r *settingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert 依赖 key 上的唯一索引做 INSERT ... ON DUPLICATE KEY UPDATE。
func (r *settingRepository) Upsert(ctx context.Context, key, value string) error {
	setting := model.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}
	return nil
}
