package model

import "time"

// SettingKeyGeminiAPIKey 是目前唯一识别的设置键。
const SettingKeyGeminiAPIKey = "gemini_api_key"

// Setting 是按键存储的单例配置记录，首次由管理员写入，此后通过 upsert 更新。
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:varchar(255);not null" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Setting) TableName() string {
	return "settings"
}
