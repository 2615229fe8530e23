package model

import "time"

// Progress 记录用户在某一课程上的学习进度，(user_id, lesson) 唯一。
type Progress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);uniqueIndex:idx_user_lesson;not null" json:"userId"`
	Lesson    string    `gorm:"type:varchar(100);uniqueIndex:idx_user_lesson;not null" json:"lesson"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Score     int       `gorm:"not null;default:0" json:"score"` // 0 到 100
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Progress) TableName() string {
	return "progresses"
}

// Badge 记录用户获得的徽章，(user_id, name) 唯一，重复写入幂等。
type Badge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);uniqueIndex:idx_user_badge;not null" json:"userId"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex:idx_user_badge;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Badge) TableName() string {
	return "badges"
}
