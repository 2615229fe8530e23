// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 用户角色常量。
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User 对应于数据库中的 'users' 表。
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	// Role 为 "USER" 或 "ADMIN"，管理员可以更新 Gemini API Key。
	Role      string    `gorm:"type:varchar(20);not null;default:USER" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}
