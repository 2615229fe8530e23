// Package model 包含了应用的数据模型定义。
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// 消息角色常量。
const (
	RoleChatUser      = "user"
	RoleChatAssistant = "assistant"
)

// ChatMessage 代表对话中的单条消息。
type ChatMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// MessageList 是整张消息列表，作为 JSON 列整体读写。
type MessageList []ChatMessage

// Value 实现 driver.Valuer，将消息列表序列化为 JSON 存入数据库。
func (m MessageList) Value() (driver.Value, error) {
	if m == nil {
		m = MessageList{}
	}
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner，从数据库 JSON 列还原消息列表。
func (m *MessageList) Scan(value interface{}) error {
	if value == nil {
		*m = MessageList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for MessageList")
	}
}

// Conversation 代表一个 (用户, 导师) 组合的完整对话历史。
// (user_id, tutor_name) 上的唯一索引保证每个组合最多只有一份文档，
// 写入一律走 upsert，消息列表整体替换（last-write-wins）。
type Conversation struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      string      `gorm:"type:varchar(64);uniqueIndex:idx_user_tutor;not null" json:"userId"`
	TutorName   string      `gorm:"type:varchar(100);uniqueIndex:idx_user_tutor;not null" json:"tutorName"`
	Messages    MessageList `gorm:"type:json" json:"messages"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Conversation) TableName() string {
	return "conversations"
}
