// Package model 包含了应用的数据模型定义。
package model

import "time"

// 消息角色取值。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage 代表存储在 Redis 中的单条对话消息。
// 消息一经写入不再修改，按 CreatedAt 升序排列。
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
