// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"supplier-smart-go/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// historyLimit 是每个会话保留的最大消息数，更早的历史不可回溯。
const historyLimit = 50

// ConversationRepository 定义了对话历史记录的操作接口。
// 历史是只追加的：消息一经写入不再修改，按时间升序返回。
type ConversationRepository interface {
	GetOrCreateConversationID(ctx context.Context, userID uint) (string, error)
	GetConversationHistory(ctx context.Context, conversationID string) ([]model.ChatMessage, error)
	AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
	limit       int
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
// limit 为 0 时使用默认的 50 条上限。
func NewConversationRepository(redisClient *redis.Client, limit int) ConversationRepository {
	if limit <= 0 {
		limit = historyLimit
	}
	return &redisConversationRepository{redisClient: redisClient, limit: limit}
}

// GetOrCreateConversationID 获取或创建一个新的对话 ID。
func (r *redisConversationRepository) GetOrCreateConversationID(ctx context.Context, userID uint) (string, error) {
	userKey := fmt.Sprintf("user:%d:current_conversation", userID)
	convID, err := r.redisClient.Get(ctx, userKey).Result()
	if err == redis.Nil {
		convID = uuid.NewString()
		if err := r.redisClient.Set(ctx, userKey, convID, 7*24*time.Hour).Err(); err != nil {
			return "", fmt.Errorf("failed to set conversation id: %w", err)
		}
		return convID, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get conversation id: %w", err)
	}
	return convID, nil
}

// GetConversationHistory 从 Redis 获取对话历史记录，按时间升序。
func (r *redisConversationRepository) GetConversationHistory(ctx context.Context, conversationID string) ([]model.ChatMessage, error) {
	key := fmt.Sprintf("conversation:%s", conversationID)
	jsonData, err := r.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil // 尚无历史
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return messages, nil
}

// AppendMessages 将若干消息追加到对话历史，并裁剪为最近的 limit 条。
func (r *redisConversationRepository) AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error {
	history, err := r.GetConversationHistory(ctx, conversationID)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		history = append(history, msg)
	}

	history = capHistory(history, r.limit)

	jsonData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	key := fmt.Sprintf("conversation:%s", conversationID)
	if err := r.redisClient.Set(ctx, key, jsonData, 7*24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set conversation history: %w", err)
	}
	return nil
}

// capHistory 裁剪为最近的 limit 条消息，丢弃最旧的条目并保持原有升序。
func capHistory(history []model.ChatMessage, limit int) []model.ChatMessage {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}
