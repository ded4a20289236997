// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"supplier-smart-go/internal/model"
	"supplier-smart-go/internal/repository"
)

// ConversationService 定义了对话历史查询的业务操作。
type ConversationService interface {
	// GetHistory 返回用户当前对话的历史消息，按时间升序，最多保留最近 50 条。
	GetHistory(ctx context.Context, userID uint) ([]model.ChatMessage, error)
}

type conversationService struct {
	conversationRepo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService 实例。
func NewConversationService(conversationRepo repository.ConversationRepository) ConversationService {
	return &conversationService{conversationRepo: conversationRepo}
}

// GetHistory 获取用户当前对话的完整可见历史。
func (s *conversationService) GetHistory(ctx context.Context, userID uint) ([]model.ChatMessage, error) {
	conversationID, err := s.conversationRepo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.conversationRepo.GetConversationHistory(ctx, conversationID)
}
