// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"sync"
	"time"

	"supplier-smart-go/internal/chatbot"
	"supplier-smart-go/internal/model"
	"supplier-smart-go/internal/repository"
	"supplier-smart-go/pkg/llm"
	"supplier-smart-go/pkg/log"
	"supplier-smart-go/pkg/tasks"

	"github.com/google/uuid"
)

// EventPublisher 将查询事件投递到消息队列，供分析聚合异步消费。
type EventPublisher interface {
	PublishQueryEvent(event tasks.QueryEvent) error
}

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// HandleUserMessage 处理一条用户消息并返回助手回复文本。
	// 回复永远可用于继续对话：协作方错误已在核心内折叠为固定致歉文案。
	HandleUserMessage(ctx context.Context, user *model.User, text string) string
	// Preferences 返回从用户查询行为中学习到的偏好缓存。
	Preferences(ctx context.Context, userID uint) (*model.UserPreferences, error)
}

// conversationState 保存单个用户会话的比较状态机。
// mu 保证同一会话内消息严格串行处理，一条消息未完成前不接受下一条。
type conversationState struct {
	mu      sync.Mutex
	session chatbot.Session
}

type chatService struct {
	engine           *chatbot.Engine
	conversationRepo repository.ConversationRepository
	preferenceRepo   repository.PreferenceRepository
	llmClient        llm.Client
	publisher        EventPublisher
	states           sync.Map // key: userID, value: *conversationState
}

// NewChatService 创建一个新的 ChatService 实例。
// preferenceRepo、llmClient 与 publisher 均可为 nil，对应的学习、增强与上报会被跳过。
func NewChatService(engine *chatbot.Engine, conversationRepo repository.ConversationRepository, preferenceRepo repository.PreferenceRepository, llmClient llm.Client, publisher EventPublisher) ChatService {
	return &chatService{
		engine:           engine,
		conversationRepo: conversationRepo,
		preferenceRepo:   preferenceRepo,
		llmClient:        llmClient,
		publisher:        publisher,
	}
}

// HandleUserMessage 将消息交给核心引擎处理，随后持久化对话、上报分析事件，
// 并在产生比较结果时尝试用 LLM 追加一段摘要。
func (s *chatService) HandleUserMessage(ctx context.Context, user *model.User, text string) string {
	st := s.stateFor(user.ID)
	st.mu.Lock()
	defer st.mu.Unlock()

	reply, event := s.engine.HandleMessage(ctx, &st.session, text)

	// 比较结果可选地用 LLM 摘要增强；失败时静默回退到原始文本
	if event.ComparisonDone && s.llmClient != nil {
		if summary, err := s.llmClient.Summarize(ctx, reply); err != nil {
			log.Warnf("LLM 摘要失败，回退到原始回复: %v", err)
		} else if summary != "" {
			reply = reply + "\n\nSummary: " + summary
		}
	}

	// 使用后台上下文持久化对话：即使请求被取消也保留已生成的回复
	if err := s.appendToConversation(context.Background(), user.ID, text, reply); err != nil {
		// 只记录错误，不影响回复
		log.Errorf("保存对话历史失败: %v", err)
	}

	// 从本次查询学习偏好：最近查询总是记录，品牌/品类仅在有结果时并入
	if s.preferenceRepo != nil && !event.Failed {
		if err := s.preferenceRepo.RecordQuery(context.Background(), user.ID, text, event.Brands, event.Categories); err != nil {
			log.Warnf("更新用户偏好失败: %v", err)
		}
	}

	s.publishEvent(user.ID, text, event)

	return reply
}

// Preferences 返回用户的偏好缓存，未配置偏好存储时返回空偏好。
func (s *chatService) Preferences(ctx context.Context, userID uint) (*model.UserPreferences, error) {
	if s.preferenceRepo == nil {
		return &model.UserPreferences{}, nil
	}
	return s.preferenceRepo.GetPreferences(ctx, userID)
}

// stateFor 返回指定用户的会话状态，不存在则创建。
func (s *chatService) stateFor(userID uint) *conversationState {
	if v, ok := s.states.Load(userID); ok {
		return v.(*conversationState)
	}
	v, _ := s.states.LoadOrStore(userID, &conversationState{})
	return v.(*conversationState)
}

// appendToConversation 将一问一答追加到用户当前对话。
func (s *chatService) appendToConversation(ctx context.Context, userID uint, question, answer string) error {
	conversationID, err := s.conversationRepo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.conversationRepo.AppendMessages(ctx, conversationID,
		model.ChatMessage{ID: uuid.NewString(), Role: model.RoleUser, Content: question, CreatedAt: now},
		model.ChatMessage{ID: uuid.NewString(), Role: model.RoleAssistant, Content: answer, CreatedAt: now},
	)
}

// publishEvent 上报一条查询事件，失败只记录日志。
func (s *chatService) publishEvent(userID uint, query string, event chatbot.Event) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishQueryEvent(tasks.QueryEvent{
		EventID:        uuid.NewString(),
		UserID:         userID,
		Query:          query,
		Intents:        event.Intents,
		ResultCount:    event.ResultCount,
		ComparisonDone: event.ComparisonDone,
		OccurredAt:     time.Now(),
	})
	if err != nil {
		log.Errorf("上报查询事件失败: %v", err)
	}
}
