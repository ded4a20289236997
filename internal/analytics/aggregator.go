// Package analytics 实现了查询事件的异步聚合。
// 聚合器由 Kafka 消费者驱动，把每条查询事件累加到 Redis 中的计数器与最近查询列表。
package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"supplier-smart-go/internal/model"
	"supplier-smart-go/pkg/tasks"

	"github.com/go-redis/redis/v8"
)

// Redis 键名约定。
const (
	KeyTotalQueries  = "analytics:total_queries"
	KeyIntentCounts  = "analytics:intent_counts"
	KeyRecentQueries = "analytics:recent_queries"

	// recentLimit 是保留的最近查询条数。
	recentLimit = 10
)

// Aggregator 将查询事件聚合到 Redis。
type Aggregator struct {
	redisClient *redis.Client
}

// NewAggregator 创建一个新的 Aggregator 实例。
func NewAggregator(redisClient *redis.Client) *Aggregator {
	return &Aggregator{redisClient: redisClient}
}

// Process 满足 kafka.EventProcessor 接口，处理单条查询事件。
func (a *Aggregator) Process(ctx context.Context, event tasks.QueryEvent) error {
	if err := a.redisClient.Incr(ctx, KeyTotalQueries).Err(); err != nil {
		return fmt.Errorf("failed to increment total queries: %w", err)
	}

	for _, intent := range event.Intents {
		if err := a.redisClient.HIncrBy(ctx, KeyIntentCounts, intent, 1).Err(); err != nil {
			return fmt.Errorf("failed to increment intent count: %w", err)
		}
	}

	entry := model.RecentQuery{
		UserID:      event.UserID,
		Query:       event.Query,
		Intents:     event.Intents,
		ResultCount: event.ResultCount,
		OccurredAt:  model.LocalTime(event.OccurredAt),
	}
	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal recent query: %w", err)
	}

	// 最新的查询排在表头，只保留最近 recentLimit 条
	pipe := a.redisClient.TxPipeline()
	pipe.LPush(ctx, KeyRecentQueries, entryBytes)
	pipe.LTrim(ctx, KeyRecentQueries, 0, recentLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record recent query: %w", err)
	}
	return nil
}
