// Package tasks defines the structure for events that are sent to Kafka.
package tasks

import "time"

// QueryEvent 描述一次被处理的聊天查询，用于分析统计的异步聚合。
type QueryEvent struct {
	EventID        string    `json:"event_id"`
	UserID         uint      `json:"user_id"`
	Query          string    `json:"query"`
	Intents        []string  `json:"intents"`
	ResultCount    int       `json:"result_count"`
	ComparisonDone bool      `json:"comparison_done"`
	OccurredAt     time.Time `json:"occurred_at"`
}
