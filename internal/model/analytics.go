package model

// AnalyticsSnapshot 是管理端查询统计的聚合视图。
type AnalyticsSnapshot struct {
	TotalQueries   int64            `json:"totalQueries"`
	PopularIntents map[string]int64 `json:"popularIntents"`
	RecentQueries  []RecentQuery    `json:"recentQueries"`
}

// RecentQuery 记录最近一次被处理的查询及其结果规模。
type RecentQuery struct {
	UserID      uint      `json:"userId"`
	Query       string    `json:"query"`
	Intents     []string  `json:"intents"`
	ResultCount int       `json:"resultCount"`
	OccurredAt  LocalTime `json:"occurredAt"`
}
