// Package model 定义了与数据库表对应的 Go 结构体。
package model

// UserPreferences 是从用户查询行为中学习到的偏好缓存：
// 最近的查询文本，以及成功检索结果中出现过的品牌与品类。
type UserPreferences struct {
	PreferredBrands     []string `json:"preferredBrands"`
	PreferredCategories []string `json:"preferredCategories"`
	LastQueries         []string `json:"lastQueries"`
}
