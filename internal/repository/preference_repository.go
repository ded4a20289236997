// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"supplier-smart-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// preferenceLimit 是各偏好列表保留的最大条数。
const preferenceLimit = 5

// preferenceTTL 是偏好缓存的过期时间，长期不活跃的用户重新从零学习。
const preferenceTTL = 30 * 24 * time.Hour

// PreferenceRepository 定义了用户偏好缓存的操作接口。
// 偏好从查询行为中学习：最近查询前插保留，品牌与品类从检索结果中去重合并。
type PreferenceRepository interface {
	GetPreferences(ctx context.Context, userID uint) (*model.UserPreferences, error)
	// RecordQuery 把一次查询及其结果中出现的品牌/品类并入用户偏好。
	RecordQuery(ctx context.Context, userID uint, query string, brands, categories []string) error
}

type redisPreferenceRepository struct {
	redisClient *redis.Client
}

// NewPreferenceRepository 创建一个新的 PreferenceRepository 实例。
func NewPreferenceRepository(redisClient *redis.Client) PreferenceRepository {
	return &redisPreferenceRepository{redisClient: redisClient}
}

func (r *redisPreferenceRepository) key(userID uint) string {
	return fmt.Sprintf("user:%d:preferences", userID)
}

// GetPreferences 读取用户的偏好缓存，尚无记录时返回空偏好。
func (r *redisPreferenceRepository) GetPreferences(ctx context.Context, userID uint) (*model.UserPreferences, error) {
	jsonData, err := r.redisClient.Get(ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return &model.UserPreferences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user preferences: %w", err)
	}
	var prefs model.UserPreferences
	if err := json.Unmarshal([]byte(jsonData), &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user preferences: %w", err)
	}
	return &prefs, nil
}

// RecordQuery 将一次查询并入偏好缓存并刷新过期时间。
func (r *redisPreferenceRepository) RecordQuery(ctx context.Context, userID uint, query string, brands, categories []string) error {
	prefs, err := r.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}

	mergePreferences(prefs, query, brands, categories, preferenceLimit)

	jsonData, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal user preferences: %w", err)
	}
	if err := r.redisClient.Set(ctx, r.key(userID), jsonData, preferenceTTL).Err(); err != nil {
		return fmt.Errorf("failed to set user preferences: %w", err)
	}
	return nil
}

// mergePreferences 把一次查询并入偏好：查询文本前插到最近查询列表，
// 品牌与品类去重合并，各列表最多保留 limit 条。
func mergePreferences(prefs *model.UserPreferences, query string, brands, categories []string, limit int) {
	prefs.LastQueries = prependCapped(prefs.LastQueries, query, limit)
	prefs.PreferredBrands = unionCapped(prefs.PreferredBrands, brands, limit)
	prefs.PreferredCategories = unionCapped(prefs.PreferredCategories, categories, limit)
}

// prependCapped 把 value 插到列表头部并截断到 limit 条。
func prependCapped(list []string, value string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, value)
	for _, v := range list {
		if len(out) >= limit {
			break
		}
		out = append(out, v)
	}
	return out
}

// unionCapped 按先已有后新增的顺序去重合并，最多保留 limit 条。
func unionCapped(existing, incoming []string, limit int) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, limit)
	for _, v := range append(existing, incoming...) {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}
