// Package service 包含了应用的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"supplier-smart-go/internal/analytics"
	"supplier-smart-go/internal/config"
	"supplier-smart-go/internal/model"
	"supplier-smart-go/pkg/log"
	"supplier-smart-go/pkg/storage"

	"github.com/go-redis/redis/v8"
	"github.com/xuri/excelize/v2"
)

// AnalyticsService 定义了管理端查询统计的业务操作。
type AnalyticsService interface {
	// Snapshot 返回当前的聚合统计视图。
	Snapshot(ctx context.Context) (*model.AnalyticsSnapshot, error)
	// Export 将统计视图导出为 xlsx 并上传到对象存储，返回预签名下载链接。
	Export(ctx context.Context) (string, error)
}

type analyticsService struct {
	redisClient *redis.Client
	minioCfg    config.MinIOConfig
}

// NewAnalyticsService 创建一个新的 AnalyticsService 实例。
func NewAnalyticsService(redisClient *redis.Client, minioCfg config.MinIOConfig) AnalyticsService {
	return &analyticsService{
		redisClient: redisClient,
		minioCfg:    minioCfg,
	}
}

// Snapshot 汇总 Redis 中的计数器与最近查询列表。
func (s *analyticsService) Snapshot(ctx context.Context) (*model.AnalyticsSnapshot, error) {
	total, err := s.redisClient.Get(ctx, analytics.KeyTotalQueries).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read total queries: %w", err)
	}

	intentCounts, err := s.redisClient.HGetAll(ctx, analytics.KeyIntentCounts).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read intent counts: %w", err)
	}
	popular := make(map[string]int64, len(intentCounts))
	for intent, count := range intentCounts {
		n, parseErr := strconv.ParseInt(count, 10, 64)
		if parseErr != nil {
			continue
		}
		popular[intent] = n
	}

	rawEntries, err := s.redisClient.LRange(ctx, analytics.KeyRecentQueries, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent queries: %w", err)
	}
	recent := make([]model.RecentQuery, 0, len(rawEntries))
	for _, raw := range rawEntries {
		var entry model.RecentQuery
		if unmarshalErr := json.Unmarshal([]byte(raw), &entry); unmarshalErr != nil {
			log.Warnf("跳过无法解析的最近查询条目: %v", unmarshalErr)
			continue
		}
		recent = append(recent, entry)
	}

	return &model.AnalyticsSnapshot{
		TotalQueries:   total,
		PopularIntents: popular,
		RecentQueries:  recent,
	}, nil
}

// Export 渲染统计工作簿并上传到 MinIO。
func (s *analyticsService) Export(ctx context.Context) (string, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warnf("关闭导出工作簿失败: %v", closeErr)
		}
	}()

	// 概览工作表：总量与各意图计数
	overview := "Overview"
	if err := f.SetSheetName("Sheet1", overview); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	_ = f.SetCellValue(overview, "A1", "Total queries")
	_ = f.SetCellValue(overview, "B1", snapshot.TotalQueries)
	_ = f.SetCellValue(overview, "A3", "Intent")
	_ = f.SetCellValue(overview, "B3", "Count")
	row := 4
	for intent, count := range snapshot.PopularIntents {
		_ = f.SetCellValue(overview, fmt.Sprintf("A%d", row), intent)
		_ = f.SetCellValue(overview, fmt.Sprintf("B%d", row), count)
		row++
	}

	// 最近查询工作表
	recentSheet := "Recent Queries"
	if _, err := f.NewSheet(recentSheet); err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	headers := []string{"User ID", "Query", "Intents", "Result count", "Occurred at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(recentSheet, cell, h)
	}
	for i, entry := range snapshot.RecentQueries {
		occurredAt, _ := entry.OccurredAt.MarshalJSON()
		values := []interface{}{
			entry.UserID,
			entry.Query,
			strings.Join(entry.Intents, ", "),
			entry.ResultCount,
			strings.Trim(string(occurredAt), "\""),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(recentSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", fmt.Errorf("failed to render workbook: %w", err)
	}

	objectName := fmt.Sprintf("analytics/export-%s.xlsx", time.Now().Format("20060102-150405"))
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if err := storage.PutObject(ctx, s.minioCfg.BucketName, objectName, buf.Bytes(), contentType); err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := storage.GetPresignedURL(s.minioCfg.BucketName, objectName, 24*time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to presign export url: %w", err)
	}

	log.Infof("分析导出已生成: %s", objectName)
	return url, nil
}
