// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"supplier-smart-go/internal/service"
	"supplier-smart-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 处理管理端查询统计的 API 请求。
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler 创建一个新的 AnalyticsHandler 实例。
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetAnalytics 返回当前的聚合统计视图。
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	snapshot, err := h.analyticsService.Snapshot(c.Request.Context())
	if err != nil {
		log.Error("GetAnalytics: Failed to load snapshot", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取统计数据失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    snapshot,
	})
}

// ExportAnalytics 生成统计报表并返回下载链接。
func (h *AnalyticsHandler) ExportAnalytics(c *gin.Context) {
	url, err := h.analyticsService.Export(c.Request.Context())
	if err != nil {
		log.Error("ExportAnalytics: Failed to export", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "导出统计报表失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"downloadUrl": url},
	})
}
