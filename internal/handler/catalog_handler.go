// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"supplier-smart-go/internal/service"
	"supplier-smart-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// CatalogHandler 处理目录检索与比较分析的 API 请求。
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler 创建一个新的 CatalogHandler 实例。
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// SearchProducts 处理产品检索请求。
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "查询参数 q 不能为空",
		})
		return
	}

	products, err := h.catalogService.SearchProducts(c.Request.Context(), query)
	if err != nil {
		log.Errorf("SearchProducts: query '%s' failed: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "检索失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    products,
	})
}

// SearchSuppliers 处理供应商检索请求。
func (h *CatalogHandler) SearchSuppliers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "查询参数 q 不能为空",
		})
		return
	}

	suppliers, err := h.catalogService.SearchSuppliers(c.Request.Context(), query)
	if err != nil {
		log.Errorf("SearchSuppliers: query '%s' failed: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "检索失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    suppliers,
	})
}

// CompareRequest 定义了产品比较 API 的请求体结构。
type CompareRequest struct {
	ProductIDs []uint `json:"productIds" binding:"required"`
}

// Compare 处理产品比较请求，返回逐字段的差异/相同分析与价格统计。
func (h *CatalogHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：productIds 不能为空",
		})
		return
	}

	analysis, err := h.catalogService.Compare(c.Request.Context(), req.ProductIDs)
	if err != nil {
		if errors.Is(err, service.ErrNoProductsFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    http.StatusNotFound,
				"message": "未找到对应的产品",
			})
			return
		}
		log.Errorf("Compare: failed for ids %v: %v", req.ProductIDs, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "比较分析失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    analysis,
	})
}
