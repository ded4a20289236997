// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"

	"supplier-smart-go/internal/chatbot"
	"supplier-smart-go/internal/model"
	"supplier-smart-go/internal/repository"
)

// defaultSearchLimit 是单次目录检索返回的最大记录数。
const defaultSearchLimit = 10

// ErrNoProductsFound 表示比较请求的 ID 集合没有命中任何产品。
var ErrNoProductsFound = errors.New("no products found")

// CatalogService 接口定义了目录检索与比较分析的业务操作。
// 它同时充当聊天核心的检索协作方。
type CatalogService interface {
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	SearchSuppliers(ctx context.Context, query string) ([]model.Supplier, error)
	FetchProductsByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	Compare(ctx context.Context, ids []uint) (*model.ComparisonAnalysis, error)
}

// catalogService 是 CatalogService 接口的实现。
type catalogService struct {
	catalogRepo repository.CatalogRepository
	searchLimit int
}

// NewCatalogService 创建一个新的 CatalogService 实例。
// searchLimit 为 0 时使用默认的 10 条上限。
func NewCatalogService(catalogRepo repository.CatalogRepository, searchLimit int) CatalogService {
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}
	return &catalogService{
		catalogRepo: catalogRepo,
		searchLimit: searchLimit,
	}
}

// SearchProducts 执行产品子串检索，结果按最新优先并截断到上限。
func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	products, err := s.catalogRepo.SearchProducts(ctx, query, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// SearchSuppliers 执行供应商子串检索，结果按最新优先并截断到上限。
func (s *catalogService) SearchSuppliers(ctx context.Context, query string) ([]model.Supplier, error) {
	suppliers, err := s.catalogRepo.SearchSuppliers(ctx, query, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search suppliers: %w", err)
	}
	return suppliers, nil
}

// FetchProductsByIDs 按 ID 集合取回产品记录。
func (s *catalogService) FetchProductsByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	products, err := s.catalogRepo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by ids: %w", err)
	}
	return products, nil
}

// Compare 对给定 ID 集合做逐字段比较分析：取值不一致的字段进入 Differences
// （按产品 ID 给出各自取值），完全一致的字段进入 Similarities，并汇总价格统计。
// 产品按请求 ID 的顺序排列，重复 ID 重复展开。
func (s *catalogService) Compare(ctx context.Context, ids []uint) (*model.ComparisonAnalysis, error) {
	fetched, err := s.FetchProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]model.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}
	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	if len(products) == 0 {
		return nil, ErrNoProductsFound
	}

	analysis := &model.ComparisonAnalysis{
		Products:     products,
		Differences:  make(map[string]map[uint]string),
		Similarities: make(map[string]string),
	}

	for _, field := range chatbot.ComparisonFields() {
		values := make(map[string]struct{})
		perProduct := make(map[uint]string, len(products))
		for _, p := range products {
			v := chatbot.FieldValue(p, field)
			values[v] = struct{}{}
			perProduct[p.ID] = v
		}
		if len(values) > 1 {
			analysis.Differences[field] = perProduct
		} else {
			analysis.Similarities[field] = chatbot.FieldValue(products[0], field)
		}
	}

	lowest, highest, average, err := chatbot.PriceStats(products)
	if err != nil {
		return nil, err
	}
	analysis.Price = model.PriceComparison{
		Lowest:  lowest,
		Highest: highest,
		Average: average,
	}

	return analysis, nil
}
