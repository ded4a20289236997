package chatbot

import (
	"context"
	"fmt"
	"strings"

	"supplier-smart-go/internal/model"
	"supplier-smart-go/pkg/log"
)

// 固定的用户可见文案。协作方故障一律折叠为 msgApology，绝不把原始错误
// 透传到对话流。
const (
	msgComparePrompt = "Comparison mode started. Enter product names one at a time, then type \"done\" to finish."
	msgHelp          = "I can help you find products and suppliers. Ask me about a product or brand, ask about a supplier or provider, or type \"compare\" to compare products."
	msgApology       = "Sorry, I ran into a problem while looking that up. Please try again."
	msgNeedTwo       = "You need at least two products to compare. Comparison cancelled."
	msgNotFoundAdd   = "I couldn't find that product. Try another name, or type \"done\" to finish."

	productsHeader  = "Here are the products I found:"
	suppliersHeader = "Here are the suppliers I found:"
	msgNoProducts   = "No products matched your search."
	msgNoSuppliers  = "No suppliers matched your search."
)

// ProductSearcher 是产品检索协作方。返回顺序由协作方决定，收集态只取第一条。
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
}

// SupplierSearcher 是供应商检索协作方。
type SupplierSearcher interface {
	SearchSuppliers(ctx context.Context, query string) ([]model.Supplier, error)
}

// ProductFetcher 按 ID 批量取回产品记录，返回顺序不做约定。
type ProductFetcher interface {
	FetchProductsByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
}

// Event 描述一条消息被处理后的结论，供上层上报分析事件、学习用户偏好
// 与决定摘要增强。Brands 与 Categories 是本次回复涉及产品的品牌/品类，
// 可能含重复，由消费方去重。
type Event struct {
	Intents        []string
	ResultCount    int
	Brands         []string
	Categories     []string
	ComparisonDone bool
	Failed         bool
}

// Engine 将分类、比较会话与格式化组合为单一的消息处理入口。
type Engine struct {
	products  ProductSearcher
	suppliers SupplierSearcher
	fetcher   ProductFetcher
}

// NewEngine 创建一个新的 Engine 实例。
func NewEngine(products ProductSearcher, suppliers SupplierSearcher, fetcher ProductFetcher) *Engine {
	return &Engine{
		products:  products,
		suppliers: suppliers,
		fetcher:   fetcher,
	}
}

// HandleMessage 处理一条用户消息并返回助手回复。
// 回复永远是一个可继续对话的字符串，协作方错误不向调用方传播。
//
// 分派顺序：含 "compare" 且会话空闲时进入收集态；会话处于收集态时整条消息
// 交由会话消费；否则按关键词独立检索产品与供应商，两者都未命中则返回帮助。
func (e *Engine) HandleMessage(ctx context.Context, sess *Session, text string) (string, Event) {
	intents := ClassifyIntents(text)

	if intents.Compare && !sess.Active() {
		sess.Start()
		return msgComparePrompt, Event{Intents: []string{"compare"}}
	}

	if sess.Active() {
		return e.handleCollecting(ctx, sess, text)
	}

	if intents.Help() {
		return msgHelp, Event{Intents: intents.Labels()}
	}

	var sections []string
	total := 0
	var brands, categories []string

	if intents.Product {
		products, err := e.products.SearchProducts(ctx, text)
		if err != nil {
			log.Errorf("产品检索失败: %v", err)
			return msgApology, Event{Intents: intents.Labels(), Failed: true}
		}
		if len(products) == 0 {
			sections = append(sections, msgNoProducts)
		} else {
			sections = append(sections, productsHeader+"\n"+FormatProducts(products))
			total += len(products)
			brands, categories = collectFacets(products)
		}
	}

	if intents.Supplier {
		suppliers, err := e.suppliers.SearchSuppliers(ctx, text)
		if err != nil {
			log.Errorf("供应商检索失败: %v", err)
			return msgApology, Event{Intents: intents.Labels(), Failed: true}
		}
		if len(suppliers) == 0 {
			sections = append(sections, msgNoSuppliers)
		} else {
			sections = append(sections, suppliersHeader+"\n"+FormatSuppliers(suppliers))
			total += len(suppliers)
		}
	}

	return strings.Join(sections, "\n\n"), Event{
		Intents:     intents.Labels(),
		ResultCount: total,
		Brands:      brands,
		Categories:  categories,
	}
}

// collectFacets 汇总产品集合中出现的品牌与品类，空值跳过。
func collectFacets(products []model.Product) (brands, categories []string) {
	for _, p := range products {
		if p.Brand != "" {
			brands = append(brands, p.Brand)
		}
		if p.Category != "" {
			categories = append(categories, p.Category)
		}
	}
	return brands, categories
}

// handleCollecting 消费收集态下的一条消息："done" 触发结算，其余文本按
// 产品名检索并把首条命中追加进选集。
func (e *Engine) handleCollecting(ctx context.Context, sess *Session, text string) (string, Event) {
	if strings.EqualFold(strings.TrimSpace(text), "done") {
		ids := sess.Selected()
		// 无论结果如何，"done" 都会结束收集并丢弃部分选集
		sess.Reset()

		if len(ids) < 2 {
			return msgNeedTwo, Event{Intents: []string{"collect"}}
		}

		fetched, err := e.fetcher.FetchProductsByIDs(ctx, ids)
		if err != nil {
			log.Errorf("按 ID 取回产品失败: %v", err)
			return msgApology, Event{Intents: []string{"collect"}, Failed: true}
		}

		// 取回顺序不做约定：按选集的插入顺序重排，重复 ID 重复展开
		byID := make(map[uint]model.Product, len(fetched))
		for _, p := range fetched {
			byID[p.ID] = p
		}
		ordered := make([]model.Product, 0, len(ids))
		for _, id := range ids {
			if p, ok := byID[id]; ok {
				ordered = append(ordered, p)
			}
		}
		if len(ordered) < 2 {
			return msgNeedTwo, Event{Intents: []string{"collect"}}
		}

		brands, categories := collectFacets(ordered)
		return FormatComparison(ordered), Event{
			Intents:        []string{"collect"},
			ResultCount:    len(ordered),
			Brands:         brands,
			Categories:     categories,
			ComparisonDone: true,
		}
	}

	products, err := e.products.SearchProducts(ctx, text)
	if err != nil {
		log.Errorf("收集态产品检索失败: %v", err)
		return msgApology, Event{Intents: []string{"collect"}, Failed: true}
	}
	if len(products) == 0 {
		return msgNotFoundAdd, Event{Intents: []string{"collect"}}
	}

	first := products[0]
	sess.Add(first.ID)
	brands, categories := collectFacets(products[:1])
	ack := fmt.Sprintf("Added %q to the comparison. Enter another product name, or type \"done\" to compare.", first.Name)
	return ack, Event{Intents: []string{"collect"}, ResultCount: 1, Brands: brands, Categories: categories}
}
