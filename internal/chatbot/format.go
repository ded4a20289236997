package chatbot

import (
	"errors"
	"strconv"
	"strings"

	"supplier-smart-go/internal/model"
)

// comparisonFields 是比较块的固定字段顺序。
var comparisonFields = []string{"name", "brand", "price", "category", "description"}

// ErrNoProducts 表示价格统计被调用时集合为空。
var ErrNoProducts = errors.New("at least one product is required")

// FormatProductLine 渲染单条产品行。
func FormatProductLine(p model.Product) string {
	return "- " + p.Name + " (" + p.Brand + "): $" + strconv.FormatFloat(p.Price, 'f', 2, 64) + " - " + p.Description
}

// FormatProducts 将产品列表渲染为逐行文本块。
func FormatProducts(products []model.Product) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, FormatProductLine(p))
	}
	return strings.Join(lines, "\n")
}

// FormatSuppliers 将供应商列表渲染为逐行文本块，含品类与联系方式。
func FormatSuppliers(suppliers []model.Supplier) string {
	lines := make([]string, 0, len(suppliers))
	for _, s := range suppliers {
		lines = append(lines, "- "+s.Name+" ("+strings.Join(s.CategoryList(), ", ")+")\n  Contact: "+s.Email)
	}
	return strings.Join(lines, "\n")
}

// FormatComparison 按固定字段顺序渲染比较块：
// 每个字段先输出首字母大写的字段标题，随后每个产品一行，字段组之间空一行。
func FormatComparison(products []model.Product) string {
	var b strings.Builder
	for i, field := range comparisonFields {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(capitalize(field))
		b.WriteString(":\n")
		for _, p := range products {
			b.WriteString("- ")
			b.WriteString(p.Name)
			b.WriteString(": ")
			b.WriteString(fieldValue(p, field))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FieldValue 返回产品在给定比较字段上的文本取值。
// 价格按原始数值渲染，不做货币格式化。
func FieldValue(p model.Product, field string) string {
	return fieldValue(p, field)
}

// ComparisonFields 返回比较块的固定字段顺序副本。
func ComparisonFields() []string {
	fields := make([]string, len(comparisonFields))
	copy(fields, comparisonFields)
	return fields
}

func fieldValue(p model.Product, field string) string {
	switch field {
	case "name":
		return p.Name
	case "brand":
		return p.Brand
	case "price":
		return strconv.FormatFloat(p.Price, 'f', -1, 64)
	case "category":
		return p.Category
	case "description":
		return p.Description
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// PriceStats 计算比较集合的最低价、最高价与平均价。
// 集合至少需要一个产品；单产品集合的三个统计值均等于该产品价格。
func PriceStats(products []model.Product) (lowest, highest, average float64, err error) {
	if len(products) == 0 {
		return 0, 0, 0, ErrNoProducts
	}
	lowest = products[0].Price
	highest = products[0].Price
	var sum float64
	for _, p := range products {
		if p.Price < lowest {
			lowest = p.Price
		}
		if p.Price > highest {
			highest = p.Price
		}
		sum += p.Price
	}
	return lowest, highest, sum / float64(len(products)), nil
}
