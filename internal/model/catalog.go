// Package model 定义了与数据库表对应的 Go 结构体。
package model

import (
	"strings"
	"time"
)

// Supplier 对应于数据库中的 'suppliers' 表。
type Supplier struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Email string `gorm:"type:varchar(255)" json:"email"`
	Phone string `gorm:"type:varchar(50)" json:"phone"`
	// Categories 以逗号分隔的形式存储供应商覆盖的品类。
	Categories string    `gorm:"type:varchar(500)" json:"categories"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Supplier) TableName() string {
	return "suppliers"
}

// CategoryList 将逗号分隔的品类字符串拆分为去除空白的切片。
func (s Supplier) CategoryList() []string {
	if s.Categories == "" {
		return nil
	}
	parts := strings.Split(s.Categories, ",")
	categories := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	return categories
}

// Product 对应于数据库中的 'products' 表。
// Supplier 字段是冗余加载的供应商摘要，目录查询会按需预加载。
type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Brand       string    `gorm:"type:varchar(255)" json:"brand"`
	Price       float64   `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	SupplierID  uint      `gorm:"index;not null" json:"supplierId"`
	Supplier    *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Product) TableName() string {
	return "products"
}

// ComparisonAnalysis 是对一组产品逐字段比较的结果。
// Differences 按字段给出每个产品的取值，Similarities 给出所有产品一致的取值。
type ComparisonAnalysis struct {
	Products     []Product                  `json:"products"`
	Differences  map[string]map[uint]string `json:"differences"`
	Similarities map[string]string          `json:"similarities"`
	Price        PriceComparison            `json:"priceComparison"`
}

// PriceComparison 汇总了比较集合的价格统计。
type PriceComparison struct {
	Lowest  float64 `json:"lowest"`
	Highest float64 `json:"highest"`
	Average float64 `json:"average"`
}
