// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"

	"supplier-smart-go/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository 接口定义了产品与供应商目录的只读访问操作。
type CatalogRepository interface {
	// SearchProducts 对产品名、品牌、品类与描述做子串匹配，按创建时间倒序，
	// 最多返回 limit 条并预加载供应商摘要。
	SearchProducts(ctx context.Context, query string, limit int) ([]model.Product, error)
	// SearchSuppliers 对供应商名与品类做子串匹配，按创建时间倒序，最多返回 limit 条。
	SearchSuppliers(ctx context.Context, query string, limit int) ([]model.Supplier, error)
	// FindProductsByIDs 按 ID 集合取回产品记录，返回顺序不做约定。
	FindProductsByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	CreateSupplier(ctx context.Context, supplier *model.Supplier) error
	CreateProduct(ctx context.Context, product *model.Product) error
	FindSupplierByName(ctx context.Context, name string) (*model.Supplier, error)
	FindProductByNameAndBrand(ctx context.Context, name, brand string) (*model.Product, error)
}

// catalogRepository 是 CatalogRepository 接口的 GORM 实现。
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建一个新的 CatalogRepository 实例。
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// SearchProducts 执行产品子串检索。
func (r *catalogRepository) SearchProducts(ctx context.Context, query string, limit int) ([]model.Product, error) {
	var products []model.Product
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("name LIKE ? OR brand LIKE ? OR category LIKE ? OR description LIKE ?", pattern, pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// SearchSuppliers 执行供应商子串检索。
func (r *catalogRepository) SearchSuppliers(ctx context.Context, query string, limit int) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR categories LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

// FindProductsByIDs 按 ID 集合取回产品记录。
func (r *catalogRepository) FindProductsByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// CreateSupplier 在数据库中创建一个新的供应商记录。
func (r *catalogRepository) CreateSupplier(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// CreateProduct 在数据库中创建一个新的产品记录。
func (r *catalogRepository) CreateProduct(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindSupplierByName 根据名称精确查找供应商，用于幂等的目录导入。
func (r *catalogRepository) FindSupplierByName(ctx context.Context, name string) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// FindProductByNameAndBrand 根据名称与品牌精确查找产品，用于幂等的目录导入。
func (r *catalogRepository) FindProductByNameAndBrand(ctx context.Context, name, brand string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("name = ? AND brand = ?", name, brand).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
