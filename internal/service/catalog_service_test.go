package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"supplier-smart-go/internal/model"
	"supplier-smart-go/internal/service"
)

// fakeCatalogRepo 是 CatalogRepository 的内存替身。
type fakeCatalogRepo struct {
	products  []model.Product
	suppliers []model.Supplier
	err       error
	lastLimit int
}

func (f *fakeCatalogRepo) SearchProducts(_ context.Context, query string, limit int) ([]model.Product, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	// 简化的子串匹配：产品名与查询互为子串即视为命中
	q := strings.ToLower(query)
	var out []model.Product
	for _, p := range f.products {
		name := strings.ToLower(p.Name)
		if strings.Contains(q, name) || strings.Contains(name, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) SearchSuppliers(_ context.Context, _ string, limit int) ([]model.Supplier, error) {
	f.lastLimit = limit
	return f.suppliers, f.err
}

func (f *fakeCatalogRepo) FindProductsByIDs(_ context.Context, ids []uint) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Product
	for _, p := range f.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateSupplier(_ context.Context, _ *model.Supplier) error { return nil }
func (f *fakeCatalogRepo) CreateProduct(_ context.Context, _ *model.Product) error  { return nil }
func (f *fakeCatalogRepo) FindSupplierByName(_ context.Context, _ string) (*model.Supplier, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCatalogRepo) FindProductByNameAndBrand(_ context.Context, _, _ string) (*model.Product, error) {
	return nil, errors.New("not implemented")
}

func TestSearchProductsUsesConfiguredLimit(t *testing.T) {
	repo := &fakeCatalogRepo{}
	svc := service.NewCatalogService(repo, 5)

	if _, err := svc.SearchProducts(context.Background(), "laptop"); err != nil {
		t.Fatalf("SearchProducts err: %v", err)
	}
	if repo.lastLimit != 5 {
		t.Fatalf("unexpected limit: got %d want 5", repo.lastLimit)
	}
}

func TestSearchProductsDefaultLimit(t *testing.T) {
	repo := &fakeCatalogRepo{}
	svc := service.NewCatalogService(repo, 0)

	if _, err := svc.SearchProducts(context.Background(), "laptop"); err != nil {
		t.Fatalf("SearchProducts err: %v", err)
	}
	if repo.lastLimit != 10 {
		t.Fatalf("unexpected default limit: got %d want 10", repo.lastLimit)
	}
}

func TestCompareAnalysis(t *testing.T) {
	repo := &fakeCatalogRepo{products: []model.Product{
		{ID: 1, Name: "Gaming Laptop", Brand: "TechPro", Price: 1299.99, Category: "electronics", Description: "High-performance gaming laptop"},
		{ID: 2, Name: "Office Laptop", Brand: "TechPro", Price: 799.99, Category: "electronics", Description: "Business laptop"},
	}}
	svc := service.NewCatalogService(repo, 0)

	analysis, err := svc.Compare(context.Background(), []uint{1, 2})
	if err != nil {
		t.Fatalf("Compare err: %v", err)
	}

	if len(analysis.Products) != 2 {
		t.Fatalf("unexpected product count: %d", len(analysis.Products))
	}
	if analysis.Products[0].ID != 1 || analysis.Products[1].ID != 2 {
		t.Fatalf("products must follow request order: %v, %v", analysis.Products[0].ID, analysis.Products[1].ID)
	}

	if analysis.Similarities["brand"] != "TechPro" {
		t.Fatalf("brand should be a similarity: %v", analysis.Similarities)
	}
	if analysis.Similarities["category"] != "electronics" {
		t.Fatalf("category should be a similarity: %v", analysis.Similarities)
	}
	diff, ok := analysis.Differences["price"]
	if !ok {
		t.Fatalf("price should be a difference: %v", analysis.Differences)
	}
	if diff[1] != "1299.99" || diff[2] != "799.99" {
		t.Fatalf("unexpected price difference values: %v", diff)
	}
	if _, ok := analysis.Similarities["price"]; ok {
		t.Fatal("price must not appear in similarities")
	}

	if analysis.Price.Lowest != 799.99 || analysis.Price.Highest != 1299.99 {
		t.Fatalf("unexpected price bounds: %+v", analysis.Price)
	}
	if analysis.Price.Average != (1299.99+799.99)/2 {
		t.Fatalf("unexpected average: %v", analysis.Price.Average)
	}
}

func TestCompareNoProductsFound(t *testing.T) {
	repo := &fakeCatalogRepo{}
	svc := service.NewCatalogService(repo, 0)

	if _, err := svc.Compare(context.Background(), []uint{99}); !errors.Is(err, service.ErrNoProductsFound) {
		t.Fatalf("expected ErrNoProductsFound, got %v", err)
	}
}

func TestCompareDuplicateIDs(t *testing.T) {
	repo := &fakeCatalogRepo{products: []model.Product{
		{ID: 1, Name: "Gaming Laptop", Brand: "TechPro", Price: 100},
	}}
	svc := service.NewCatalogService(repo, 0)

	analysis, err := svc.Compare(context.Background(), []uint{1, 1})
	if err != nil {
		t.Fatalf("Compare err: %v", err)
	}
	if len(analysis.Products) != 2 {
		t.Fatalf("duplicate IDs must be expanded: got %d products", len(analysis.Products))
	}
	if analysis.Price.Lowest != 100 || analysis.Price.Highest != 100 || analysis.Price.Average != 100 {
		t.Fatalf("unexpected price stats: %+v", analysis.Price)
	}
}
