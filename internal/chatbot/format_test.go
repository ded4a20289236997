package chatbot

import (
	"testing"

	"supplier-smart-go/internal/model"
)

func TestFormatProductLine(t *testing.T) {
	p := model.Product{Name: "Gaming Laptop", Brand: "TechPro", Price: 1299.99, Description: "High-performance gaming laptop"}
	got := FormatProductLine(p)
	want := "- Gaming Laptop (TechPro): $1299.99 - High-performance gaming laptop"
	if got != want {
		t.Fatalf("unexpected line:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatProductLinePadsPrice(t *testing.T) {
	p := model.Product{Name: "Pen", Brand: "Inko", Price: 5, Description: "Ballpoint pen"}
	got := FormatProductLine(p)
	want := "- Pen (Inko): $5.00 - Ballpoint pen"
	if got != want {
		t.Fatalf("unexpected line: got %q want %q", got, want)
	}
}

func TestFormatSuppliers(t *testing.T) {
	s := model.Supplier{Name: "Acme Parts", Email: "sales@acme.example", Categories: "electronics,tools"}
	got := FormatSuppliers([]model.Supplier{s})
	want := "- Acme Parts (electronics, tools)\n  Contact: sales@acme.example"
	if got != want {
		t.Fatalf("unexpected block:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatComparison(t *testing.T) {
	products := []model.Product{
		{Name: "A", Brand: "BrandA", Price: 10.5, Category: "cat", Description: "first"},
		{Name: "B", Brand: "BrandB", Price: 20, Category: "cat", Description: "second"},
	}
	got := FormatComparison(products)
	want := "Name:\n- A: A\n- B: B\n" +
		"\nBrand:\n- A: BrandA\n- B: BrandB\n" +
		"\nPrice:\n- A: 10.5\n- B: 20\n" +
		"\nCategory:\n- A: cat\n- B: cat\n" +
		"\nDescription:\n- A: first\n- B: second"
	if got != want {
		t.Fatalf("unexpected comparison:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPriceStats(t *testing.T) {
	products := []model.Product{{Price: 10}, {Price: 20}, {Price: 30}}
	lowest, highest, average, err := PriceStats(products)
	if err != nil {
		t.Fatalf("PriceStats err: %v", err)
	}
	if lowest != 10 || highest != 30 || average != 20 {
		t.Fatalf("unexpected stats: lowest=%v highest=%v average=%v", lowest, highest, average)
	}
}

func TestPriceStatsSingleProduct(t *testing.T) {
	lowest, highest, average, err := PriceStats([]model.Product{{Price: 42.5}})
	if err != nil {
		t.Fatalf("PriceStats err: %v", err)
	}
	if lowest != 42.5 || highest != 42.5 || average != 42.5 {
		t.Fatalf("unexpected stats: lowest=%v highest=%v average=%v", lowest, highest, average)
	}
}

func TestPriceStatsEmpty(t *testing.T) {
	if _, _, _, err := PriceStats(nil); err != ErrNoProducts {
		t.Fatalf("expected ErrNoProducts, got %v", err)
	}
}
