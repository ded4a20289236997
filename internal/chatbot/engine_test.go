package chatbot

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"supplier-smart-go/internal/model"
	"supplier-smart-go/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

// fakeCatalog 同时充当三个协作方接口的测试替身。
type fakeCatalog struct {
	products  []model.Product
	suppliers []model.Supplier
	byID      map[uint]model.Product
	err       error
}

func (f *fakeCatalog) SearchProducts(_ context.Context, _ string) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalog) SearchSuppliers(_ context.Context, _ string) ([]model.Supplier, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suppliers, nil
}

func (f *fakeCatalog) FetchProductsByIDs(_ context.Context, ids []uint) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Product
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestHandleMessageProductQuery(t *testing.T) {
	fake := &fakeCatalog{products: []model.Product{
		{ID: 1, Name: "Gaming Laptop", Brand: "TechPro", Price: 1299.99, Category: "electronics", Description: "High-performance gaming laptop"},
	}}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}

	reply, ev := e.HandleMessage(context.Background(), sess, "show me laptop products")
	want := "Here are the products I found:\n- Gaming Laptop (TechPro): $1299.99 - High-performance gaming laptop"
	if reply != want {
		t.Fatalf("unexpected reply:\ngot  %q\nwant %q", reply, want)
	}
	if ev.ResultCount != 1 {
		t.Fatalf("unexpected result count: got %d want 1", ev.ResultCount)
	}
	if len(ev.Intents) != 1 || ev.Intents[0] != "product" {
		t.Fatalf("unexpected intents: %v", ev.Intents)
	}
	if len(ev.Brands) != 1 || ev.Brands[0] != "TechPro" {
		t.Fatalf("result brands must be reported: %v", ev.Brands)
	}
	if len(ev.Categories) != 1 || ev.Categories[0] != "electronics" {
		t.Fatalf("result categories must be reported: %v", ev.Categories)
	}
}

func TestHandleMessageSupplierQuery(t *testing.T) {
	fake := &fakeCatalog{suppliers: []model.Supplier{
		{ID: 1, Name: "Acme Parts", Email: "sales@acme.example", Categories: "electronics, tools"},
	}}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}

	reply, _ := e.HandleMessage(context.Background(), sess, "which supplier carries this")
	want := "Here are the suppliers I found:\n- Acme Parts (electronics, tools)\n  Contact: sales@acme.example"
	if reply != want {
		t.Fatalf("unexpected reply:\ngot  %q\nwant %q", reply, want)
	}
}

func TestHandleMessageCombinedQuery(t *testing.T) {
	fake := &fakeCatalog{
		products:  []model.Product{{ID: 1, Name: "Drill", Brand: "Makro", Price: 99.5, Description: "Cordless drill"}},
		suppliers: []model.Supplier{{ID: 1, Name: "Acme Parts", Email: "sales@acme.example", Categories: "tools"}},
	}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}

	reply, ev := e.HandleMessage(context.Background(), sess, "find a product and its supplier")
	if !strings.Contains(reply, "Here are the products I found:") {
		t.Fatalf("missing products block: %q", reply)
	}
	if !strings.Contains(reply, "Here are the suppliers I found:") {
		t.Fatalf("missing suppliers block: %q", reply)
	}
	if !strings.Contains(reply, "\n\n") {
		t.Fatalf("expected blank line between blocks: %q", reply)
	}
	if strings.Index(reply, "products I found") > strings.Index(reply, "suppliers I found") {
		t.Fatalf("products block must come first: %q", reply)
	}
	if ev.ResultCount != 2 {
		t.Fatalf("unexpected result count: got %d want 2", ev.ResultCount)
	}
}

func TestHandleMessageHelpFallback(t *testing.T) {
	fake := &fakeCatalog{}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}

	reply, ev := e.HandleMessage(context.Background(), sess, "hello there")
	if reply != msgHelp {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(ev.Intents) != 1 || ev.Intents[0] != "help" {
		t.Fatalf("unexpected intents: %v", ev.Intents)
	}
}

func TestHandleMessageNoResults(t *testing.T) {
	fake := &fakeCatalog{}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}

	reply, ev := e.HandleMessage(context.Background(), sess, "any product called foobar?")
	if reply != msgNoProducts {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if ev.ResultCount != 0 {
		t.Fatalf("unexpected result count: %d", ev.ResultCount)
	}
}

func TestHandleMessageCollaboratorError(t *testing.T) {
	fake := &fakeCatalog{err: errors.New("db down")}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}

	reply, ev := e.HandleMessage(context.Background(), sess, "show me a product")
	if reply != msgApology {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if !ev.Failed {
		t.Fatal("expected failed event")
	}
	if strings.Contains(reply, "db down") {
		t.Fatalf("raw error leaked into reply: %q", reply)
	}
}

func TestComparisonFlow(t *testing.T) {
	laptop := model.Product{ID: 1, Name: "Gaming Laptop", Brand: "TechPro", Price: 1299.99, Category: "electronics", Description: "High-performance gaming laptop"}
	tablet := model.Product{ID: 2, Name: "Tablet", Brand: "Slately", Price: 499, Category: "electronics", Description: "Thin tablet"}
	fake := &fakeCatalog{
		byID: map[uint]model.Product{1: laptop, 2: tablet},
	}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}
	ctx := context.Background()

	reply, _ := e.HandleMessage(ctx, sess, "compare some products")
	if reply != msgComparePrompt {
		t.Fatalf("unexpected start reply: %q", reply)
	}
	if !sess.Active() {
		t.Fatal("session should be collecting after compare")
	}

	fake.products = []model.Product{laptop}
	reply, _ = e.HandleMessage(ctx, sess, "gaming laptop")
	if !strings.Contains(reply, `Added "Gaming Laptop" to the comparison`) {
		t.Fatalf("unexpected add reply: %q", reply)
	}

	fake.products = []model.Product{tablet}
	reply, _ = e.HandleMessage(ctx, sess, "tablet")
	if !strings.Contains(reply, `Added "Tablet" to the comparison`) {
		t.Fatalf("unexpected add reply: %q", reply)
	}

	reply, ev := e.HandleMessage(ctx, sess, "done")
	if !ev.ComparisonDone {
		t.Fatal("expected comparison done event")
	}
	if len(ev.Brands) != 2 || ev.Brands[0] != "TechPro" || ev.Brands[1] != "Slately" {
		t.Fatalf("comparison brands must be reported: %v", ev.Brands)
	}
	if sess.Active() {
		t.Fatal("session should be idle after done")
	}
	if !strings.HasPrefix(reply, "Name:\n- Gaming Laptop: Gaming Laptop\n- Tablet: Tablet") {
		t.Fatalf("unexpected comparison block start: %q", reply)
	}
	if !strings.Contains(reply, "Price:\n- Gaming Laptop: 1299.99\n- Tablet: 499") {
		t.Fatalf("unexpected price group: %q", reply)
	}
}

func TestComparisonTooFewProducts(t *testing.T) {
	laptop := model.Product{ID: 1, Name: "Gaming Laptop", Brand: "TechPro", Price: 1299.99}
	fake := &fakeCatalog{byID: map[uint]model.Product{1: laptop}}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}
	ctx := context.Background()

	e.HandleMessage(ctx, sess, "compare")
	fake.products = []model.Product{laptop}
	e.HandleMessage(ctx, sess, "gaming laptop")

	reply, ev := e.HandleMessage(ctx, sess, "done")
	if reply != msgNeedTwo {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if ev.ComparisonDone {
		t.Fatal("comparison must not be marked done")
	}
	if sess.Active() {
		t.Fatal("session should be reset after done")
	}
	if sess.Count() != 0 {
		t.Fatalf("selection should be discarded, got %d", sess.Count())
	}
}

func TestComparisonUnknownProduct(t *testing.T) {
	fake := &fakeCatalog{}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}
	ctx := context.Background()

	e.HandleMessage(ctx, sess, "compare")
	reply, _ := e.HandleMessage(ctx, sess, "no such thing")
	if reply != msgNotFoundAdd {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if sess.Count() != 0 {
		t.Fatalf("nothing should be added, got %d", sess.Count())
	}
	if !sess.Active() {
		t.Fatal("session should stay in collecting mode")
	}
}

func TestComparisonConsumesAllMessages(t *testing.T) {
	laptop := model.Product{ID: 1, Name: "Gaming Laptop", Brand: "TechPro", Price: 1299.99}
	fake := &fakeCatalog{products: []model.Product{laptop}}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}
	ctx := context.Background()

	e.HandleMessage(ctx, sess, "compare")
	// 收集态下含 "supplier" 的消息也按产品名处理
	reply, _ := e.HandleMessage(ctx, sess, "supplier laptop")
	if !strings.Contains(reply, "Added") {
		t.Fatalf("collecting session must consume the message: %q", reply)
	}
}

func TestComparisonDuplicateSelection(t *testing.T) {
	laptop := model.Product{ID: 1, Name: "Gaming Laptop", Brand: "TechPro", Price: 1299.99}
	fake := &fakeCatalog{
		products: []model.Product{laptop},
		byID:     map[uint]model.Product{1: laptop},
	}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}
	ctx := context.Background()

	e.HandleMessage(ctx, sess, "compare")
	e.HandleMessage(ctx, sess, "gaming laptop")
	e.HandleMessage(ctx, sess, "gaming laptop")

	reply, ev := e.HandleMessage(ctx, sess, "done")
	if !ev.ComparisonDone {
		t.Fatalf("expected comparison done, got reply %q", reply)
	}
	if ev.ResultCount != 2 {
		t.Fatalf("duplicate IDs must be expanded: got %d want 2", ev.ResultCount)
	}
	if !strings.Contains(reply, "Name:\n- Gaming Laptop: Gaming Laptop\n- Gaming Laptop: Gaming Laptop") {
		t.Fatalf("unexpected comparison block: %q", reply)
	}
}

func TestComparisonDoneCaseInsensitive(t *testing.T) {
	fake := &fakeCatalog{}
	e := NewEngine(fake, fake, fake)
	sess := &Session{}
	ctx := context.Background()

	e.HandleMessage(ctx, sess, "compare")
	reply, _ := e.HandleMessage(ctx, sess, "  DONE  ")
	if reply != msgNeedTwo {
		t.Fatalf("expected done to be recognized: %q", reply)
	}
	if sess.Active() {
		t.Fatal("session should be idle")
	}
}
