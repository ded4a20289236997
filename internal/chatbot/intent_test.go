package chatbot

import (
	"reflect"
	"testing"
)

func TestClassifyIntents(t *testing.T) {
	cases := []struct {
		text string
		want Intents
	}{
		{"compare these for me", Intents{Compare: true}},
		{"COMPARE", Intents{Compare: true}},
		{"show me this product", Intents{Product: true}},
		{"what brands do you have", Intents{Product: true}},
		{"which supplier sells it", Intents{Supplier: true}},
		{"any provider nearby", Intents{Supplier: true}},
		{"product from which supplier", Intents{Product: true, Supplier: true}},
		{"hello", Intents{}},
	}
	for _, c := range cases {
		if got := ClassifyIntents(c.text); got != c.want {
			t.Fatalf("ClassifyIntents(%q) = %+v, want %+v", c.text, got, c.want)
		}
	}
}

func TestIntentLabels(t *testing.T) {
	if got := (Intents{}).Labels(); !reflect.DeepEqual(got, []string{"help"}) {
		t.Fatalf("empty intents labels = %v", got)
	}
	got := Intents{Compare: true, Product: true, Supplier: true}.Labels()
	if !reflect.DeepEqual(got, []string{"compare", "product", "supplier"}) {
		t.Fatalf("full intents labels = %v", got)
	}
}
