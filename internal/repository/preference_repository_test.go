package repository

import (
	"reflect"
	"testing"

	"supplier-smart-go/internal/model"
)

func TestMergePreferencesLearnsFromResults(t *testing.T) {
	prefs := &model.UserPreferences{}

	mergePreferences(prefs, "show me laptop products", []string{"TechPro", "TechPro"}, []string{"electronics"}, preferenceLimit)

	if !reflect.DeepEqual(prefs.LastQueries, []string{"show me laptop products"}) {
		t.Fatalf("unexpected last queries: %v", prefs.LastQueries)
	}
	if !reflect.DeepEqual(prefs.PreferredBrands, []string{"TechPro"}) {
		t.Fatalf("brands must be deduplicated: %v", prefs.PreferredBrands)
	}
	if !reflect.DeepEqual(prefs.PreferredCategories, []string{"electronics"}) {
		t.Fatalf("unexpected categories: %v", prefs.PreferredCategories)
	}
}

func TestMergePreferencesCapsLastQueries(t *testing.T) {
	prefs := &model.UserPreferences{}
	queries := []string{"q1", "q2", "q3", "q4", "q5", "q6"}
	for _, q := range queries {
		mergePreferences(prefs, q, nil, nil, preferenceLimit)
	}

	// 最新的查询排在最前，只保留最近 5 条
	want := []string{"q6", "q5", "q4", "q3", "q2"}
	if !reflect.DeepEqual(prefs.LastQueries, want) {
		t.Fatalf("unexpected last queries: got %v want %v", prefs.LastQueries, want)
	}
}

func TestMergePreferencesCapsBrands(t *testing.T) {
	prefs := &model.UserPreferences{PreferredBrands: []string{"A", "B", "C", "D"}}

	mergePreferences(prefs, "query", []string{"E", "F"}, nil, preferenceLimit)

	// 已有条目优先保留，超出上限的新品牌被丢弃
	want := []string{"A", "B", "C", "D", "E"}
	if !reflect.DeepEqual(prefs.PreferredBrands, want) {
		t.Fatalf("unexpected brands: got %v want %v", prefs.PreferredBrands, want)
	}
}

func TestMergePreferencesSkipsEmptyValues(t *testing.T) {
	prefs := &model.UserPreferences{}

	mergePreferences(prefs, "query", []string{"", "TechPro"}, []string{""}, preferenceLimit)

	if !reflect.DeepEqual(prefs.PreferredBrands, []string{"TechPro"}) {
		t.Fatalf("empty brands must be skipped: %v", prefs.PreferredBrands)
	}
	if len(prefs.PreferredCategories) != 0 {
		t.Fatalf("empty categories must be skipped: %v", prefs.PreferredCategories)
	}
}
