package memory

import (
	"context"
	"testing"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
)

func TestExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.AddExpense(ctx, core.ExpenseRecord{ExpenseDate: "2024-01-01", Category: "Food", Amount: 100000}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddExpense(ctx, core.ExpenseRecord{ExpenseDate: "2024-01-02", Category: "Transport", Amount: 20000}); err != nil {
		t.Fatalf("add: %v", err)
	}

	items, err := s.GetExpenses(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(items) != 2 || items[0].ID == "" {
		t.Fatalf("items = %v", items)
	}

	edited := items[0]
	edited.Amount = 150000
	if err := s.EditExpense(ctx, edited); err != nil {
		t.Fatalf("edit: %v", err)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 170000 || stats.Count != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	if err := s.DeleteExpense(ctx, items[1].ID, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ = s.GetExpenses(ctx)
	if len(items) != 1 {
		t.Fatalf("after delete: %v", items)
	}

	if err := s.DeleteExpense(ctx, "nope", ""); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.AddCategory(ctx, core.CategoryRecord{CategoryName: "Food"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cats, _ := s.GetCategories(ctx)
	if len(cats) != 1 || cats[0].Status != "active" {
		t.Fatalf("cats = %v", cats)
	}

	cats[0].Description = "đồ ăn"
	if err := s.EditCategory(ctx, cats[0]); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := s.DeleteCategory(ctx, cats[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if cats, _ := s.GetCategories(ctx); len(cats) != 0 {
		t.Fatalf("cats = %v", cats)
	}
}

func TestSeededTaxonomy(t *testing.T) {
	cats, err := NewSeeded().GetCategories(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("expected seed categories")
	}
	seen := map[string]bool{}
	for _, c := range cats {
		if seen[c.CategoryName] {
			t.Fatalf("duplicate category %q", c.CategoryName)
		}
		seen[c.CategoryName] = true
	}
}
