package google

import (
	"context"
	"testing"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
)

func TestExpenseRowRoundTrip(t *testing.T) {
	rec := core.ExpenseRecord{
		ID:          "1700000000000",
		ExpenseDate: "2024-01-01",
		ExpenseTime: "12:30",
		Category:    "Ăn uống",
		Amount:      100000,
		Location:    "Vinmart",
		Description: "đi chợ",
		CreatedBy:   "Duong",
		Email:       "duong@example.com",
		Platform:    "web",
	}
	row := expenseRow(rec)
	if len(row) != 10 {
		t.Fatalf("row has %d columns, want 10", len(row))
	}
	if row[0] != "1700000000000" || row[4] != 100000.0 || row[9] != "web" {
		t.Fatalf("row = %v", row)
	}
}

func TestColAt(t *testing.T) {
	cols := []string{"a", "b"}
	if colAt(cols, 1) != "b" {
		t.Fatalf("colAt(1) = %q", colAt(cols, 1))
	}
	if colAt(cols, 5) != "" || colAt(cols, -1) != "" {
		t.Fatal("out-of-range access must return empty string")
	}
}

func TestToStringsTrims(t *testing.T) {
	got := toStrings([]any{" x ", 12, 3.5})
	if got[0] != "x" || got[1] != "12" || got[2] != "3.5" {
		t.Fatalf("got %v", got)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing spreadsheet ID")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "abc"}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
