package http

import (
	"encoding/csv"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func addExpense(t *testing.T, srv *Server, date, category, amount string) {
	t.Helper()
	rr := postForm(t, srv, "/expenses", url.Values{
		"expense_date": {date},
		"category":     {category},
		"amount":       {amount},
		"description":  {"test"},
	})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/expenses" {
		t.Fatalf("add expense: status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, true)
	today := time.Now().Format("2006-01-02")

	addExpense(t, srv, today, "Ăn uống", "100000")

	rr := get(t, srv, "/expenses")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "100.000 ₫") {
		t.Fatalf("list missing added expense: %s", rr.Body.String())
	}

	// The seeded store's categories take IDs 1-5, so the first expense
	// gets ID 6.
	edit := postForm(t, srv, "/expenses/edit", url.Values{
		"id":           {"6"},
		"expense_date": {today},
		"category":     {"Đi lại"},
		"amount":       {"50000"},
	})
	if edit.Code != http.StatusSeeOther {
		t.Fatalf("edit status = %d", edit.Code)
	}
	rr = get(t, srv, "/expenses")
	if !strings.Contains(rr.Body.String(), "50.000 ₫") {
		t.Fatal("edited amount not reflected")
	}

	del := postForm(t, srv, "/expenses/delete", url.Values{"id": {"6"}})
	if del.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", del.Code)
	}
	rr = get(t, srv, "/expenses")
	if strings.Contains(rr.Body.String(), "50.000 ₫") {
		t.Fatal("deleted expense still listed")
	}
}

func TestExpenseValidation(t *testing.T) {
	srv, _ := newTestServer(t, true)

	cases := []struct {
		name string
		form url.Values
	}{
		{"bad date", url.Values{"expense_date": {"01/02/2024"}, "category": {"Ăn uống"}, "amount": {"1"}}},
		{"bad amount", url.Values{"expense_date": {"2024-01-01"}, "category": {"Ăn uống"}, "amount": {"abc"}}},
		{"negative amount", url.Values{"expense_date": {"2024-01-01"}, "category": {"Ăn uống"}, "amount": {"-5"}}},
		{"missing category", url.Values{"expense_date": {"2024-01-01"}, "amount": {"1"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postForm(t, srv, "/expenses", tc.form)
			if rr.Code != http.StatusSeeOther {
				t.Fatalf("status = %d", rr.Code)
			}
			if !strings.HasPrefix(rr.Header().Get("Location"), "/expenses?error=") {
				t.Fatalf("location = %q, want error redirect", rr.Header().Get("Location"))
			}
		})
	}
}

func TestExpenseFilters(t *testing.T) {
	srv, _ := newTestServer(t, true)
	addExpense(t, srv, "2024-01-05", "Ăn uống", "100000")
	addExpense(t, srv, "2024-02-05", "Đi lại", "20000")

	rr := get(t, srv, "/expenses?month=2024-01")
	body := rr.Body.String()
	if !strings.Contains(body, "100.000 ₫") || strings.Contains(body, "20.000 ₫") {
		t.Fatal("month filter did not isolate January")
	}

	rr = get(t, srv, "/expenses?category="+url.QueryEscape("Đi lại"))
	body = rr.Body.String()
	if strings.Contains(body, "100.000 ₫") || !strings.Contains(body, "20.000 ₫") {
		t.Fatal("category filter did not isolate Đi lại")
	}

	rr = get(t, srv, "/expenses?q=test")
	if !strings.Contains(rr.Body.String(), "100.000 ₫") {
		t.Fatal("search did not match description")
	}
	rr = get(t, srv, "/expenses?q=nonexistent")
	if strings.Contains(rr.Body.String(), "100.000 ₫") {
		t.Fatal("search matched records it should not")
	}
}

func TestCategoriesPage(t *testing.T) {
	srv, _ := newTestServer(t, true)
	addExpense(t, srv, "2024-01-05", "Ăn uống", "170000")

	rr := get(t, srv, "/categories")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Ăn uống") {
		t.Fatal("seeded category missing")
	}
	if !strings.Contains(body, "170.000 ₫") {
		t.Fatal("per-category total missing")
	}
}

func TestCategoryLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, true)

	add := postForm(t, srv, "/categories", url.Values{
		"category_name": {"Giải trí"},
		"description":   {"Phim, nhạc"},
	})
	if add.Code != http.StatusSeeOther {
		t.Fatalf("add status = %d", add.Code)
	}
	rr := get(t, srv, "/categories")
	if !strings.Contains(rr.Body.String(), "Giải trí") {
		t.Fatal("added category missing")
	}

	// Seeded categories occupy IDs 1-5, the new one is 6.
	edit := postForm(t, srv, "/categories/edit", url.Values{
		"id":            {"6"},
		"category_name": {"Giải trí & Thể thao"},
		"status":        {"active"},
	})
	if edit.Code != http.StatusSeeOther {
		t.Fatalf("edit status = %d", edit.Code)
	}
	rr = get(t, srv, "/categories")
	if !strings.Contains(rr.Body.String(), "Giải trí &amp; Thể thao") {
		t.Fatal("renamed category missing")
	}

	del := postForm(t, srv, "/categories/delete", url.Values{"id": {"6"}})
	if del.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", del.Code)
	}
	rr = get(t, srv, "/categories")
	if strings.Contains(rr.Body.String(), "Giải trí") {
		t.Fatal("deleted category still shown")
	}
}

func TestCategoryMutationFailureSurfacesMessage(t *testing.T) {
	srv, _ := newTestServer(t, true)
	rr := postForm(t, srv, "/categories/delete", url.Values{"id": {"999"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Location"), "/categories?error=") {
		t.Fatalf("location = %q", rr.Header().Get("Location"))
	}
}

func TestReportsPage(t *testing.T) {
	srv, _ := newTestServer(t, true)
	addExpense(t, srv, "2024-01-01", "Ăn uống", "100000")
	addExpense(t, srv, "2024-01-02", "Ăn uống", "50000")
	addExpense(t, srv, "2024-01-02", "Đi lại", "20000")

	rr := get(t, srv, "/reports?month=2024-01")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "170.000 ₫") {
		t.Fatal("month total missing")
	}
	if !strings.Contains(body, "88.2%") || !strings.Contains(body, "11.8%") {
		t.Fatalf("percentages missing: %s", body)
	}
}

func TestExportCSV(t *testing.T) {
	srv, _ := newTestServer(t, true)
	addExpense(t, srv, "2024-01-01", "Ăn uống", "100000")
	addExpense(t, srv, "2024-02-01", "Đi lại", "20000")

	rr := postForm(t, srv, "/reports/export", url.Values{
		"month":  {"2024-01"},
		"format": {"csv"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="expenses_2024-01_all.csv"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
	rows, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1 record", len(rows))
	}
	if rows[1][3] != "Ăn uống" || rows[1][4] != "100000" {
		t.Fatalf("row = %v", rows[1])
	}
}

func TestExportSelectedSubset(t *testing.T) {
	srv, _ := newTestServer(t, true)
	addExpense(t, srv, "2024-01-01", "Ăn uống", "100000")
	addExpense(t, srv, "2024-01-02", "Đi lại", "20000")

	rr := postForm(t, srv, "/reports/export", url.Values{
		"month":      {"2024-01"},
		"format":     {"csv"},
		"categories": {"Đi lại"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "expenses_2024-01_selected.csv") {
		t.Fatalf("Content-Disposition = %q", got)
	}
	rows, _ := csv.NewReader(rr.Body).ReadAll()
	if len(rows) != 2 || rows[1][3] != "Đi lại" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestExportRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rr := postForm(t, srv, "/reports/export", url.Values{"month": {"January"}, "format": {"csv"}})
	if !strings.HasPrefix(rr.Header().Get("Location"), "/reports?error=") {
		t.Fatalf("bad month: location = %q", rr.Header().Get("Location"))
	}

	rr = postForm(t, srv, "/reports/export", url.Values{"month": {"2024-01"}, "format": {"pdf"}})
	if !strings.HasPrefix(rr.Header().Get("Location"), "/reports?error=") {
		t.Fatalf("bad format: location = %q", rr.Header().Get("Location"))
	}
}
