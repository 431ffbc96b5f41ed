package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
)

type expenseRow struct {
	ID            string
	ExpenseDate   string
	ExpenseTime   string
	Category      string
	AmountDisplay string
	AmountRaw     string
	Location      string
	Description   string
}

type expensesData struct {
	pageData
	Today          string
	Query          string
	CategoryFilter string
	Month          string
	Categories     []core.CategoryRecord
	Expenses       []expenseRow
}

func (s *Server) handleExpensesPage(w http.ResponseWriter, r *http.Request, u session.User) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	categoryFilter := r.URL.Query().Get("category")
	month := r.URL.Query().Get("month")

	var (
		expenses      []core.ExpenseRecord
		categories    []core.CategoryRecord
		expensesErr   error
		categoriesErr error
	)
	fetchPair(r.Context(),
		func(ctx context.Context) { expenses, expensesErr = s.fetchExpenses(ctx) },
		func(ctx context.Context) { categories, categoriesErr = s.fetchCategories(ctx) },
	)

	data := expensesData{
		pageData:       pageData{Active: "expenses", User: u, Error: r.URL.Query().Get("error")},
		Today:          time.Now().Format(core.DateLayout),
		Query:          query,
		CategoryFilter: categoryFilter,
		Month:          month,
		Categories:     categories,
	}
	if expensesErr != nil {
		s.logger.ErrorContext(r.Context(), "Expense list fetch failed", "error", expensesErr)
		data.Error = expensesErr.Error()
	}
	if categoriesErr != nil {
		s.logger.ErrorContext(r.Context(), "Category list fetch failed", "error", categoriesErr)
		if data.Error == "" {
			data.Error = categoriesErr.Error()
		}
	}

	for _, rec := range filterExpenses(expenses, query, categoryFilter, month) {
		data.Expenses = append(data.Expenses, expenseRow{
			ID:            rec.ID.String(),
			ExpenseDate:   rec.ExpenseDate,
			ExpenseTime:   rec.ExpenseTime,
			Category:      rec.Category,
			AmountDisplay: formatVND(rec.Amount.Value()),
			AmountRaw:     strconv.FormatFloat(rec.Amount.Value(), 'f', -1, 64),
			Location:      rec.Location,
			Description:   rec.Description,
		})
	}

	s.render(w, r, "expenses.html", data)
}

// filterExpenses applies the list filters the way the UI defines them:
// month by date prefix, category by exact name, search by case-insensitive
// substring over description, location and category.
func filterExpenses(records []core.ExpenseRecord, query, category, month string) []core.ExpenseRecord {
	if month != "" {
		records = core.MonthFilter(records, month)
	}

	out := make([]core.ExpenseRecord, 0, len(records))
	needle := strings.ToLower(query)
	for _, rec := range records {
		if category != "" && rec.Category != category {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(rec.Description + " " + rec.Location + " " + rec.Category)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

// expenseFromForm builds a record from the submitted form, attaching
// provenance from the session at write time.
func expenseFromForm(r *http.Request, u session.User) (core.ExpenseRecord, string) {
	date := strings.TrimSpace(r.PostFormValue("expense_date"))
	if _, err := time.Parse(core.DateLayout, date); err != nil {
		return core.ExpenseRecord{}, "Ngày không hợp lệ"
	}

	amountStr := strings.TrimSpace(r.PostFormValue("amount"))
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amount < 0 {
		return core.ExpenseRecord{}, "Số tiền không hợp lệ"
	}

	category := sanitizeInput(r.PostFormValue("category"))
	if category == "" {
		return core.ExpenseRecord{}, "Vui lòng chọn danh mục"
	}

	return core.ExpenseRecord{
		ExpenseDate: date,
		ExpenseTime: strings.TrimSpace(r.PostFormValue("expense_time")),
		Category:    category,
		Amount:      core.Amount(amount),
		Location:    sanitizeInput(r.PostFormValue("location")),
		Description: sanitizeInput(r.PostFormValue("description")),
		CreatedBy:   u.Name,
		Email:       u.Email,
		Platform:    u.Platform,
	}, ""
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request, u session.User) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/expenses", "Biểu mẫu không hợp lệ")
		return
	}

	rec, msg := expenseFromForm(r, u)
	if msg != "" {
		redirectWithError(w, r, "/expenses", msg)
		return
	}

	if err := s.store.AddExpense(r.Context(), rec); err != nil {
		s.logger.ErrorContext(r.Context(), "Add expense failed", "error", err)
		redirectWithError(w, r, "/expenses", err.Error())
		return
	}

	s.afterMutation(r.Context(), "addExpense", rec.ID, u.Email)
	http.Redirect(w, r, "/expenses", http.StatusSeeOther)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request, u session.User) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/expenses", "Biểu mẫu không hợp lệ")
		return
	}

	id := core.ID(strings.TrimSpace(r.PostFormValue("id")))
	if id == "" {
		redirectWithError(w, r, "/expenses", "Thiếu mã khoản chi")
		return
	}

	rec, msg := expenseFromForm(r, u)
	if msg != "" {
		redirectWithError(w, r, "/expenses", msg)
		return
	}
	rec.ID = id

	if err := s.store.EditExpense(r.Context(), rec); err != nil {
		s.logger.ErrorContext(r.Context(), "Edit expense failed", "error", err, "id", id.String())
		redirectWithError(w, r, "/expenses", err.Error())
		return
	}

	s.afterMutation(r.Context(), "editExpense", id, u.Email)
	http.Redirect(w, r, "/expenses", http.StatusSeeOther)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, u session.User) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/expenses", "Biểu mẫu không hợp lệ")
		return
	}

	id := core.ID(strings.TrimSpace(r.PostFormValue("id")))
	if id == "" {
		redirectWithError(w, r, "/expenses", "Thiếu mã khoản chi")
		return
	}

	if err := s.store.DeleteExpense(r.Context(), id, u.Email); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete expense failed", "error", err, "id", id.String())
		redirectWithError(w, r, "/expenses", err.Error())
		return
	}

	s.afterMutation(r.Context(), "deleteExpense", id, u.Email)
	http.Redirect(w, r, "/expenses", http.StatusSeeOther)
}
