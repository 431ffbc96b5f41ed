package http

import (
	"context"
	"net/http"
	"time"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/export"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
)

const monthLayout = "2006-01"

type reportsData struct {
	pageData
	Month         string
	Total         string
	Count         int
	Average       string
	Rows          []categoryRow
	AllCategories []core.CategoryRecord
}

func (s *Server) handleReportsPage(w http.ResponseWriter, r *http.Request, u session.User) {
	month := r.URL.Query().Get("month")
	if _, err := time.Parse(monthLayout, month); err != nil {
		month = time.Now().Format(monthLayout)
	}

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

	data := reportsData{
		pageData:      pageData{Active: "reports", User: u, Error: r.URL.Query().Get("error")},
		Month:         month,
		AllCategories: categories,
	}
	if expensesErr != nil {
		s.logger.ErrorContext(r.Context(), "Report expenses fetch failed", "error", expensesErr)
		data.Error = expensesErr.Error()
	}
	if categoriesErr != nil {
		s.logger.ErrorContext(r.Context(), "Report categories fetch failed", "error", categoriesErr)
		if data.Error == "" {
			data.Error = categoriesErr.Error()
		}
	}

	stats := core.Summarize(core.MonthFilter(expenses, month))
	data.Total = formatVND(stats.Total)
	data.Count = stats.Count
	data.Average = formatVND(stats.Average())
	for _, rank := range core.RankCategories(stats.ByCategory, stats.Total, 0) {
		data.Rows = append(data.Rows, categoryRow{
			Name:       rank.Category,
			Amount:     formatVND(rank.Amount),
			Percentage: formatPercent(rank.Percentage),
		})
	}

	s.render(w, r, "reports.html", data)
}

// handleExport streams the selected month's records as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, u session.User) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/reports", "Biểu mẫu không hợp lệ")
		return
	}

	month := r.PostFormValue("month")
	if _, err := time.Parse(monthLayout, month); err != nil {
		redirectWithError(w, r, "/reports", "Tháng không hợp lệ")
		return
	}

	format := export.Format(r.PostFormValue("format"))
	if !format.Valid() {
		redirectWithError(w, r, "/reports", "Định dạng xuất không hợp lệ")
		return
	}

	selected := r.PostForm["categories"]

	expenses, err := s.fetchExpenses(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Export fetch failed", "error", err)
		redirectWithError(w, r, "/reports", err.Error())
		return
	}
	categories, err := s.fetchCategories(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Export categories fetch failed", "error", err)
		redirectWithError(w, r, "/reports", err.Error())
		return
	}

	records := core.MonthFilter(expenses, month)
	allSelected := len(selected) == 0 || len(selected) >= len(categories)
	if !allSelected {
		chosen := make(map[string]bool, len(selected))
		for _, name := range selected {
			chosen[name] = true
		}
		subset := make([]core.ExpenseRecord, 0, len(records))
		for _, rec := range records {
			if chosen[rec.Category] {
				subset = append(subset, rec)
			}
		}
		records = subset
	}

	name := export.FileName(month, allSelected, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := export.Write(w, records, format); err != nil {
		// Headers are already out; all that remains is to log.
		s.logger.ErrorContext(r.Context(), "Export write failed", "error", err, "format", string(format))
		return
	}

	s.logger.InfoContext(r.Context(), "Export generated",
		"month", month, "format", string(format), "records", len(records), "email", u.Email)
}
