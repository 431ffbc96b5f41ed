package http

import (
	"context"
	"net/http"
	"time"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
)

type bucketRow struct {
	Label  string
	Amount string
	Width  int
}

type categoryRow struct {
	Name       string
	Amount     string
	Percentage string
}

type dashboardData struct {
	pageData
	Window        string
	Total         string
	Count         int
	Average       string
	OverallTotal  string
	Buckets       []bucketRow
	TopCategories []categoryRow
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, u session.User) {
	window := core.WindowMode(r.URL.Query().Get("window"))
	if !window.Valid() {
		window = core.Last7Days
	}

	// Expenses feed the derived views; the store-computed stats feed the
	// all-time card. The two fetches run concurrently and a failure on
	// either side leaves that side empty.
	var (
		expenses    []core.ExpenseRecord
		overall     core.Stats
		expensesErr error
		statsErr    error
	)
	fetchPair(r.Context(),
		func(ctx context.Context) { expenses, expensesErr = s.fetchExpenses(ctx) },
		func(ctx context.Context) { overall, statsErr = s.fetchStats(ctx) },
	)

	data := dashboardData{
		pageData: pageData{Active: "dashboard", User: u, Error: r.URL.Query().Get("error")},
		Window:   string(window),
	}
	if expensesErr != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard expenses fetch failed", "error", expensesErr)
		data.Error = expensesErr.Error()
	}
	if statsErr != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard stats fetch failed", "error", statsErr)
		if data.Error == "" {
			data.Error = statsErr.Error()
		}
	}

	windowed := core.WindowFilter(expenses, window, time.Now())
	stats := core.Summarize(windowed)
	buckets := core.BucketByDate(windowed, window.ChartCapacity())
	ranks := core.RankCategories(stats.ByCategory, stats.Total, 5)

	data.Total = formatVND(stats.Total)
	data.Count = stats.Count
	data.Average = formatVND(stats.Average())
	data.OverallTotal = formatVND(overall.Total)
	data.Buckets = bucketRows(buckets)
	for _, rank := range ranks {
		data.TopCategories = append(data.TopCategories, categoryRow{
			Name:       rank.Category,
			Amount:     formatVND(rank.Amount),
			Percentage: formatPercent(rank.Percentage),
		})
	}

	s.render(w, r, "dashboard.html", data)
}

// bucketRows scales bucket amounts into bar widths relative to the
// largest bucket.
func bucketRows(buckets []core.Bucket) []bucketRow {
	var max float64
	for _, b := range buckets {
		if b.Amount > max {
			max = b.Amount
		}
	}

	rows := make([]bucketRow, 0, len(buckets))
	for _, b := range buckets {
		width := 0
		if max > 0 && b.Amount > 0 {
			width = int(b.Amount/max*100 + 0.5)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		rows = append(rows, bucketRow{Label: b.Label, Amount: formatVND(b.Amount), Width: width})
	}
	return rows
}
