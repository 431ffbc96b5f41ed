package core

import (
	"math"
	"sort"
	"strings"
	"time"
)

// WindowMode selects the relative time range for dashboard aggregates.
type WindowMode string

const (
	Last7Days  WindowMode = "7days"
	Last1Month WindowMode = "1month"
	AllTime    WindowMode = "all"
)

// ChartCapacity returns the display cap on the number of date buckets for
// a window. The "all" window filters nothing at the record level; the 90
// here only bounds the rendered chart.
func (m WindowMode) ChartCapacity() int {
	switch m {
	case Last7Days:
		return 7
	case Last1Month:
		return 30
	default:
		return 90
	}
}

// Valid reports whether m is one of the known window modes.
func (m WindowMode) Valid() bool {
	switch m {
	case Last7Days, Last1Month, AllTime:
		return true
	}
	return false
}

// Stats summarizes a set of expense records. ByCategory is keyed by the
// category display name; categories without matching records are absent.
type Stats struct {
	Total      float64            `json:"total"`
	Count      int                `json:"count"`
	ByCategory map[string]float64 `json:"byCategory"`
}

// Average returns the mean amount per record, or 0 for an empty set.
func (s Stats) Average() float64 {
	if s.Count <= 0 {
		return 0
	}
	return s.Total / float64(s.Count)
}

// Bucket is one date's aggregated amount in the time-series view.
type Bucket struct {
	Label  string
	Amount float64
}

// CategoryRank is one row of the ranked category breakdown.
type CategoryRank struct {
	Category   string
	Amount     float64
	Percentage float64
}

// WindowFilter keeps records whose expense date falls inside the relative
// window anchored at ref. The boundary is inclusive and computed with
// calendar arithmetic (7 days back, or one calendar month back), comparing
// dates only; time of day never matters. AllTime is the identity.
// Records whose date does not parse are dropped.
func WindowFilter(records []ExpenseRecord, mode WindowMode, ref time.Time) []ExpenseRecord {
	if mode == AllTime {
		return records
	}

	var start time.Time
	switch mode {
	case Last7Days:
		start = ref.AddDate(0, 0, -7)
	case Last1Month:
		start = ref.AddDate(0, -1, 0)
	default:
		return records
	}
	// Calendar dates in DateLayout order lexicographically, so comparing
	// the strings compares the dates without any timezone ambiguity.
	cutoff := start.Format(DateLayout)

	out := make([]ExpenseRecord, 0, len(records))
	for _, r := range records {
		if _, err := time.Parse(DateLayout, r.ExpenseDate); err != nil {
			continue
		}
		if r.ExpenseDate >= cutoff {
			out = append(out, r)
		}
	}
	return out
}

// MonthFilter keeps records whose expense date starts with the given
// YYYY-MM prefix. Pure string comparison, order-preserving.
func MonthFilter(records []ExpenseRecord, yyyymm string) []ExpenseRecord {
	out := make([]ExpenseRecord, 0, len(records))
	for _, r := range records {
		if strings.HasPrefix(r.ExpenseDate, yyyymm) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize computes the grand total, record count and per-category sums
// over the given records. Category sums always partition the total.
func Summarize(records []ExpenseRecord) Stats {
	s := Stats{ByCategory: map[string]float64{}}
	for _, r := range records {
		amt := r.Amount.Value()
		s.Total += amt
		s.Count++
		s.ByCategory[r.Category] += amt
	}
	return s
}

// BucketByDate sums amounts per distinct expense date and returns the
// buckets in ascending date order. When more than capacity distinct dates
// exist, the oldest are dropped so only the most recent capacity buckets
// remain. An empty input yields no buckets rather than a zero-filled range.
func BucketByDate(records []ExpenseRecord, capacity int) []Bucket {
	if len(records) == 0 {
		return nil
	}

	byDate := map[string]float64{}
	for _, r := range records {
		byDate[r.ExpenseDate] += r.Amount.Value()
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	if capacity > 0 && len(dates) > capacity {
		dates = dates[len(dates)-capacity:]
	}

	out := make([]Bucket, 0, len(dates))
	for _, d := range dates {
		out = append(out, Bucket{Label: bucketLabel(d), Amount: byDate[d]})
	}
	return out
}

// RankCategories orders the per-category sums by amount descending and
// derives each category's share of total as a percentage rounded to one
// decimal. Equal amounts are ordered lexically by name so the ranking is
// deterministic. At most topN entries are returned; topN <= 0 means all.
func RankCategories(byCategory map[string]float64, total float64, topN int) []CategoryRank {
	out := make([]CategoryRank, 0, len(byCategory))
	for name, amt := range byCategory {
		rank := CategoryRank{Category: name, Amount: amt}
		if total > 0 {
			rank.Percentage = math.Round(amt/total*1000) / 10
		}
		out = append(out, rank)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// bucketLabel renders a stored date as the dd/MM chart label. Dates that
// do not parse keep their raw value so the bucket stays visible.
func bucketLabel(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("02/01")
}
