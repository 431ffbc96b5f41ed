package http

import (
	"strconv"
	"strings"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
)

// pageData carries what the shared nav and error banner need.
type pageData struct {
	Active string
	User   session.User
	Error  string
}

// formatVND renders an amount the way the UI shows money: integer part
// grouped by dots, comma decimal separator, đồng sign suffix.
func formatVND(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	raw := strconv.FormatFloat(amount, 'f', -1, 64)
	intPart, fracPart, _ := strings.Cut(raw, ".")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	out := b.String()
	if fracPart != "" {
		out += "," + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out + " ₫"
}

// formatPercent prints a one-decimal percentage without a trailing zero.
func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
