package trace

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "github.com/nongduongsteams-ai/app-chi-tieu/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()
	if !strings.HasPrefix(a, "req_") {
		t.Fatalf("id = %q, want req_ prefix", a)
	}
	if a == b {
		t.Fatal("generated identical request IDs")
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("GetRequestID on empty context = %q", got)
	}
}

func TestMiddlewareLogsAndPropagatesID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Format: "text", Output: &buf})

	var seenID string
	mw := NewMiddleware(logger, func(r *http.Request) string { return "1.2.3.4" })
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses?month=2024-01", nil))

	if seenID == "" {
		t.Fatal("handler saw no request ID")
	}
	out := buf.String()
	if !strings.Contains(out, "HTTP request started") || !strings.Contains(out, "HTTP request completed") {
		t.Fatalf("missing lifecycle logs: %q", out)
	}
	if !strings.Contains(out, "status_code=204") {
		t.Fatalf("missing status code: %q", out)
	}
	if mw.TotalRequests() != 1 {
		t.Fatalf("TotalRequests = %d, want 1", mw.TotalRequests())
	}
}
