package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/store/memory"
)

type fakeSessions struct {
	mu   sync.Mutex
	user *session.User
}

func (f *fakeSessions) Save(ctx context.Context, u session.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &u
	return nil
}

func (f *fakeSessions) Load(ctx context.Context) (session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return session.User{}, session.ErrNoSession
	}
	return *f.user, nil
}

func (f *fakeSessions) Delete(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
	return nil
}

func (f *fakeSessions) Close() error { return nil }

func newTestServer(t *testing.T, signedIn bool) (*Server, *fakeSessions) {
	t.Helper()
	sessions := &fakeSessions{}
	if signedIn {
		sessions.user = &session.User{Name: "Duong", Email: "duong@example.com", Platform: "web"}
	}
	srv, err := NewServer(":0", Options{
		Store:    memory.NewSeeded(),
		Sessions: sessions,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, sessions
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func makeIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	return enc(map[string]string{"alg": "RS256", "typ": "JWT"}) + "." + enc(claims) + ".c2ln"
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, false)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(t, srv, path); rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestRedirectsWithoutSession(t *testing.T) {
	srv, _ := newTestServer(t, false)
	for _, path := range []string{"/", "/dashboard", "/expenses", "/categories", "/reports"} {
		rr := get(t, srv, path)
		if rr.Code != http.StatusSeeOther {
			t.Errorf("%s status = %d, want 303", path, rr.Code)
			continue
		}
		if loc := rr.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s redirects to %q, want /login", path, loc)
		}
	}
}

func TestLoginPage(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rr := get(t, srv, "/login")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "g_id_signin") {
		t.Fatal("login page missing sign-in button")
	}
}

func TestAuthCallbackOpensSession(t *testing.T) {
	srv, sessions := newTestServer(t, false)

	token := makeIDToken(t, map[string]any{
		"name":    "Nông Dưỡng",
		"email":   "duong@example.com",
		"picture": "https://example.com/p.jpg",
	})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/callback",
		strings.NewReader(url.Values{"credential": {token}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Linux; Android 14; Pixel 8)")
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/dashboard" {
		t.Fatalf("status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}
	u, err := sessions.Load(context.Background())
	if err != nil {
		t.Fatalf("session not saved: %v", err)
	}
	if u.Email != "duong@example.com" || u.Platform != "android" {
		t.Fatalf("saved user = %+v", u)
	}
}

func TestAuthCallbackRejectsBadToken(t *testing.T) {
	srv, sessions := newTestServer(t, false)
	rr := postForm(t, srv, "/auth/callback", url.Values{"credential": {"not-a-token"}})
	if rr.Code != http.StatusSeeOther || !strings.HasPrefix(rr.Header().Get("Location"), "/login?error=") {
		t.Fatalf("status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}
	if _, err := sessions.Load(context.Background()); err != session.ErrNoSession {
		t.Fatal("session must not be saved for a bad token")
	}
}

func TestLogout(t *testing.T) {
	srv, sessions := newTestServer(t, true)
	rr := postForm(t, srv, "/logout", url.Values{})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}
	if _, err := sessions.Load(context.Background()); err != session.ErrNoSession {
		t.Fatal("session survived logout")
	}
}

func TestDashboardRenders(t *testing.T) {
	srv, _ := newTestServer(t, true)
	rr := get(t, srv, "/dashboard?window=all")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Tổng chi", "Số khoản", "Trung bình"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestDashboardInvalidWindowFallsBack(t *testing.T) {
	srv, _ := newTestServer(t, true)
	rr := get(t, srv, "/dashboard?window=bogus")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="7days" selected`) {
		t.Error("invalid window did not fall back to 7days")
	}
}
