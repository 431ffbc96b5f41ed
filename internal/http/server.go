// Package http serves the expense tracker UI: login, dashboard, expense
// and category management, and monthly reports. Views fetch record lists
// from the remote store, run them through the aggregation functions in
// core, and render server-side templates.
package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/cache"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/events"
	applog "github.com/nongduongsteams-ai/app-chi-tieu/internal/log"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/middleware/ratelimit"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/middleware/security"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/middleware/trace"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/store"
	appweb "github.com/nongduongsteams-ai/app-chi-tieu/web"
)

const (
	expensesCacheKey   = "expenses"
	categoriesCacheKey = "categories"
	statsCacheKey      = "stats"

	fetchTimeout = 15 * time.Second
)

// Options carries the server's collaborators and tuning knobs.
type Options struct {
	Logger         *applog.Logger
	Store          store.Store
	Sessions       session.Store
	Events         events.Publisher
	GoogleClientID string
	CacheTTL       time.Duration
	CacheSize      int
}

// Server is the HTTP front of the application.
type Server struct {
	http.Server
	logger         *applog.Logger
	store          store.Store
	sessions       session.Store
	events         events.Publisher
	templates      *template.Template
	googleClientID string

	expensesCache   *cache.LRUCache[[]core.ExpenseRecord]
	categoriesCache *cache.LRUCache[[]core.CategoryRecord]
	statsCache      *cache.LRUCache[core.Stats]
	cacheManager    *cache.Manager

	limiter      *ratelimit.Limiter
	ipResolver   *security.IPResolver
	shutdownOnce sync.Once
}

// NewServer wires routes, middleware, templates and caches.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("server requires a session store")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Events == nil {
		opts.Events = events.NopPublisher{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}

	templates, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		logger:         opts.Logger.WithComponent(applog.ComponentHTTP),
		store:          opts.Store,
		sessions:       opts.Sessions,
		events:         opts.Events,
		templates:      templates,
		googleClientID: opts.GoogleClientID,

		expensesCache:   cache.NewLRU[[]core.ExpenseRecord](opts.CacheSize, opts.CacheTTL),
		categoriesCache: cache.NewLRU[[]core.CategoryRecord](opts.CacheSize, opts.CacheTTL),
		statsCache:      cache.NewLRU[core.Stats](opts.CacheSize, opts.CacheTTL),
		cacheManager:    cache.NewManager(),

		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ipResolver: security.NewIPResolver(),
	}

	s.cacheManager.Register(s.expensesCache)
	s.cacheManager.Register(s.categoriesCache)
	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /auth/callback", s.handleAuthCallback)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /dashboard", s.withUser(s.handleDashboard))
	mux.HandleFunc("GET /expenses", s.withUser(s.handleExpensesPage))
	mux.HandleFunc("POST /expenses", s.withUser(s.handleAddExpense))
	mux.HandleFunc("POST /expenses/edit", s.withUser(s.handleEditExpense))
	mux.HandleFunc("POST /expenses/delete", s.withUser(s.handleDeleteExpense))
	mux.HandleFunc("GET /categories", s.withUser(s.handleCategoriesPage))
	mux.HandleFunc("POST /categories", s.withUser(s.handleAddCategory))
	mux.HandleFunc("POST /categories/edit", s.withUser(s.handleEditCategory))
	mux.HandleFunc("POST /categories/delete", s.withUser(s.handleDeleteCategory))
	mux.HandleFunc("GET /reports", s.withUser(s.handleReportsPage))
	mux.HandleFunc("POST /reports/export", s.withUser(s.handleExport))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(opts.Logger, s.ipResolver.ExtractClientIP)

	var handler http.Handler = mux
	handler = s.limitWrites(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{Addr: addr, Handler: handler}
	return s, nil
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// limitWrites rate-limits mutating requests per client IP.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			clientIP := s.ipResolver.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Quá nhiều yêu cầu, vui lòng thử lại sau.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withUser loads the signed-in user and redirects to the login page when
// there is no session.
func (s *Server) withUser(next func(http.ResponseWriter, *http.Request, session.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.sessions.Load(r.Context())
		if err != nil {
			if err != session.ErrNoSession {
				s.logger.ErrorContext(r.Context(), "Session load failed", "error", err)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, u)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.Load(r.Context()); err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			"error", err, "template", name)
		http.Error(w, "lỗi hiển thị trang", http.StatusInternalServerError)
	}
}

// redirectWithError sends the browser back to path carrying the failure
// message in the query string (post/redirect/get).
func redirectWithError(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}

// fetchExpenses returns the cached expense list, reading through to the
// store on a miss.
func (s *Server) fetchExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	if cached, ok := s.expensesCache.Get(expensesCacheKey); ok {
		return cached, nil
	}
	cctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	records, err := s.store.GetExpenses(cctx)
	if err != nil {
		return nil, fmt.Errorf("fetch expenses: %w", err)
	}
	s.expensesCache.Set(expensesCacheKey, records)
	return records, nil
}

func (s *Server) fetchCategories(ctx context.Context) ([]core.CategoryRecord, error) {
	if cached, ok := s.categoriesCache.Get(categoriesCacheKey); ok {
		return cached, nil
	}
	cctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	records, err := s.store.GetCategories(cctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	s.categoriesCache.Set(categoriesCacheKey, records)
	return records, nil
}

func (s *Server) fetchStats(ctx context.Context) (core.Stats, error) {
	if cached, ok := s.statsCache.Get(statsCacheKey); ok {
		return cached, nil
	}
	cctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	stats, err := s.store.GetStats(cctx)
	if err != nil {
		return core.Stats{}, fmt.Errorf("fetch stats: %w", err)
	}
	s.statsCache.Set(statsCacheKey, stats)
	return stats, nil
}

// invalidateCaches drops every cached list after a successful write so
// the next read returns the post-write truth.
func (s *Server) invalidateCaches() {
	s.expensesCache.Clear()
	s.categoriesCache.Clear()
	s.statsCache.Clear()
}

// afterMutation invalidates caches and publishes the mutation event.
// Event publishing is best-effort; a failure is logged, never surfaced.
func (s *Server) afterMutation(ctx context.Context, action string, id core.ID, email string) {
	s.invalidateCaches()
	if err := s.events.PublishMutation(ctx, action, id.String(), email); err != nil {
		s.logger.WarnContext(ctx, "Mutation event publish failed",
			"error", err, "action", action)
	}
}

// fetchPair runs the two fetches concurrently. A failed fetch leaves its
// side empty and reports the message; the page still renders.
func fetchPair(ctx context.Context, first, second func(context.Context)) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { first(gctx); return nil })
	g.Go(func() error { second(gctx); return nil })
	_ = g.Wait()
}
