package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gastos/internal/cache"
	"gastos/internal/core"
	applog "gastos/internal/log"
	appweb "gastos/web"
)

// Ledger is the application surface the handlers talk to.
type Ledger interface {
	AddTransaction(ctx context.Context, date core.Date, amount core.Money, categoryID int64, description string) bool
	ListMonth(ctx context.Context, month, year int) []core.ReportEntry
	ListCategories(ctx context.Context) []core.Category
	AddCategory(ctx context.Context, name string, typ core.ExpenseType) (*core.Category, error)
	DeleteTransaction(ctx context.Context, id int64) bool
}

type Server struct {
	http.Server
	templates   *template.Template
	ledger      Ledger
	rateLimiter *rateLimiter

	// month report and category list caches with eviction policy
	reportCache     *cache.LRU[[]core.ReportEntry]
	categoriesCache *cache.LRU[[]core.Category]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, cacheTTL time.Duration) *Server {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:          ledger,
		rateLimiter:     newRateLimiter(),
		reportCache:     cache.NewLRU[[]core.ReportEntry](100, cacheTTL),
		categoriesCache: cache.NewLRU[[]core.Category](10, cacheTTL),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.Register(s.categoriesCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("/transactions/delete", s.withSecurityHeaders(s.handleDeleteTransaction))
	mux.HandleFunc("/categories", s.withSecurityHeaders(s.handleCreateCategory))
	// UI partials
	mux.HandleFunc("/ui/month-report", s.withSecurityHeaders(s.handleMonthReport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutations
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) cacheKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (s *Server) invalidateReport(year, month int) {
	s.reportCache.Delete(s.cacheKey(year, month))
}

func (s *Server) invalidateCategories() {
	s.categoriesCache.Delete("categories")
}

func (s *Server) getReport(ctx context.Context, year, month int) []core.ReportEntry {
	key := s.cacheKey(year, month)

	if entries, found := s.reportCache.Get(key); found {
		slog.DebugContext(ctx, "Report cache hit", applog.FieldYear, year, applog.FieldMonth, month)
		result := make([]core.ReportEntry, len(entries))
		copy(result, entries)
		return result
	}

	// Small timeout to avoid hanging partials
	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	entries := s.ledger.ListMonth(cctx, month, year)

	// An empty result is indistinguishable from a collapsed store failure,
	// so it is never cached.
	if len(entries) > 0 {
		s.reportCache.Set(key, entries)
		slog.DebugContext(ctx, "Report cached",
			applog.FieldYear, year,
			applog.FieldMonth, month,
			"entries", len(entries))
	}
	return entries
}

func (s *Server) getCategories(ctx context.Context) []core.Category {
	if cats, found := s.categoriesCache.Get("categories"); found {
		slog.DebugContext(ctx, "Categories cache hit", "count", len(cats))
		result := make([]core.Category, len(cats))
		copy(result, cats)
		return result
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	cats := s.ledger.ListCategories(cctx)

	if len(cats) > 0 {
		s.categoriesCache.Set("categories", cats)
	}
	return cats
}
