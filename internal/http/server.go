// Package http exposes the purchase tracking pipeline as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"spendwatch/internal/cache"
	"spendwatch/internal/core"
	"spendwatch/internal/middleware/ratelimit"
	"spendwatch/internal/middleware/security"
	"spendwatch/internal/middleware/trace"
	"spendwatch/internal/services"
)

type Server struct {
	http.Server

	service *services.PurchaseService

	limiter  *ratelimit.Limiter
	detector *security.Detector
	headers  *security.HeadersMiddleware
	tracer   *trace.Middleware

	budgetCache   *cache.LRUCache[core.BudgetStatus]
	spendingCache *cache.LRUCache[core.Spending]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, service *services.PurchaseService) *Server {
	mux := http.NewServeMux()

	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:       service,
		limiter:       ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:      detector,
		headers:       security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		tracer:        trace.NewMiddleware(detector.ExtractClientIP),
		budgetCache:   cache.NewLRUCache[core.BudgetStatus](10, time.Minute),
		spendingCache: cache.NewLRUCache[core.Spending](10, time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.budgetCache)
	s.cacheManager.Register(s.spendingCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/platform", s.protected(s.handlePlatform))
	mux.HandleFunc("/api/scan", s.protected(s.handleScan))
	mux.HandleFunc("/api/purchases", s.protected(s.handlePurchases))
	mux.HandleFunc("/api/purchases/manual", s.protected(s.handleManualPurchase))
	mux.HandleFunc("/api/purchases/", s.protected(s.handlePurchaseByID))
	mux.HandleFunc("/api/spending", s.protected(s.handleSpending))
	mux.HandleFunc("/api/spending/categories", s.protected(s.handleSpendingByCategory))
	mux.HandleFunc("/api/spending/weekly", s.protected(s.handleWeeklyComparison))
	mux.HandleFunc("/api/budget", s.protected(s.handleBudget))
	mux.HandleFunc("/api/settings", s.protected(s.handleSettings))
	mux.HandleFunc("/api/categories", s.protected(s.handleCategories))
	mux.HandleFunc("/api/export", s.protected(s.handleExport))
	mux.HandleFunc("/api/import", s.protected(s.handleImport))

	return s
}

// protected wraps a handler with tracing, security headers, suspicion
// logging, and write rate limiting.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	wrapped := s.tracer.Middleware(s.headers.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.detector.ExtractClientIP(r)

		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
		}

		// Rate limit mutating requests only; reads stay cheap.
		if r.Method != http.MethodGet && !s.limiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next(w, r)
	})))
	return wrapped.ServeHTTP
}

// invalidateDerived drops cached aggregates after any history or settings
// write.
func (s *Server) invalidateDerived() {
	s.budgetCache.Purge()
	s.spendingCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// purchaseID extracts the id segment from /api/purchases/{id}.
func purchaseID(path string) string {
	id := strings.TrimPrefix(path, "/api/purchases/")
	if strings.ContainsRune(id, '/') {
		return ""
	}
	return id
}
