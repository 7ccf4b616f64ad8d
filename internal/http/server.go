// Package http exposes the transaction store, importer and aggregates as a
// JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finance/internal/cache"
	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/services"
)

// Options tunes request handling. Zero values fall back to defaults.
type Options struct {
	// DefaultCategory applies to imported rows without a category.
	DefaultCategory string
	// StrictDates makes unparseable import dates a row failure.
	StrictDates bool
	// DayFirst reads ambiguous imported dates as DD/MM.
	DayFirst bool
	// PreviewLimit caps the failure lines in an import response preview.
	PreviewLimit int
	// RequestsPerMinute bounds mutating requests per client IP.
	RequestsPerMinute int
}

type Server struct {
	http.Server
	svc         *services.TransactionService
	opts        Options
	logger      *applog.StructuredLogger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	categoryCache *cache.LRUCache[[]core.CategoryTotal]
	monthlyCache  *cache.LRUCache[[]core.MonthSummary]
	trendCache    *cache.LRUCache[[]core.TrendPoint]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, svc *services.TransactionService, opts Options) *Server {
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = 10
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}

	mux := http.NewServeMux()
	s := &Server{
		svc:           svc,
		opts:          opts,
		logger:        applog.NewStructuredLogger(applog.FromSlog(slog.Default(), applog.ComponentHTTP)),
		rateLimiter:   newRateLimiter(opts.RequestsPerMinute),
		metrics:       newSecurityMetrics(),
		categoryCache: cache.NewLRUCache[[]core.CategoryTotal](50, 5*time.Minute),
		monthlyCache:  cache.NewLRUCache[[]core.MonthSummary](10, 5*time.Minute),
		trendCache:    cache.NewLRUCache[[]core.TrendPoint](10, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.cacheManager.Register(s.categoryCache)
	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.Register(s.trendCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/import/template", s.handleImportTemplate)
	mux.HandleFunc("GET /api/export", s.handleExport)

	mux.HandleFunc("GET /api/summary/categories", s.handleCategoryTotals)
	mux.HandleFunc("GET /api/summary/monthly", s.handleMonthlySummary)
	mux.HandleFunc("GET /api/summary/trend", s.handleTrend)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	return s
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the store answers a count.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.svc.Store().Count(ctx); err != nil {
		s.logger.LogError(r.Context(), "Readiness check failed", err, applog.OpHealthCheck)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type cacheStatsJSON struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

type statsJSON struct {
	Security securitySnapshot          `json:"security"`
	Cache    map[string]cacheStatsJSON `json:"cache"`
}

type statsSource interface {
	Stats() (hits, misses int64)
	Size() int
}

// handleStats reports security counters and summary cache effectiveness.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out := statsJSON{Security: s.metrics.snapshot(), Cache: map[string]cacheStatsJSON{}}
	for view, c := range map[string]statsSource{
		viewCategories: s.categoryCache,
		viewMonthly:    s.monthlyCache,
		viewTrend:      s.trendCache,
	} {
		hits, misses := c.Stats()
		out.Cache[view] = cacheStatsJSON{Hits: hits, Misses: misses, Size: c.Size()}
	}
	writeJSON(w, http.StatusOK, out)
}

// generation reports the store change counter. When it cannot be read the
// caller serves an uncached view.
func (s *Server) generation(r *http.Request) (int64, bool) {
	g, err := s.svc.Store().Generation(r.Context())
	if err != nil {
		s.logger.LogError(r.Context(), "Store generation unavailable, bypassing cache", err, applog.OpSummary)
		return 0, false
	}
	return g, true
}
