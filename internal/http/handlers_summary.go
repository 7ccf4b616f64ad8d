package http

import (
	"net/http"
	"strconv"
	"strings"

	"finance/internal/cache"
	applog "finance/internal/log"
	"finance/internal/services"
)

// Cache keys embed the store generation, so any committed write, from this
// process or another one on the same database, makes every cached view
// unreachable.
const (
	viewCategories = "categories"
	viewMonthly    = "monthly"
	viewTrend      = "trend"
)

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	q, err := parseCategoryQuery(r)
	if err != nil {
		s.fail(w, r, err, applog.OpSummary)
		return
	}

	gen, cacheable := s.generation(r)
	key := cache.Key(viewCategories, gen,
		q.Type.String(), strconv.Itoa(q.Year), strconv.Itoa(q.Month), strconv.Itoa(q.Limit))
	if totals, ok := cached(s.categoryCache, key, cacheable); ok {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Category totals cache hit", "key", key)
		writeJSON(w, http.StatusOK, toCategoryTotalsJSON(totals))
		return
	}

	totals, err := s.svc.CategoryBreakdown(r.Context(), q)
	if err != nil {
		s.fail(w, r, err, applog.OpSummary)
		return
	}
	if cacheable {
		s.categoryCache.Set(key, totals)
	}
	writeJSON(w, http.StatusOK, toCategoryTotalsJSON(totals))
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	gen, cacheable := s.generation(r)
	key := cache.Key(viewMonthly, gen)
	if months, ok := cached(s.monthlyCache, key, cacheable); ok {
		writeJSON(w, http.StatusOK, toMonthlyJSON(months))
		return
	}

	months, err := s.svc.MonthlySummary(r.Context())
	if err != nil {
		s.fail(w, r, err, applog.OpSummary)
		return
	}
	if cacheable {
		s.monthlyCache.Set(key, months)
	}
	writeJSON(w, http.StatusOK, toMonthlyJSON(months))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	gen, cacheable := s.generation(r)
	key := cache.Key(viewTrend, gen)
	if points, ok := cached(s.trendCache, key, cacheable); ok {
		writeJSON(w, http.StatusOK, toTrendJSON(points))
		return
	}

	points, err := s.svc.MonthlyTrendSeries(r.Context())
	if err != nil {
		s.fail(w, r, err, applog.OpSummary)
		return
	}
	if cacheable {
		s.trendCache.Set(key, points)
	}
	writeJSON(w, http.StatusOK, toTrendJSON(points))
}

func cached[T any](c *cache.LRUCache[T], key string, cacheable bool) (T, bool) {
	if !cacheable {
		var zero T
		return zero, false
	}
	return c.Get(key)
}

// parseCategoryQuery reads type, limit and an optional month given either as
// month=YYYY-MM or as separate year and month values.
func parseCategoryQuery(r *http.Request) (services.CategoryQuery, error) {
	values := r.URL.Query()
	typ, err := parseType(values)
	if err != nil {
		return services.CategoryQuery{}, err
	}
	q := services.CategoryQuery{Type: typ}

	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil || q.Limit < 0 {
			return services.CategoryQuery{}, badRequest("invalid limit %q", v)
		}
	}

	month := strings.TrimSpace(values.Get("month"))
	year := strings.TrimSpace(values.Get("year"))
	switch {
	case year == "" && month == "":
	case year == "" && len(month) == 7 && month[4] == '-':
		if q.Year, err = strconv.Atoi(month[:4]); err != nil {
			return services.CategoryQuery{}, badRequest("invalid month %q", month)
		}
		if q.Month, err = strconv.Atoi(month[5:]); err != nil {
			return services.CategoryQuery{}, badRequest("invalid month %q", month)
		}
	default:
		if q.Year, err = strconv.Atoi(year); err != nil {
			return services.CategoryQuery{}, badRequest("invalid year %q", year)
		}
		if q.Month, err = strconv.Atoi(month); err != nil {
			return services.CategoryQuery{}, badRequest("invalid month %q", month)
		}
	}
	return q, nil
}
