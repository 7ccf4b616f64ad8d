package http

import (
	"net/http"
	"time"

	applog "finance/internal/log"
)

// withMiddleware wraps every route with request tracing, security headers
// and rate limiting of mutating requests.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		logger := applog.FromSlog(nil, applog.ComponentHTTP).With(
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
		)
		ctx := applog.IntoContext(r.Context(), logger)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		setSecurityHeaders(w)

		if reason := classifyRequest(r); reason != "" {
			s.metrics.recordSuspicious(reason)
			logger.WithComponent(applog.ComponentSecurity).WarnContext(ctx, "Suspicious request detected",
				applog.FieldOperation, applog.OpSecurityCheck,
				applog.FieldReason, string(reason),
				applog.FieldClientIP, clientIP,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP)
			rw.Header().Set("Retry-After", "60")
			writeError(rw, http.StatusTooManyRequests, "rate limit exceeded, try again later")
		} else {
			next.ServeHTTP(rw, r)
		}

		s.logger.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func setSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Cache-Control", "no-store")
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
