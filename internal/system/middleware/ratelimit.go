package middleware

import (
	"net/http"
	"strings"

	"github.com/hampstead-on-demand/request-management-api/internal/ratelimit"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
)

// WithRateLimit gates a handler behind the named limiter pool, keyed by
// client IP. Rejected requests get a 429 with the standard error body.
func WithRateLimit(limiter *ratelimit.Limiter, pool string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := limiter.Allow(pool, ClientIP(r))
		if !decision.Allowed {
			utils.SendError(w, serviceerror.CustomServiceError(serviceerror.RateLimitedError, "Too many requests"))
			return
		}
		next(w, r)
	}
}

// ClientIP extracts the client address, preferring proxy-set headers.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return "unknown"
	}
	return host
}
