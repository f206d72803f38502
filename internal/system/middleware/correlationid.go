package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const correlationIDContextKey contextKey = "correlation_id"

// WrapWithCorrelationID wraps an http.Handler with correlation ID middleware.
func WrapWithCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := extractCorrelationIDFromRequest(r)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		w.Header().Set("X-Correlation-ID", correlationID)

		ctx := context.WithValue(r.Context(), correlationIDContextKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationIDFromContext returns the request's correlation ID if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return v
	}
	return ""
}

func extractCorrelationIDFromRequest(r *http.Request) string {
	headers := []string{"X-Correlation-ID", "X-Request-ID", "X-Trace-ID"}
	for _, header := range headers {
		if id := r.Header.Get(header); id != "" {
			return id
		}
	}
	return ""
}
