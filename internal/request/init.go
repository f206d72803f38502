package request

import (
	"net/http"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/notification"
	"github.com/hampstead-on-demand/request-management-api/internal/ratelimit"
	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
	"github.com/hampstead-on-demand/request-management-api/internal/system/middleware"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
)

// NewStore creates and returns a new request store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return NewRequestStore(dbClient)
}

// Initialize sets up the request module and registers routes
func Initialize(mux *http.ServeMux, registry *stores.StoreRegistry, resolver authn.ActorResolver, notifier notification.Notifier, limiter *ratelimit.Limiter) RequestService {
	service := newRequestService(registry, notifier)
	handler := newRequestHandler(service)

	registerRoutes(mux, handler, resolver, limiter)

	return service
}

// registerRoutes registers all request lifecycle routes
func registerRoutes(mux *http.ServeMux, handler *requestHandler, resolver authn.ActorResolver, limiter *ratelimit.Limiter) {
	corsOpts := middleware.CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-User-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return authn.RequireActor(resolver, h)
	}
	write := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithRateLimit(limiter, ratelimit.PoolAPIWrite, authed(h))
	}

	// POST /api/v1/requests - Create request
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/requests", write(handler.createRequest), corsOpts))

	// GET /api/v1/requests - List requests visible to the caller
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/requests", authed(handler.listRequests), corsOpts))

	// GET /api/v1/requests/{requestId} - Get request with answers
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/requests/{requestId}", authed(handler.getRequest), corsOpts))

	// POST /api/v1/requests/{requestId}/status - Admin status change
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/requests/{requestId}/status", write(handler.changeStatus), corsOpts))

	// POST /api/v1/requests/{requestId}/assign - Admin assignment change
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/requests/{requestId}/assign", write(handler.assign), corsOpts))

	// POST /api/v1/requests/{requestId}/quote-response - Member quote decision
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/requests/{requestId}/quote-response", write(handler.respondToQuote), corsOpts))

	// POST /api/v1/requests/{requestId}/cancel - Member cancellation
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/requests/{requestId}/cancel", write(handler.cancel), corsOpts))
}
