package waitlist

import (
	"net/http"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/ratelimit"
	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
	"github.com/hampstead-on-demand/request-management-api/internal/system/middleware"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
)

// NewStore creates and returns a new waitlist store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return NewWaitlistStore(dbClient)
}

// Initialize sets up the waitlist module and registers routes
func Initialize(mux *http.ServeMux, registry *stores.StoreRegistry, resolver authn.ActorResolver, limiter *ratelimit.Limiter) WaitlistService {
	service := newWaitlistService(registry)
	handler := newWaitlistHandler(service)

	corsOpts := middleware.CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-User-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}

	// POST /api/v1/waitlist - Join the waitlist (unauthenticated)
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/waitlist",
		middleware.WithRateLimit(limiter, ratelimit.PoolWaitlist, handler.join), corsOpts))

	// GET /api/v1/admin/waitlist - Staff listing with optional CSV export
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/admin/waitlist",
		authn.RequireActor(resolver, handler.list), corsOpts))

	return service
}
