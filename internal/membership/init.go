package membership

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

// NewStore creates and returns a new membership store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return NewMembershipStore(dbClient)
}

// NewService creates the membership service without registering routes.
// Actor resolution needs the service before the mux exists.
func NewService(registry *stores.StoreRegistry, notifier notification.Notifier) MembershipService {
	return newMembershipService(registry, notifier)
}

// Initialize registers the membership routes over an existing service.
func Initialize(mux *http.ServeMux, service MembershipService, resolver authn.ActorResolver, limiter *ratelimit.Limiter) {
	handler := newMembershipHandler(service)
	registerRoutes(mux, handler, resolver, limiter)
}

// registerRoutes registers all membership routes
func registerRoutes(mux *http.ServeMux, handler *membershipHandler, resolver authn.ActorResolver, limiter *ratelimit.Limiter) {
	corsOpts := middleware.CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-User-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return authn.RequireActor(resolver, h)
	}

	// POST /api/v1/memberships - Request membership
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/memberships",
		middleware.WithRateLimit(limiter, ratelimit.PoolAuth, authed(handler.requestMembership)), corsOpts))

	// GET /api/v1/admin/memberships - Staff review list
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/admin/memberships", authed(handler.listMemberships), corsOpts))

	// POST /api/v1/admin/memberships/{userId}/approve - Approve membership
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/admin/memberships/{userId}/approve",
		middleware.WithRateLimit(limiter, ratelimit.PoolAPIWrite, authed(handler.approveMembership)), corsOpts))

	// POST /api/v1/admin/memberships/{userId}/reject - Reject membership
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/admin/memberships/{userId}/reject",
		middleware.WithRateLimit(limiter, ratelimit.PoolAPIWrite, authed(handler.rejectMembership)), corsOpts))
}
