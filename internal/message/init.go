package message

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

// NewStore creates and returns a new message store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return NewMessageStore(dbClient)
}

// Initialize sets up the message module and registers routes
func Initialize(mux *http.ServeMux, registry *stores.StoreRegistry, resolver authn.ActorResolver, notifier notification.Notifier, limiter *ratelimit.Limiter) MessageService {
	service := newMessageService(registry, notifier)
	handler := newMessageHandler(service)

	corsOpts := middleware.CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-User-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return authn.RequireActor(resolver, h)
	}

	// GET /api/v1/requests/{requestId}/messages - List conversation
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/requests/{requestId}/messages", authed(handler.listMessages), corsOpts))

	// POST /api/v1/requests/{requestId}/messages - Post message
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/requests/{requestId}/messages",
		middleware.WithRateLimit(limiter, ratelimit.PoolAPIWrite, authed(handler.postMessage)), corsOpts))

	return service
}
