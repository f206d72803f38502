package authn

import (
	"context"
	"net/http"

	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
)

// ActorResolver loads the full actor descriptor for an authenticated user id.
type ActorResolver interface {
	Resolve(ctx context.Context, userID string) (*Actor, *serviceerror.ServiceError)
}

// RequireActor resolves the caller from the X-User-ID header set by the
// fronting auth layer and injects the Actor into the request context.
// Requests without an identity get a 401.
func RequireActor(resolver ActorResolver, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(constants.HeaderUserID)
		if userID == "" {
			utils.SendError(w, serviceerror.CustomServiceError(serviceerror.UnauthenticatedError, "Missing user identity"))
			return
		}

		actor, svcErr := resolver.Resolve(r.Context(), userID)
		if svcErr != nil {
			utils.SendError(w, svcErr)
			return
		}

		next(w, r.WithContext(WithActor(r.Context(), *actor)))
	}
}
