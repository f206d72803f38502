package user

import (
	"context"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
)

// MembershipLookup reports a user's current membership status. Users without
// a membership record get authn.MembershipNone.
type MembershipLookup interface {
	StatusForUser(ctx context.Context, userID string) (authn.MembershipStatus, error)
}

// ResolverService resolves user ids from the auth layer into actors. It
// implements authn.ActorResolver.
type ResolverService struct {
	store       UserStore
	memberships MembershipLookup
	logger      *log.Logger
}

// NewResolverService creates a new actor resolver.
func NewResolverService(store UserStore, memberships MembershipLookup) *ResolverService {
	return &ResolverService{
		store:       store,
		memberships: memberships,
		logger:      log.GetLogger().With(log.String(log.LoggerKeyComponentName, "UserResolver")),
	}
}

// Resolve loads the user and their membership status. An identity the auth
// layer vouched for but we have no record of is treated as unauthenticated.
func (s *ResolverService) Resolve(ctx context.Context, userID string) (*authn.Actor, *serviceerror.ServiceError) {
	usr, err := s.store.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load user", log.String("user_id", userID), log.Error(err))
		return nil, &serviceerror.InternalServerError
	}
	if usr == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.UnauthenticatedError, "Unknown user identity")
	}

	status, err := s.memberships.StatusForUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load membership status", log.String("user_id", userID), log.Error(err))
		return nil, &serviceerror.InternalServerError
	}

	return &authn.Actor{
		UserID:           usr.UserID,
		Email:            usr.Email,
		Role:             usr.Role,
		MembershipStatus: status,
	}, nil
}
