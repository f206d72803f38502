package waitlist

import (
	"context"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/policy"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
)

// WaitlistService defines the exported service interface for the waitlist.
type WaitlistService interface {
	Join(ctx context.Context, req JoinAPIRequest) (*EntryResponse, *serviceerror.ServiceError)
	List(ctx context.Context, actor authn.Actor) ([]EntryResponse, *serviceerror.ServiceError)
}

type waitlistService struct {
	stores *stores.StoreRegistry
	logger *log.Logger
}

func newWaitlistService(registry *stores.StoreRegistry) WaitlistService {
	return &waitlistService{
		stores: registry,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "WaitlistService")),
	}
}

func (svc *waitlistService) waitlistStore() WaitlistStore {
	return svc.stores.Waitlist.(WaitlistStore)
}

// Join records an unauthenticated interest signup. A contact channel is
// required so the entry is actionable.
func (svc *waitlistService) Join(ctx context.Context, req JoinAPIRequest) (*EntryResponse, *serviceerror.ServiceError) {
	if details, err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), details)
	}
	if req.Email == "" && req.Phone == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "An email address or phone number is required")
	}

	entry := &Entry{
		EntryID:     utils.GenerateUUID(),
		Postcode:    req.Postcode,
		CreatedTime: utils.GetCurrentTimeMillis(),
	}
	if req.Email != "" {
		entry.Email = &req.Email
	}
	if req.Phone != "" {
		entry.Phone = &req.Phone
	}
	if req.Notes != "" {
		entry.Notes = &req.Notes
	}

	if err := svc.waitlistStore().Create(ctx, entry); err != nil {
		svc.logger.Error("Failed to create waitlist entry", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	return entry.ToResponse(), nil
}

// List retrieves all waitlist entries for staff review.
func (svc *waitlistService) List(ctx context.Context, actor authn.Actor) ([]EntryResponse, *serviceerror.ServiceError) {
	if !policy.CanViewWaitlist(actor) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "Only staff can view the waitlist")
	}

	entries, err := svc.waitlistStore().List(ctx)
	if err != nil {
		svc.logger.Error("Failed to list waitlist entries", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, *entries[i].ToResponse())
	}
	return responses, nil
}
