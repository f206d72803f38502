package membership

import (
	"context"

	"github.com/hampstead-on-demand/request-management-api/internal/audit"
	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/notification"
	"github.com/hampstead-on-demand/request-management-api/internal/policy"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
	"github.com/hampstead-on-demand/request-management-api/internal/user"
)

// MembershipService defines the exported service interface for membership
// administration.
type MembershipService interface {
	Request(ctx context.Context, actor authn.Actor) (*MembershipResponse, *serviceerror.ServiceError)
	Approve(ctx context.Context, actor authn.Actor, userID string) (*MembershipResponse, *serviceerror.ServiceError)
	Reject(ctx context.Context, actor authn.Actor, userID string) (*MembershipResponse, *serviceerror.ServiceError)
	List(ctx context.Context, actor authn.Actor, status authn.MembershipStatus) ([]MembershipResponse, *serviceerror.ServiceError)

	// StatusForUser implements user.MembershipLookup for actor resolution.
	StatusForUser(ctx context.Context, userID string) (authn.MembershipStatus, error)
}

// statusSnapshot is the audit payload for membership decisions.
type statusSnapshot struct {
	Status authn.MembershipStatus `json:"status"`
}

type membershipService struct {
	stores   *stores.StoreRegistry
	notifier notification.Notifier
	logger   *log.Logger
}

func newMembershipService(registry *stores.StoreRegistry, notifier notification.Notifier) MembershipService {
	return &membershipService{
		stores:   registry,
		notifier: notifier,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "MembershipService")),
	}
}

func (svc *membershipService) membershipStore() MembershipStore {
	return svc.stores.Membership.(MembershipStore)
}

func (svc *membershipService) auditStore() audit.AuditStore {
	return svc.stores.Audit.(audit.AuditStore)
}

func (svc *membershipService) userStore() user.UserStore {
	return svc.stores.User.(user.UserStore)
}

// StatusForUser reports the user's membership status for actor resolution.
func (svc *membershipService) StatusForUser(ctx context.Context, userID string) (authn.MembershipStatus, error) {
	m, err := svc.membershipStore().GetByUserID(ctx, userID)
	if err != nil {
		return authn.MembershipNone, err
	}
	if m == nil {
		return authn.MembershipNone, nil
	}
	return m.Status, nil
}

// Request records the actor's wish to become a member. Repeating the call
// never duplicates records: an active member gets a conflict, a previously
// declined user gets a refusal, and a pending request is returned as is.
func (svc *membershipService) Request(ctx context.Context, actor authn.Actor) (*MembershipResponse, *serviceerror.ServiceError) {
	existing, err := svc.membershipStore().GetByUserID(ctx, actor.UserID)
	if err != nil {
		svc.logger.Error("Failed to load membership", log.String("user_id", actor.UserID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	if existing != nil {
		switch existing.Status {
		case authn.MembershipActive:
			return nil, serviceerror.CustomServiceError(serviceerror.ConflictError, "You are already an active member")
		case authn.MembershipRejected:
			return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "A previous membership request was declined")
		case authn.MembershipPending:
			return existing.ToResponse(), nil
		}
	}

	currentTime := utils.GetCurrentTimeMillis()
	entity := &Membership{
		MembershipID: utils.GenerateUUID(),
		UserID:       actor.UserID,
		Status:       authn.MembershipPending,
		CreatedTime:  currentTime,
		UpdatedTime:  currentTime,
	}
	if existing != nil {
		entity.MembershipID = existing.MembershipID
		entity.CreatedTime = existing.CreatedTime
	}

	auditEntry, svcErr := svc.buildAuditEntry(entity, existing, audit.ActionRequestMembership, &actor.UserID, currentTime)
	if svcErr != nil {
		return nil, svcErr
	}

	if err := svc.executeUpsert(entity, auditEntry); err != nil {
		svc.logger.Error("Failed to record membership request", log.String("user_id", actor.UserID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	return entity.ToResponse(), nil
}

// Approve grants membership, creating the record when the user never filed
// a request. The decision is audited and the member gets a best-effort
// approval email.
func (svc *membershipService) Approve(ctx context.Context, actor authn.Actor, userID string) (*MembershipResponse, *serviceerror.ServiceError) {
	if !policy.CanAdministerMembership(actor) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "Only staff can decide membership requests")
	}

	currentTime := utils.GetCurrentTimeMillis()
	entity, existing, svcErr := svc.membershipForDecision(ctx, userID, currentTime)
	if svcErr != nil {
		return nil, svcErr
	}
	entity.Status = authn.MembershipActive
	entity.ApprovedBy = &actor.UserID
	entity.ApprovedTime = &currentTime
	entity.UpdatedTime = currentTime

	auditEntry, svcErr := svc.buildAuditEntry(entity, existing, audit.ActionApprove, &actor.UserID, currentTime)
	if svcErr != nil {
		return nil, svcErr
	}

	if err := svc.executeUpsert(entity, auditEntry); err != nil {
		svc.logger.Error("Failed to approve membership", log.String("user_id", userID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	if member, err := svc.userStore().GetByID(ctx, userID); err == nil && member != nil {
		svc.notifier.Dispatch(ctx, notification.KindMembershipApproved, member.Email, notification.Payload{})
	} else {
		svc.logger.Warn("Could not resolve approval email recipient", log.String("user_id", userID))
	}

	return entity.ToResponse(), nil
}

// Reject declines membership. The decision is audited; no email goes out.
func (svc *membershipService) Reject(ctx context.Context, actor authn.Actor, userID string) (*MembershipResponse, *serviceerror.ServiceError) {
	if !policy.CanAdministerMembership(actor) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "Only staff can decide membership requests")
	}

	currentTime := utils.GetCurrentTimeMillis()
	entity, existing, svcErr := svc.membershipForDecision(ctx, userID, currentTime)
	if svcErr != nil {
		return nil, svcErr
	}
	entity.Status = authn.MembershipRejected
	entity.UpdatedTime = currentTime

	auditEntry, svcErr := svc.buildAuditEntry(entity, existing, audit.ActionReject, &actor.UserID, currentTime)
	if svcErr != nil {
		return nil, svcErr
	}

	if err := svc.executeUpsert(entity, auditEntry); err != nil {
		svc.logger.Error("Failed to reject membership", log.String("user_id", userID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	return entity.ToResponse(), nil
}

// List retrieves memberships for the staff review screen, optionally
// filtered by status.
func (svc *membershipService) List(ctx context.Context, actor authn.Actor, status authn.MembershipStatus) ([]MembershipResponse, *serviceerror.ServiceError) {
	if !policy.CanAdministerMembership(actor) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "Only staff can list membership requests")
	}

	memberships, err := svc.membershipStore().List(ctx, status)
	if err != nil {
		svc.logger.Error("Failed to list memberships", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	responses := make([]MembershipResponse, 0, len(memberships))
	for i := range memberships {
		responses = append(responses, *memberships[i].ToResponse())
	}
	return responses, nil
}

// membershipForDecision loads the user's membership for an approve/reject
// decision, starting a fresh record when none exists so staff can grant
// membership to users who never filed a request. The second return value is
// the pre-decision record, nil for first-time grants.
func (svc *membershipService) membershipForDecision(ctx context.Context, userID string, currentTime int64) (*Membership, *Membership, *serviceerror.ServiceError) {
	existing, err := svc.membershipStore().GetByUserID(ctx, userID)
	if err != nil {
		svc.logger.Error("Failed to load membership", log.String("user_id", userID), log.Error(err))
		return nil, nil, &serviceerror.DatabaseError
	}
	if existing == nil {
		return &Membership{
			MembershipID: utils.GenerateUUID(),
			UserID:       userID,
			CreatedTime:  currentTime,
			UpdatedTime:  currentTime,
		}, nil, nil
	}
	entity := *existing
	return &entity, existing, nil
}

func (svc *membershipService) buildAuditEntry(entity *Membership, previous *Membership, action string, actorUserID *string, currentTime int64) (*audit.Entry, *serviceerror.ServiceError) {
	after, err := audit.Snapshot(statusSnapshot{Status: entity.Status})
	if err != nil {
		return nil, &serviceerror.InternalServerError
	}

	entry := &audit.Entry{
		AuditID:     utils.GenerateUUID(),
		EntityType:  audit.EntityTypeMembership,
		EntityID:    entity.MembershipID,
		Action:      action,
		ActorUserID: actorUserID,
		After:       after,
		CreatedTime: currentTime,
	}
	if previous != nil {
		before, err := audit.Snapshot(statusSnapshot{Status: previous.Status})
		if err != nil {
			return nil, &serviceerror.InternalServerError
		}
		entry.Before = &before
	}
	return entry, nil
}

func (svc *membershipService) executeUpsert(entity *Membership, auditEntry *audit.Entry) error {
	return svc.stores.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error { return svc.membershipStore().UpsertWithTx(tx, entity) },
		func(tx dbmodel.TxInterface) error { return svc.auditStore().CreateWithTx(tx, auditEntry) },
	})
}
