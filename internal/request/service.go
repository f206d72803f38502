package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hampstead-on-demand/request-management-api/internal/audit"
	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/household"
	"github.com/hampstead-on-demand/request-management-api/internal/notification"
	"github.com/hampstead-on-demand/request-management-api/internal/policy"
	"github.com/hampstead-on-demand/request-management-api/internal/request/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/config"
	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
	"github.com/hampstead-on-demand/request-management-api/internal/user"
)

// RequestService defines the exported service interface for the request
// lifecycle.
type RequestService interface {
	CreateRequest(ctx context.Context, actor authn.Actor, req model.CreateAPIRequest) (*model.RequestResponse, *serviceerror.ServiceError)
	Get(ctx context.Context, actor authn.Actor, requestID string) (*model.RequestDetailResponse, *serviceerror.ServiceError)
	ListForActor(ctx context.Context, actor authn.Actor) ([]model.RequestResponse, *serviceerror.ServiceError)
	ChangeStatus(ctx context.Context, actor authn.Actor, requestID string, req model.StatusChangeAPIRequest) (*model.RequestResponse, *serviceerror.ServiceError)
	Assign(ctx context.Context, actor authn.Actor, requestID string, req model.AssignAPIRequest) (*model.RequestResponse, *serviceerror.ServiceError)
	RespondToQuote(ctx context.Context, actor authn.Actor, requestID string, req model.QuoteResponseAPIRequest) (*model.RequestResponse, *serviceerror.ServiceError)
	Cancel(ctx context.Context, actor authn.Actor, requestID string) (*model.RequestResponse, *serviceerror.ServiceError)
}

// statusSnapshot is the audit payload for lifecycle transitions.
type statusSnapshot struct {
	Status      model.Status `json:"status"`
	Note        string       `json:"note,omitempty"`
	CancelledBy string       `json:"cancelledBy,omitempty"`
}

// assignmentSnapshot is the audit payload for assignment changes.
type assignmentSnapshot struct {
	AssignedTeam *model.Team `json:"assignedTeam"`
	Priority     int         `json:"priority"`
}

type requestService struct {
	stores   *stores.StoreRegistry
	notifier notification.Notifier
	logger   *log.Logger
}

func newRequestService(registry *stores.StoreRegistry, notifier notification.Notifier) RequestService {
	return &requestService{
		stores:   registry,
		notifier: notifier,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RequestService")),
	}
}

func (svc *requestService) requestStore() RequestStore {
	return svc.stores.Request.(RequestStore)
}

func (svc *requestService) householdStore() household.HouseholdStore {
	return svc.stores.Household.(household.HouseholdStore)
}

func (svc *requestService) auditStore() audit.AuditStore {
	return svc.stores.Audit.(audit.AuditStore)
}

func (svc *requestService) userStore() user.UserStore {
	return svc.stores.User.(user.UserStore)
}

// CreateRequest creates a new service request for the actor's household,
// creating the household on first use. Requires an active membership and an
// address inside the service area.
func (svc *requestService) CreateRequest(ctx context.Context, actor authn.Actor, req model.CreateAPIRequest) (*model.RequestResponse, *serviceerror.ServiceError) {
	if !policy.CanSubmitRequest(actor) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "An active membership is required to submit requests")
	}

	if details, err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), details)
	}

	category := model.Category(req.Category)
	if !category.IsValid() {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, fmt.Sprintf("Unknown category %q", req.Category))
	}

	if !config.Get().ServiceArea.IsPostcodeAllowed(req.Postcode) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "This address is outside the current service area")
	}

	currentTime := utils.GetCurrentTimeMillis()

	householdIDs, err := svc.householdStore().HouseholdIDsForUser(ctx, actor.UserID)
	if err != nil {
		svc.logger.Error("Failed to resolve households", log.String("user_id", actor.UserID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	var householdID string
	var newHousehold *household.Household
	if len(householdIDs) > 0 {
		householdID = householdIDs[0]
	} else {
		householdID = utils.GenerateUUID()
		newHousehold = &household.Household{
			HouseholdID: householdID,
			Name:        actor.Email,
			Postcode:    req.Postcode,
			CreatedTime: currentTime,
		}
	}

	entity := &model.Request{
		RequestID:       utils.GenerateUUID(),
		HouseholdID:     householdID,
		CreatedByUserID: actor.UserID,
		Category:        category,
		Description:     req.Description,
		Status:          model.StatusSubmitted,
		Priority:        constants.DefaultPriority,
		CreatedTime:     currentTime,
		UpdatedTime:     currentTime,
	}
	if req.Subcategory != "" {
		entity.Subcategory = &req.Subcategory
	}
	if req.Urgency != "" {
		entity.Urgency = &req.Urgency
	}

	answers := make([]model.Answer, 0, len(req.Answers))
	for key, value := range req.Answers {
		serialized, marshalErr := json.Marshal(value)
		if marshalErr != nil {
			return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, fmt.Sprintf("Answer %q is not serializable", key))
		}
		answers = append(answers, model.Answer{
			AnswerID:    utils.GenerateUUID(),
			RequestID:   entity.RequestID,
			QuestionKey: key,
			Value:       string(serialized),
		})
	}

	after, snapErr := audit.Snapshot(statusSnapshot{Status: entity.Status})
	if snapErr != nil {
		return nil, &serviceerror.InternalServerError
	}
	auditEntry := &audit.Entry{
		AuditID:     utils.GenerateUUID(),
		EntityType:  audit.EntityTypeRequest,
		EntityID:    entity.RequestID,
		Action:      audit.ActionCreate,
		ActorUserID: &actor.UserID,
		After:       after,
		CreatedTime: currentTime,
	}

	queries := make([]func(tx dbmodel.TxInterface) error, 0, 4)
	if newHousehold != nil {
		member := &household.Member{
			HouseholdID: householdID,
			UserID:      actor.UserID,
			Role:        household.MemberRoleOwner,
			CanPay:      true,
			CreatedTime: currentTime,
		}
		queries = append(queries,
			func(tx dbmodel.TxInterface) error { return svc.householdStore().CreateWithTx(tx, newHousehold) },
			func(tx dbmodel.TxInterface) error { return svc.householdStore().AddMemberWithTx(tx, member) },
		)
	}
	queries = append(queries,
		func(tx dbmodel.TxInterface) error { return svc.requestStore().CreateWithTx(tx, entity) },
		func(tx dbmodel.TxInterface) error { return svc.requestStore().CreateAnswersWithTx(tx, answers) },
		func(tx dbmodel.TxInterface) error { return svc.auditStore().CreateWithTx(tx, auditEntry) },
	)

	if err := svc.stores.ExecuteTransaction(queries); err != nil {
		svc.logger.Error("Failed to create request", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	return entity.ToResponse(), nil
}

// Get retrieves a single request with its intake answers.
func (svc *requestService) Get(ctx context.Context, actor authn.Actor, requestID string) (*model.RequestDetailResponse, *serviceerror.ServiceError) {
	entity, svcErr := svc.loadRequest(ctx, requestID)
	if svcErr != nil {
		return nil, svcErr
	}

	isMember, svcErr := svc.isHouseholdMember(ctx, entity.HouseholdID, actor)
	if svcErr != nil {
		return nil, svcErr
	}
	if !policy.CanViewRequest(actor, isMember) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "You do not have access to this request")
	}

	answers, err := svc.requestStore().GetAnswers(ctx, requestID)
	if err != nil {
		svc.logger.Error("Failed to load answers", log.String("request_id", requestID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	detail := &model.RequestDetailResponse{
		RequestResponse: *entity.ToResponse(),
		Answers:         make([]model.AnswerResponse, 0, len(answers)),
	}
	for _, answer := range answers {
		detail.Answers = append(detail.Answers, model.AnswerResponse{
			QuestionKey: answer.QuestionKey,
			Value:       json.RawMessage(answer.Value),
		})
	}
	return detail, nil
}

// ListForActor lists every request for staff, and the actor's households'
// requests for members.
func (svc *requestService) ListForActor(ctx context.Context, actor authn.Actor) ([]model.RequestResponse, *serviceerror.ServiceError) {
	var (
		entities []model.Request
		err      error
	)
	if actor.Role.IsStaff() {
		entities, err = svc.requestStore().ListAll(ctx)
	} else {
		var householdIDs []string
		householdIDs, err = svc.householdStore().HouseholdIDsForUser(ctx, actor.UserID)
		if err == nil {
			entities, err = svc.requestStore().ListByHouseholds(ctx, householdIDs)
		}
	}
	if err != nil {
		svc.logger.Error("Failed to list requests", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	responses := make([]model.RequestResponse, 0, len(entities))
	for i := range entities {
		responses = append(responses, *entities[i].ToResponse())
	}
	return responses, nil
}

// ChangeStatus moves a request along the lifecycle graph. Staff-only; the
// transition must be an edge of the fixed table.
func (svc *requestService) ChangeStatus(ctx context.Context, actor authn.Actor, requestID string, req model.StatusChangeAPIRequest) (*model.RequestResponse, *serviceerror.ServiceError) {
	if !policy.CanChangeStatus(actor) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "Only staff can change request status")
	}

	if details, err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), details)
	}

	target := model.Status(req.Status)
	if !target.IsValid() {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, fmt.Sprintf("Unknown status %q", req.Status))
	}

	entity, svcErr := svc.loadRequest(ctx, requestID)
	if svcErr != nil {
		return nil, svcErr
	}

	if !model.CanTransition(entity.Status, target) {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError,
			fmt.Sprintf("Cannot transition from %s to %s; allowed targets: %s",
				entity.Status, target, formatTargets(model.AllowedTargets(entity.Status))))
	}

	updated, svcErr := svc.applyTransition(ctx, entity, target, audit.ActionStatusChange, statusSnapshot{Status: target, Note: req.Note}, &actor.UserID)
	if svcErr != nil {
		return nil, svcErr
	}

	svc.notifyCreator(ctx, updated, notificationKindForStatus(target), notification.Payload{
		"requestId":      updated.RequestID,
		"category":       string(updated.Category),
		"previousStatus": string(entity.Status),
		"status":         string(target),
	})

	return updated.ToResponse(), nil
}

// Assign updates team assignment and/or priority. Staff-only; at least one
// of the two fields must be present.
func (svc *requestService) Assign(ctx context.Context, actor authn.Actor, requestID string, req model.AssignAPIRequest) (*model.RequestResponse, *serviceerror.ServiceError) {
	if !policy.CanAssign(actor) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "Only staff can assign requests")
	}

	if req.AssignedTeam == nil && req.Priority == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "At least one of assignedTeam or priority is required")
	}

	entity, svcErr := svc.loadRequest(ctx, requestID)
	if svcErr != nil {
		return nil, svcErr
	}

	newTeam := entity.AssignedTeam
	if req.AssignedTeam != nil {
		if *req.AssignedTeam == model.TeamUnassigned {
			newTeam = nil
		} else {
			team := model.Team(*req.AssignedTeam)
			if !team.IsValid() {
				return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, fmt.Sprintf("Unknown team %q", *req.AssignedTeam))
			}
			newTeam = &team
		}
	}

	newPriority := entity.Priority
	if req.Priority != nil {
		if *req.Priority < constants.MinPriority || *req.Priority > constants.MaxPriority {
			return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
				fmt.Sprintf("Priority must be between %d and %d", constants.MinPriority, constants.MaxPriority))
		}
		newPriority = *req.Priority
	}

	before, beforeErr := audit.Snapshot(assignmentSnapshot{AssignedTeam: entity.AssignedTeam, Priority: entity.Priority})
	after, afterErr := audit.Snapshot(assignmentSnapshot{AssignedTeam: newTeam, Priority: newPriority})
	if beforeErr != nil || afterErr != nil {
		return nil, &serviceerror.InternalServerError
	}

	currentTime := utils.GetCurrentTimeMillis()
	auditEntry := &audit.Entry{
		AuditID:     utils.GenerateUUID(),
		EntityType:  audit.EntityTypeRequest,
		EntityID:    entity.RequestID,
		Action:      audit.ActionAssignmentChange,
		ActorUserID: &actor.UserID,
		Before:      &before,
		After:       after,
		CreatedTime: currentTime,
	}

	err := svc.stores.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return svc.requestStore().UpdateAssignmentWithTx(tx, entity.RequestID, newTeam, newPriority, currentTime)
		},
		func(tx dbmodel.TxInterface) error { return svc.auditStore().CreateWithTx(tx, auditEntry) },
	})
	if err != nil {
		svc.logger.Error("Failed to update assignment", log.String("request_id", requestID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	entity.AssignedTeam = newTeam
	entity.Priority = newPriority
	entity.UpdatedTime = currentTime
	return entity.ToResponse(), nil
}

// RespondToQuote records the member's decision on a sent quote. Accepting
// moves the request to QUOTE_ACCEPTED; rejecting declines it to REJECTED.
func (svc *requestService) RespondToQuote(ctx context.Context, actor authn.Actor, requestID string, req model.QuoteResponseAPIRequest) (*model.RequestResponse, *serviceerror.ServiceError) {
	if details, err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), details)
	}

	entity, svcErr := svc.loadRequest(ctx, requestID)
	if svcErr != nil {
		return nil, svcErr
	}

	isMember, svcErr := svc.isHouseholdMember(ctx, entity.HouseholdID, actor)
	if svcErr != nil {
		return nil, svcErr
	}
	if !policy.CanRespondToQuote(actor, isMember) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "Only the request's household can respond to its quote")
	}

	if entity.Status != model.StatusQuoteSent {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError, "Request has no quote awaiting a response")
	}

	target := model.StatusQuoteAccepted
	action := audit.ActionQuoteAccepted
	if req.Action == model.QuoteActionReject {
		target = model.StatusRejected
		action = audit.ActionQuoteRejected
	}

	updated, svcErr := svc.applyTransition(ctx, entity, target, action, statusSnapshot{Status: target, Note: req.Note}, &actor.UserID)
	if svcErr != nil {
		return nil, svcErr
	}

	svc.notifyStaff(ctx, notification.KindQuoteResponse, notification.Payload{
		"requestId": updated.RequestID,
		"action":    req.Action + "ed",
	})

	return updated.ToResponse(), nil
}

// Cancel lets a household member cancel their own request while it is still
// in the pre-commitment window.
func (svc *requestService) Cancel(ctx context.Context, actor authn.Actor, requestID string) (*model.RequestResponse, *serviceerror.ServiceError) {
	entity, svcErr := svc.loadRequest(ctx, requestID)
	if svcErr != nil {
		return nil, svcErr
	}

	isMember, svcErr := svc.isHouseholdMember(ctx, entity.HouseholdID, actor)
	if svcErr != nil {
		return nil, svcErr
	}
	if !isMember {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "Only the request's household can cancel it")
	}
	if !policy.CanCancelOwnRequest(actor, isMember, entity.Status) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError,
			fmt.Sprintf("Requests in status %s can no longer be cancelled by members", entity.Status))
	}

	snapshot := statusSnapshot{Status: model.StatusCancelled, CancelledBy: "member"}
	updated, svcErr := svc.applyTransition(ctx, entity, model.StatusCancelled, audit.ActionStatusChange, snapshot, &actor.UserID)
	if svcErr != nil {
		return nil, svcErr
	}

	svc.notifyStaff(ctx, notification.KindRequestCancelled, notification.Payload{
		"requestId": updated.RequestID,
		"category":  string(updated.Category),
	})

	return updated.ToResponse(), nil
}

// applyTransition performs the conditional status update and the audit
// insert in one transaction. A concurrent move surfaces as a conflict.
func (svc *requestService) applyTransition(ctx context.Context, entity *model.Request, target model.Status, action string, after statusSnapshot, actorUserID *string) (*model.Request, *serviceerror.ServiceError) {
	before, beforeErr := audit.Snapshot(statusSnapshot{Status: entity.Status})
	afterJSON, afterErr := audit.Snapshot(after)
	if beforeErr != nil || afterErr != nil {
		return nil, &serviceerror.InternalServerError
	}

	currentTime := utils.GetCurrentTimeMillis()
	auditEntry := &audit.Entry{
		AuditID:     utils.GenerateUUID(),
		EntityType:  audit.EntityTypeRequest,
		EntityID:    entity.RequestID,
		Action:      action,
		ActorUserID: actorUserID,
		Before:      &before,
		After:       afterJSON,
		CreatedTime: currentTime,
	}

	err := svc.stores.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return svc.requestStore().UpdateStatusWithTx(tx, entity.RequestID, entity.Status, target, currentTime)
		},
		func(tx dbmodel.TxInterface) error { return svc.auditStore().CreateWithTx(tx, auditEntry) },
	})
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, serviceerror.CustomServiceError(serviceerror.ConflictError, "Request status changed, please reload and retry")
		}
		svc.logger.Error("Failed to apply transition",
			log.String("request_id", entity.RequestID),
			log.String("target_status", string(target)),
			log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	updated := *entity
	updated.Status = target
	updated.UpdatedTime = currentTime
	return &updated, nil
}

func (svc *requestService) loadRequest(ctx context.Context, requestID string) (*model.Request, *serviceerror.ServiceError) {
	entity, err := svc.requestStore().GetByID(ctx, requestID)
	if err != nil {
		svc.logger.Error("Failed to load request", log.String("request_id", requestID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if entity == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Request not found")
	}
	return entity, nil
}

func (svc *requestService) isHouseholdMember(ctx context.Context, householdID string, actor authn.Actor) (bool, *serviceerror.ServiceError) {
	isMember, err := svc.householdStore().IsMember(ctx, householdID, actor.UserID)
	if err != nil {
		svc.logger.Error("Failed to check household membership",
			log.String("household_id", householdID),
			log.String("user_id", actor.UserID),
			log.Error(err))
		return false, &serviceerror.DatabaseError
	}
	return isMember, nil
}

// notifyCreator dispatches a best-effort email to the request's creator.
// Lookup failures are logged and swallowed like send failures.
func (svc *requestService) notifyCreator(ctx context.Context, entity *model.Request, kind notification.Kind, payload notification.Payload) {
	creator, err := svc.userStore().GetByID(ctx, entity.CreatedByUserID)
	if err != nil || creator == nil {
		svc.logger.Warn("Could not resolve notification recipient",
			log.String("request_id", entity.RequestID),
			log.String("user_id", entity.CreatedByUserID))
		return
	}
	svc.notifier.Dispatch(ctx, kind, creator.Email, payload)
}

// notifyStaff dispatches a best-effort email to every staff account.
func (svc *requestService) notifyStaff(ctx context.Context, kind notification.Kind, payload notification.Payload) {
	emails, err := svc.userStore().ListStaffEmails(ctx)
	if err != nil {
		svc.logger.Warn("Could not resolve staff recipients", log.Error(err))
		return
	}
	for _, email := range emails {
		svc.notifier.Dispatch(ctx, kind, email, payload)
	}
}

func formatTargets(targets []model.Status) string {
	if len(targets) == 0 {
		return "none"
	}
	parts := make([]string, len(targets))
	for i, target := range targets {
		parts[i] = string(target)
	}
	return strings.Join(parts, ", ")
}

func notificationKindForStatus(to model.Status) notification.Kind {
	if to == model.StatusQuoteSent {
		return notification.KindQuoteSent
	}
	return notification.KindStatusChanged
}
