package message

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/household"
	"github.com/hampstead-on-demand/request-management-api/internal/notification"
	"github.com/hampstead-on-demand/request-management-api/internal/policy"
	"github.com/hampstead-on-demand/request-management-api/internal/request"
	reqmodel "github.com/hampstead-on-demand/request-management-api/internal/request/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
	"github.com/hampstead-on-demand/request-management-api/internal/user"
)

// MessageService defines the exported service interface for request
// conversations.
type MessageService interface {
	List(ctx context.Context, actor authn.Actor, requestID string) ([]MessageResponse, *serviceerror.ServiceError)
	Post(ctx context.Context, actor authn.Actor, requestID string, req PostAPIRequest) (*MessageResponse, *serviceerror.ServiceError)
}

type messageService struct {
	stores   *stores.StoreRegistry
	notifier notification.Notifier
	logger   *log.Logger
}

func newMessageService(registry *stores.StoreRegistry, notifier notification.Notifier) MessageService {
	return &messageService{
		stores:   registry,
		notifier: notifier,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "MessageService")),
	}
}

func (svc *messageService) messageStore() MessageStore {
	return svc.stores.Message.(MessageStore)
}

func (svc *messageService) requestStore() request.RequestStore {
	return svc.stores.Request.(request.RequestStore)
}

func (svc *messageService) householdStore() household.HouseholdStore {
	return svc.stores.Household.(household.HouseholdStore)
}

func (svc *messageService) userStore() user.UserStore {
	return svc.stores.User.(user.UserStore)
}

// List retrieves the request's conversation, creating the thread on first
// access.
func (svc *messageService) List(ctx context.Context, actor authn.Actor, requestID string) ([]MessageResponse, *serviceerror.ServiceError) {
	entity, svcErr := svc.authorizedRequest(ctx, actor, requestID)
	if svcErr != nil {
		return nil, svcErr
	}

	thread, svcErr := svc.getOrCreateThread(ctx, entity.RequestID)
	if svcErr != nil {
		return nil, svcErr
	}

	messages, err := svc.messageStore().ListMessages(ctx, thread.ThreadID)
	if err != nil {
		svc.logger.Error("Failed to list messages", log.String("thread_id", thread.ThreadID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	responses := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, *toResponse(&messages[i]))
	}
	return responses, nil
}

// Post appends a message to the request's conversation. Staff replies send
// a best-effort email to the request's creator.
func (svc *messageService) Post(ctx context.Context, actor authn.Actor, requestID string, req PostAPIRequest) (*MessageResponse, *serviceerror.ServiceError) {
	if req.Body == "" && len(req.Attachments) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "A message body or attachments are required")
	}
	if len(req.Body) > constants.MaxMessageBodyLength {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("Message body exceeds %d characters", constants.MaxMessageBodyLength))
	}
	if len(req.Attachments) > constants.MaxAttachments {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("At most %d attachments are allowed", constants.MaxAttachments))
	}

	entity, svcErr := svc.authorizedRequest(ctx, actor, requestID)
	if svcErr != nil {
		return nil, svcErr
	}

	thread, svcErr := svc.getOrCreateThread(ctx, entity.RequestID)
	if svcErr != nil {
		return nil, svcErr
	}

	attachments, err := json.Marshal(req.Attachments)
	if err != nil {
		return nil, &serviceerror.InternalServerError
	}

	msg := &Message{
		MessageID:    utils.GenerateUUID(),
		ThreadID:     thread.ThreadID,
		SenderUserID: actor.UserID,
		Body:         req.Body,
		Attachments:  string(attachments),
		CreatedTime:  utils.GetCurrentTimeMillis(),
	}
	if err := svc.messageStore().CreateMessage(ctx, msg); err != nil {
		svc.logger.Error("Failed to create message", log.String("thread_id", thread.ThreadID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	if actor.Role.IsStaff() {
		svc.notifyCreator(ctx, entity)
	}

	return toResponse(msg), nil
}

func (svc *messageService) authorizedRequest(ctx context.Context, actor authn.Actor, requestID string) (*reqmodel.Request, *serviceerror.ServiceError) {
	entity, err := svc.requestStore().GetByID(ctx, requestID)
	if err != nil {
		svc.logger.Error("Failed to load request", log.String("request_id", requestID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if entity == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Request not found")
	}

	isMember, err := svc.householdStore().IsMember(ctx, entity.HouseholdID, actor.UserID)
	if err != nil {
		svc.logger.Error("Failed to check household membership", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if !policy.CanViewRequest(actor, isMember) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, "You do not have access to this request")
	}
	return entity, nil
}

func (svc *messageService) getOrCreateThread(ctx context.Context, requestID string) (*Thread, *serviceerror.ServiceError) {
	thread, err := svc.messageStore().GetThreadByRequestID(ctx, requestID)
	if err != nil {
		svc.logger.Error("Failed to load thread", log.String("request_id", requestID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if thread != nil {
		return thread, nil
	}

	thread = &Thread{
		ThreadID:    utils.GenerateUUID(),
		RequestID:   requestID,
		CreatedTime: utils.GetCurrentTimeMillis(),
	}
	if err := svc.messageStore().CreateThread(ctx, thread); err != nil {
		svc.logger.Error("Failed to create thread", log.String("request_id", requestID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return thread, nil
}

func (svc *messageService) notifyCreator(ctx context.Context, entity *reqmodel.Request) {
	creator, err := svc.userStore().GetByID(ctx, entity.CreatedByUserID)
	if err != nil || creator == nil {
		svc.logger.Warn("Could not resolve reply recipient", log.String("request_id", entity.RequestID))
		return
	}
	svc.notifier.Dispatch(ctx, notification.KindAdminReply, creator.Email, notification.Payload{
		"requestId": entity.RequestID,
	})
}

func toResponse(m *Message) *MessageResponse {
	var attachments []string
	if m.Attachments != "" {
		// Stored as JSON; a malformed value degrades to no attachments.
		_ = json.Unmarshal([]byte(m.Attachments), &attachments)
	}
	return &MessageResponse{
		MessageID:    m.MessageID,
		SenderUserID: m.SenderUserID,
		Body:         m.Body,
		Attachments:  attachments,
		CreatedTime:  m.CreatedTime,
	}
}
