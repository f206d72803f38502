package message

import (
	"encoding/json"
	"net/http"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
)

type messageHandler struct {
	service MessageService
}

func newMessageHandler(service MessageService) *messageHandler {
	return &messageHandler{
		service: service,
	}
}

// listMessages handles GET /requests/{requestId}/messages
func (h *messageHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	responses, serviceErr := h.service.List(ctx, actor, r.PathValue("requestId"))
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"messages": responses})
}

// postMessage handles POST /requests/{requestId}/messages
func (h *messageHandler) postMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	var req PostAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid request body"))
		return
	}

	response, serviceErr := h.service.Post(ctx, actor, r.PathValue("requestId"), req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}
