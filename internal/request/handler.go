package request

import (
	"encoding/json"
	"net/http"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/request/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
)

type requestHandler struct {
	service RequestService
}

func newRequestHandler(service RequestService) *requestHandler {
	return &requestHandler{
		service: service,
	}
}

// createRequest handles POST /requests
func (h *requestHandler) createRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	var req model.CreateAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid request body"))
		return
	}

	response, serviceErr := h.service.CreateRequest(ctx, actor, req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// getRequest handles GET /requests/{requestId}
func (h *requestHandler) getRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	response, serviceErr := h.service.Get(ctx, actor, r.PathValue("requestId"))
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(response)
}

// listRequests handles GET /requests
func (h *requestHandler) listRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	responses, serviceErr := h.service.ListForActor(ctx, actor)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"requests": responses})
}

// changeStatus handles POST /requests/{requestId}/status
func (h *requestHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	var req model.StatusChangeAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid request body"))
		return
	}

	response, serviceErr := h.service.ChangeStatus(ctx, actor, r.PathValue("requestId"), req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(response)
}

// assign handles POST /requests/{requestId}/assign
func (h *requestHandler) assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	var req model.AssignAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid request body"))
		return
	}

	response, serviceErr := h.service.Assign(ctx, actor, r.PathValue("requestId"), req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(response)
}

// respondToQuote handles POST /requests/{requestId}/quote-response
func (h *requestHandler) respondToQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	var req model.QuoteResponseAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid request body"))
		return
	}

	response, serviceErr := h.service.RespondToQuote(ctx, actor, r.PathValue("requestId"), req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(response)
}

// cancel handles POST /requests/{requestId}/cancel
func (h *requestHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	response, serviceErr := h.service.Cancel(ctx, actor, r.PathValue("requestId"))
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(response)
}
