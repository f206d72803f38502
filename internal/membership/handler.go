package membership

import (
	"encoding/json"
	"net/http"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
)

type membershipHandler struct {
	service MembershipService
}

func newMembershipHandler(service MembershipService) *membershipHandler {
	return &membershipHandler{
		service: service,
	}
}

// requestMembership handles POST /memberships
func (h *membershipHandler) requestMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	response, serviceErr := h.service.Request(ctx, actor)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// listMemberships handles GET /admin/memberships
func (h *membershipHandler) listMemberships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	status := authn.MembershipStatus(r.URL.Query().Get("status"))
	responses, serviceErr := h.service.List(ctx, actor, status)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"memberships": responses})
}

// approveMembership handles POST /admin/memberships/{userId}/approve
func (h *membershipHandler) approveMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	response, serviceErr := h.service.Approve(ctx, actor, r.PathValue("userId"))
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(response)
}

// rejectMembership handles POST /admin/memberships/{userId}/reject
func (h *membershipHandler) rejectMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	response, serviceErr := h.service.Reject(ctx, actor, r.PathValue("userId"))
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(response)
}
