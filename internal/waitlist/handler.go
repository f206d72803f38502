package waitlist

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/utils"
)

type waitlistHandler struct {
	service WaitlistService
}

func newWaitlistHandler(service WaitlistService) *waitlistHandler {
	return &waitlistHandler{
		service: service,
	}
}

// join handles POST /waitlist
func (h *waitlistHandler) join(w http.ResponseWriter, r *http.Request) {
	var req JoinAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid request body"))
		return
	}

	response, serviceErr := h.service.Join(r.Context(), req)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// list handles GET /admin/waitlist, with ?format=csv for export
func (h *waitlistHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := authn.ActorFromContext(ctx)
	if !ok {
		utils.SendError(w, &serviceerror.UnauthenticatedError)
		return
	}

	responses, serviceErr := h.service.List(ctx, actor)
	if serviceErr != nil {
		utils.SendError(w, serviceErr)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		h.writeCSV(w, responses)
		return
	}

	w.Header().Set(constants.HeaderContentType, "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"entries": responses})
}

func (h *waitlistHandler) writeCSV(w http.ResponseWriter, entries []EntryResponse) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeCSV)
	w.Header().Set("Content-Disposition", `attachment; filename="waitlist.csv"`)

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"id", "postcode", "email", "phone", "notes", "created_time"})
	for _, entry := range entries {
		writer.Write([]string{
			entry.EntryID,
			entry.Postcode,
			stringOrEmpty(entry.Email),
			stringOrEmpty(entry.Phone),
			stringOrEmpty(entry.Notes),
			strconv.FormatInt(entry.CreatedTime, 10),
		})
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
