package utils

import (
	"encoding/json"
	"net/http"

	"github.com/hampstead-on-demand/request-management-api/internal/system/constants"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/apierror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
)

func DecodeJSONBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// SendError writes a ServiceError as an HTTP response with the status code
// implied by its error code.
func SendError(w http.ResponseWriter, err *serviceerror.ServiceError) {
	statusCode := http.StatusInternalServerError
	if err.Type == serviceerror.ClientErrorType {
		switch err.Code {
		case serviceerror.ResourceNotFoundError.Code:
			statusCode = http.StatusNotFound
		case serviceerror.ConflictError.Code:
			statusCode = http.StatusConflict
		case serviceerror.UnauthenticatedError.Code:
			statusCode = http.StatusUnauthorized
		case serviceerror.ForbiddenError.Code:
			statusCode = http.StatusForbidden
		case serviceerror.RateLimitedError.Code:
			statusCode = http.StatusTooManyRequests
		default:
			statusCode = http.StatusBadRequest
		}
	}

	errorResponse := apierror.ErrorResponse{
		Code:        err.Error,
		Description: err.ErrorDescription,
		Details:     err.Details,
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse)
}
