package serviceerror

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

type ServiceError struct {
	Code             string                 `json:"code"`
	Type             ServiceErrorType       `json:"type"`
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description,omitempty"`
	Details          map[string]interface{} `json:"details,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5000",
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5001",
		Error:            "database_error",
		ErrorDescription: "A database error occurred",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4000",
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4001",
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	InvalidTransitionError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4002",
		Error:            "invalid_transition",
		ErrorDescription: "The requested status transition is not allowed",
	}

	ResourceNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4004",
		Error:            "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	ConflictError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4009",
		Error:            "conflict",
		ErrorDescription: "Request conflicts with current state",
	}

	UnauthenticatedError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4010",
		Error:            "unauthenticated",
		ErrorDescription: "Authentication is required",
	}

	ForbiddenError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4030",
		Error:            "forbidden",
		ErrorDescription: "You are not allowed to perform this action",
	}

	RateLimitedError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4290",
		Error:            "too_many_requests",
		ErrorDescription: "Too many requests, please retry later",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}

// CustomServiceErrorWithDetails attaches field-level details to a base error.
func CustomServiceErrorWithDetails(baseError ServiceError, description string, details map[string]interface{}) *ServiceError {
	e := CustomServiceError(baseError, description)
	e.Details = details
	return e
}
