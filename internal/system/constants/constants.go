package constants

const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	UserIDHeaderName        = "X-User-ID"
	ContentTypeJSON         = "application/json"
	ContentTypeCSV          = "text/csv"

	APIBasePath = "/api/v1"

	DefaultPriority = 3
	MinPriority     = 1
	MaxPriority     = 5

	MaxMessageBodyLength = 5000
	MaxAttachments       = 10

	// Aliases for convenience
	HeaderContentType = ContentTypeHeaderName
	HeaderUserID      = UserIDHeaderName
)
