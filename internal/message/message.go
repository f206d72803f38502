// Package message implements the per-request conversation between the
// household and staff. Threads are created lazily on first access.
package message

// Thread is the zero-or-one conversation attached to a request.
type Thread struct {
	ThreadID    string
	RequestID   string
	CreatedTime int64
}

// Message is one entry in a thread. Attachments holds a JSON array of
// attachment URLs.
type Message struct {
	MessageID    string
	ThreadID     string
	SenderUserID string
	Body         string
	Attachments  string
	CreatedTime  int64
}

// PostAPIRequest is the wire payload for posting a message. Either a body
// or at least one attachment is required.
type PostAPIRequest struct {
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}

// MessageResponse is the API representation of a message.
type MessageResponse struct {
	MessageID    string   `json:"id"`
	SenderUserID string   `json:"senderUserId"`
	Body         string   `json:"body"`
	Attachments  []string `json:"attachments,omitempty"`
	CreatedTime  int64    `json:"createdTime"`
}
