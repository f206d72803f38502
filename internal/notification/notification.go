// Package notification dispatches best-effort member emails. Dispatch never
// blocks the caller and never surfaces failures; a lost email must not fail
// the mutation that triggered it.
package notification

import "context"

// Kind selects the message template.
type Kind string

const (
	KindStatusChanged      Kind = "status_changed"
	KindQuoteSent          Kind = "quote_sent"
	KindQuoteResponse      Kind = "quote_response"
	KindRequestCancelled   Kind = "request_cancelled"
	KindMembershipApproved Kind = "membership_approved"
	KindAdminReply         Kind = "admin_reply"
)

// Payload carries the template variables for one notification.
type Payload map[string]string

// Notifier dispatches a notification of the given kind to a recipient email
// address. Implementations must be fire-and-forget.
type Notifier interface {
	Dispatch(ctx context.Context, kind Kind, recipient string, payload Payload)
}
