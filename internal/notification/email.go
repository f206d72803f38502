package notification

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/hampstead-on-demand/request-management-api/internal/system/config"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
)

type emailNotifier struct {
	cfg    config.EmailConfig
	logger *log.Logger
}

// NewEmailNotifier creates the SMTP-backed notifier. When the email channel
// is disabled in configuration, dispatches become logged no-ops.
func NewEmailNotifier(cfg config.EmailConfig) Notifier {
	return &emailNotifier{
		cfg:    cfg,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "EmailNotifier")),
	}
}

// Dispatch sends the email on a detached goroutine. Failures are logged and
// swallowed.
func (n *emailNotifier) Dispatch(ctx context.Context, kind Kind, recipient string, payload Payload) {
	if !n.cfg.Enabled {
		n.logger.Debug("Email channel disabled, skipping notification",
			log.String("kind", string(kind)), log.String("recipient", recipient))
		return
	}
	if recipient == "" {
		n.logger.Warn("Notification has no recipient", log.String("kind", string(kind)))
		return
	}

	subject, body := n.render(kind, payload)

	go func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", n.cfg.From)
		msg.SetHeader("To", recipient)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/plain", body)

		dialer := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
		if err := dialer.DialAndSend(msg); err != nil {
			n.logger.Error("Failed to send notification email",
				log.String("kind", string(kind)),
				log.String("recipient", recipient),
				log.Error(err))
		}
	}()
}

func (n *emailNotifier) render(kind Kind, payload Payload) (subject, body string) {
	requestLink := fmt.Sprintf("%s/requests/%s", n.cfg.AppURL, payload["requestId"])

	switch kind {
	case KindStatusChanged:
		subject = fmt.Sprintf("Your request is now %s", payload["status"])
		body = fmt.Sprintf(
			"The status of your %s request changed from %s to %s.\n\nView it here: %s\n",
			payload["category"], payload["previousStatus"], payload["status"], requestLink)
	case KindQuoteSent:
		subject = "Your quote is ready"
		body = fmt.Sprintf(
			"We have prepared a quote for your %s request. Please review and respond.\n\nView it here: %s\n",
			payload["category"], requestLink)
	case KindQuoteResponse:
		subject = fmt.Sprintf("Quote %s for request %s", payload["action"], payload["requestId"])
		body = fmt.Sprintf(
			"The member has %s the quote on request %s.\n\nView it here: %s\n",
			payload["action"], payload["requestId"], requestLink)
	case KindRequestCancelled:
		subject = fmt.Sprintf("Request %s cancelled by member", payload["requestId"])
		body = fmt.Sprintf(
			"The member has cancelled their %s request.\n\nView it here: %s\n",
			payload["category"], requestLink)
	case KindMembershipApproved:
		subject = "Welcome to Hampstead On Demand"
		body = fmt.Sprintf(
			"Your membership has been approved. You can now submit service requests.\n\nGet started: %s/requests\n",
			n.cfg.AppURL)
	case KindAdminReply:
		subject = "New reply on your request"
		body = fmt.Sprintf(
			"Our team has replied on your request.\n\nRead it here: %s\n", requestLink)
	default:
		subject = "Hampstead On Demand notification"
		body = fmt.Sprintf("You have a new notification.\n\n%s\n", n.cfg.AppURL)
	}
	return subject, body
}
