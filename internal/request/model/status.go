package model

// Status is a service request's lifecycle status.
type Status string

const (
	StatusSubmitted            Status = "SUBMITTED"
	StatusNeedsInfo            Status = "NEEDS_INFO"
	StatusTriaged              Status = "TRIAGED"
	StatusSiteVisitProposed    Status = "SITE_VISIT_PROPOSED"
	StatusSiteVisitBooked      Status = "SITE_VISIT_BOOKED"
	StatusQuoting              Status = "QUOTING"
	StatusQuoteSent            Status = "QUOTE_SENT"
	StatusQuoteAccepted        Status = "QUOTE_ACCEPTED"
	StatusDepositPaid          Status = "DEPOSIT_PAID"
	StatusScheduled            Status = "SCHEDULED"
	StatusInProgress           Status = "IN_PROGRESS"
	StatusAwaitingFinalPayment Status = "AWAITING_FINAL_PAYMENT"
	StatusCompleted            Status = "COMPLETED"
	StatusCancelled            Status = "CANCELLED"
	StatusRejected             Status = "REJECTED"
)

// AllStatuses lists every request status.
var AllStatuses = []Status{
	StatusSubmitted,
	StatusNeedsInfo,
	StatusTriaged,
	StatusSiteVisitProposed,
	StatusSiteVisitBooked,
	StatusQuoting,
	StatusQuoteSent,
	StatusQuoteAccepted,
	StatusDepositPaid,
	StatusScheduled,
	StatusInProgress,
	StatusAwaitingFinalPayment,
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
}

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// statusTransitions is the fixed graph of legal status changes. CANCELLED is
// reachable from every non-terminal state; COMPLETED is the only terminal
// sink; CANCELLED/REJECTED can only reopen to SUBMITTED.
var statusTransitions = map[Status][]Status{
	StatusSubmitted:            {StatusNeedsInfo, StatusTriaged, StatusRejected, StatusCancelled},
	StatusNeedsInfo:            {StatusSubmitted, StatusTriaged, StatusCancelled},
	StatusTriaged:              {StatusSiteVisitProposed, StatusQuoting, StatusRejected, StatusCancelled},
	StatusSiteVisitProposed:    {StatusSiteVisitBooked, StatusQuoting, StatusCancelled},
	StatusSiteVisitBooked:      {StatusQuoting, StatusCancelled},
	StatusQuoting:              {StatusQuoteSent, StatusCancelled},
	StatusQuoteSent:            {StatusQuoteAccepted, StatusQuoting, StatusRejected, StatusCancelled},
	StatusQuoteAccepted:        {StatusDepositPaid, StatusScheduled, StatusCancelled},
	StatusDepositPaid:          {StatusScheduled, StatusCancelled},
	StatusScheduled:            {StatusInProgress, StatusCancelled},
	StatusInProgress:           {StatusAwaitingFinalPayment, StatusCompleted, StatusCancelled},
	StatusAwaitingFinalPayment: {StatusCompleted, StatusCancelled},
	StatusCompleted:            {},
	StatusCancelled:            {StatusSubmitted},
	StatusRejected:             {StatusSubmitted},
}

// AllowedTargets returns the set of statuses reachable from the given
// status. The returned slice must not be mutated.
func AllowedTargets(from Status) []Status {
	return statusTransitions[from]
}

// CanTransition reports whether the (from, to) edge is in the transition
// table.
func CanTransition(from, to Status) bool {
	for _, target := range statusTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// memberCancellable holds the statuses before a binding financial or
// scheduling commitment, from which a household member may cancel.
var memberCancellable = map[Status]bool{
	StatusSubmitted:         true,
	StatusNeedsInfo:         true,
	StatusTriaged:           true,
	StatusSiteVisitProposed: true,
	StatusSiteVisitBooked:   true,
	StatusQuoting:           true,
	StatusQuoteSent:         true,
}

// IsMemberCancellable reports whether a household member may still cancel a
// request in this status.
func IsMemberCancellable(s Status) bool {
	return memberCancellable[s]
}

// IsTerminal reports whether no transition leaves this status.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}
