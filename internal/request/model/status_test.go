package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTableIsClosed(t *testing.T) {
	for _, from := range AllStatuses {
		for _, to := range AllowedTargets(from) {
			assert.True(t, to.IsValid(), "transition %s -> %s targets an unknown status", from, to)
		}
	}
}

func TestCompletedIsTheOnlyTerminalStatus(t *testing.T) {
	for _, status := range AllStatuses {
		if status == StatusCompleted {
			assert.True(t, status.IsTerminal())
			continue
		}
		assert.False(t, status.IsTerminal(), "%s must have at least one outgoing transition", status)
	}
}

func TestCancelledReachableFromEveryNonTerminalExceptReopenStates(t *testing.T) {
	for _, status := range AllStatuses {
		switch status {
		case StatusCompleted, StatusCancelled, StatusRejected:
			assert.False(t, CanTransition(status, StatusCancelled))
		default:
			assert.True(t, CanTransition(status, StatusCancelled), "%s must allow cancellation", status)
		}
	}
}

func TestReopenEdges(t *testing.T) {
	assert.Equal(t, []Status{StatusSubmitted}, AllowedTargets(StatusCancelled))
	assert.Equal(t, []Status{StatusSubmitted}, AllowedTargets(StatusRejected))
}

func TestQuoteSentTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusQuoteSent, StatusQuoteAccepted))
	assert.True(t, CanTransition(StatusQuoteSent, StatusQuoting), "staff can withdraw a quote for revision")
	assert.True(t, CanTransition(StatusQuoteSent, StatusRejected), "member reject declines the request")
	assert.False(t, CanTransition(StatusQuoteSent, StatusScheduled))
}

func TestNoSkippingIntoDelivery(t *testing.T) {
	assert.False(t, CanTransition(StatusSubmitted, StatusInProgress))
	assert.False(t, CanTransition(StatusTriaged, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusCompleted, StatusSubmitted))
}

func TestMemberCancellableStopsAtQuoteAcceptance(t *testing.T) {
	cancellable := []Status{
		StatusSubmitted, StatusNeedsInfo, StatusTriaged,
		StatusSiteVisitProposed, StatusSiteVisitBooked,
		StatusQuoting, StatusQuoteSent,
	}
	for _, status := range cancellable {
		assert.True(t, IsMemberCancellable(status), "%s should be member-cancellable", status)
	}
	for _, status := range []Status{
		StatusQuoteAccepted, StatusDepositPaid, StatusScheduled,
		StatusInProgress, StatusAwaitingFinalPayment,
		StatusCompleted, StatusCancelled, StatusRejected,
	} {
		assert.False(t, IsMemberCancellable(status), "%s should not be member-cancellable", status)
	}
}

func TestIsValidRejectsUnknownStatus(t *testing.T) {
	assert.False(t, Status("PENDING").IsValid())
	assert.False(t, Status("").IsValid())
	assert.True(t, StatusDepositPaid.IsValid())
}
