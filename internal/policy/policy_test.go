package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/request/model"
)

func TestCanViewRequest(t *testing.T) {
	member := authn.Actor{Role: authn.RoleMember, MembershipStatus: authn.MembershipActive}
	admin := authn.Actor{Role: authn.RoleAdmin}
	ops := authn.Actor{Role: authn.RoleOpsStaff}

	assert.True(t, CanViewRequest(admin, false), "admin sees any request")
	assert.True(t, CanViewRequest(ops, false), "ops staff sees any request")
	assert.True(t, CanViewRequest(member, true), "member sees own household's request")
	assert.False(t, CanViewRequest(member, false), "member cannot see other households")
}

func TestCanSubmitRequest(t *testing.T) {
	assert.True(t, CanSubmitRequest(authn.Actor{Role: authn.RoleMember, MembershipStatus: authn.MembershipActive}))

	for _, status := range []authn.MembershipStatus{
		authn.MembershipNone,
		authn.MembershipPending,
		authn.MembershipSuspended,
		authn.MembershipRejected,
	} {
		assert.False(t, CanSubmitRequest(authn.Actor{Role: authn.RoleMember, MembershipStatus: status}),
			"membership status %q must not submit", status)
	}

	// Role does not substitute for an active membership.
	assert.False(t, CanSubmitRequest(authn.Actor{Role: authn.RoleAdmin}))
}

func TestStaffOnlyPredicates(t *testing.T) {
	member := authn.Actor{Role: authn.RoleMember}
	admin := authn.Actor{Role: authn.RoleAdmin}
	ops := authn.Actor{Role: authn.RoleOpsStaff}

	assert.True(t, CanChangeStatus(admin))
	assert.True(t, CanChangeStatus(ops), "ops staff drive the lifecycle too")
	assert.False(t, CanChangeStatus(member))

	assert.True(t, CanAssign(admin))
	assert.True(t, CanAssign(ops))
	assert.False(t, CanAssign(member))

	assert.True(t, CanAdministerMembership(admin))
	assert.True(t, CanAdministerMembership(ops))
	assert.False(t, CanAdministerMembership(member))

	assert.True(t, CanViewWaitlist(ops))
	assert.False(t, CanViewWaitlist(member))
}

func TestCanRespondToQuote(t *testing.T) {
	member := authn.Actor{Role: authn.RoleMember}
	admin := authn.Actor{Role: authn.RoleAdmin}

	assert.True(t, CanRespondToQuote(member, true))
	assert.False(t, CanRespondToQuote(member, false))
	assert.False(t, CanRespondToQuote(admin, false), "staff role does not confer quote rights")
}

func TestCanCancelOwnRequest(t *testing.T) {
	member := authn.Actor{Role: authn.RoleMember}

	assert.True(t, CanCancelOwnRequest(member, true, model.StatusSubmitted))
	assert.True(t, CanCancelOwnRequest(member, true, model.StatusQuoteSent))
	assert.False(t, CanCancelOwnRequest(member, true, model.StatusQuoteAccepted),
		"past quote acceptance cancellation is staff-only")
	assert.False(t, CanCancelOwnRequest(member, true, model.StatusInProgress))
	assert.False(t, CanCancelOwnRequest(member, false, model.StatusSubmitted),
		"non-household member cannot cancel")
}
