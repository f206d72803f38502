// Package policy holds the pure access predicates shared across features.
// Every predicate takes the already-resolved facts it needs; none of them
// touch the database.
package policy

import (
	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/request/model"
)

// CanViewRequest reports whether the actor may read a request. Staff see
// everything; members see only requests of households they belong to.
func CanViewRequest(actor authn.Actor, isHouseholdMember bool) bool {
	return actor.Role.IsStaff() || isHouseholdMember
}

// CanSubmitRequest reports whether the actor may create new requests. Only
// users with an ACTIVE membership qualify; staff roles do not bypass this.
func CanSubmitRequest(actor authn.Actor) bool {
	return actor.MembershipStatus == authn.MembershipActive
}

// CanChangeStatus reports whether the actor may drive arbitrary lifecycle
// transitions. Admin and ops staff only.
func CanChangeStatus(actor authn.Actor) bool {
	return actor.Role.IsStaff()
}

// CanAssign reports whether the actor may change team assignment or
// priority. Admin and ops staff only.
func CanAssign(actor authn.Actor) bool {
	return actor.Role.IsStaff()
}

// CanRespondToQuote reports whether the actor may accept or reject a quote
// on the given request. Household membership is required; role is not
// sufficient.
func CanRespondToQuote(actor authn.Actor, isHouseholdMember bool) bool {
	return isHouseholdMember
}

// CanCancelOwnRequest reports whether a household member may cancel a
// request in the given status. Staff cancellation goes through
// CanChangeStatus instead.
func CanCancelOwnRequest(actor authn.Actor, isHouseholdMember bool, status model.Status) bool {
	return isHouseholdMember && model.IsMemberCancellable(status)
}

// CanAdministerMembership reports whether the actor may approve or reject
// membership requests and list them.
func CanAdministerMembership(actor authn.Actor) bool {
	return actor.Role.IsStaff()
}

// CanViewWaitlist reports whether the actor may list waitlist entries.
func CanViewWaitlist(actor authn.Actor) bool {
	return actor.Role.IsStaff()
}
