// Package authn carries the authenticated actor descriptor through request
// handling. Session resolution happens upstream; this package only consumes
// the identity the fronting auth layer established.
package authn

import (
	"context"
)

// Role is a user's platform role.
type Role string

const (
	RoleMember   Role = "MEMBER"
	RoleOpsStaff Role = "OPS_STAFF"
	RoleAdmin    Role = "ADMIN"
)

// IsStaff reports whether the role carries administrative rights.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOpsStaff
}

// IsValid reports whether the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleOpsStaff, RoleAdmin:
		return true
	}
	return false
}

// MembershipStatus is a user's service-eligibility status. A user with no
// membership record carries MembershipNone.
type MembershipStatus string

const (
	MembershipNone      MembershipStatus = ""
	MembershipPending   MembershipStatus = "PENDING"
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipSuspended MembershipStatus = "SUSPENDED"
	MembershipRejected  MembershipStatus = "REJECTED"
)

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	UserID           string
	Email            string
	Role             Role
	MembershipStatus MembershipStatus
}

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor attaches the actor to the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext extracts the actor from the context if present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(Actor)
	return actor, ok
}
