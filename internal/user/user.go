// Package user resolves authenticated user ids into full actor descriptors
// and exposes the user store backing notification recipient lookups.
package user

import (
	"github.com/hampstead-on-demand/request-management-api/internal/authn"
)

// User is a platform account. Accounts are provisioned by the fronting auth
// layer; this service only reads them.
type User struct {
	UserID      string
	Email       string
	Name        string
	Role        authn.Role
	CreatedTime int64
}
