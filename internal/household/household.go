// Package household links users to the households that own service requests.
package household

// Household groups the users a request belongs to.
type Household struct {
	HouseholdID string
	Name        string
	Postcode    string
	CreatedTime int64
}

// MemberRole is a user's role within a household.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleMember MemberRole = "MEMBER"
)

// Member is a user-to-household link.
type Member struct {
	HouseholdID string
	UserID      string
	Role        MemberRole
	CanPay      bool
	CreatedTime int64
}
