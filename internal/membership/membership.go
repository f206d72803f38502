// Package membership manages the members-only gate: requesting access,
// staff approval/rejection, and the status the rest of the platform keys
// eligibility on.
package membership

import (
	"github.com/hampstead-on-demand/request-management-api/internal/authn"
)

// Membership is a user's one membership record. There is at most one row
// per user; repeated requests and decisions update it in place.
type Membership struct {
	MembershipID string
	UserID       string
	Status       authn.MembershipStatus
	ApprovedBy   *string
	ApprovedTime *int64
	CreatedTime  int64
	UpdatedTime  int64
}

// MembershipResponse is the API representation of a membership.
type MembershipResponse struct {
	MembershipID string                  `json:"id"`
	UserID       string                  `json:"userId"`
	Status       authn.MembershipStatus  `json:"status"`
	ApprovedBy   *string                 `json:"approvedBy,omitempty"`
	ApprovedTime *int64                  `json:"approvedTime,omitempty"`
	CreatedTime  int64                   `json:"createdTime"`
	UpdatedTime  int64                   `json:"updatedTime"`
}

// ToResponse converts the entity to its API representation.
func (m *Membership) ToResponse() *MembershipResponse {
	return &MembershipResponse{
		MembershipID: m.MembershipID,
		UserID:       m.UserID,
		Status:       m.Status,
		ApprovedBy:   m.ApprovedBy,
		ApprovedTime: m.ApprovedTime,
		CreatedTime:  m.CreatedTime,
		UpdatedTime:  m.UpdatedTime,
	}
}
