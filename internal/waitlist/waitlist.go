// Package waitlist captures interest from prospects outside the current
// service area so expansion can be prioritized by demand.
package waitlist

// Entry is one waitlist signup.
type Entry struct {
	EntryID     string
	Postcode    string
	Email       *string
	Phone       *string
	Notes       *string
	CreatedTime int64
}

// JoinAPIRequest is the wire payload for joining the waitlist.
type JoinAPIRequest struct {
	Postcode string `json:"postcode" validate:"required"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// EntryResponse is the API representation of a waitlist entry.
type EntryResponse struct {
	EntryID     string  `json:"id"`
	Postcode    string  `json:"postcode"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	CreatedTime int64   `json:"createdTime"`
}

// ToResponse converts the entity to its API representation.
func (e *Entry) ToResponse() *EntryResponse {
	return &EntryResponse{
		EntryID:     e.EntryID,
		Postcode:    e.Postcode,
		Email:       e.Email,
		Phone:       e.Phone,
		Notes:       e.Notes,
		CreatedTime: e.CreatedTime,
	}
}
