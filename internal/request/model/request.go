package model

import "encoding/json"

// Category is the enumerated service type of a request.
type Category string

const (
	CategoryMaintenance Category = "MAINTENANCE"
	CategoryRenovations Category = "RENOVATIONS"
	CategoryCleaning    Category = "CLEANING"
	CategoryGardening   Category = "GARDENING"
	CategorySecurity    Category = "SECURITY"
	CategoryConcierge   Category = "CONCIERGE"
	CategoryDesign      Category = "DESIGN"
)

// IsValid reports whether the category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMaintenance, CategoryRenovations, CategoryCleaning,
		CategoryGardening, CategorySecurity, CategoryConcierge, CategoryDesign:
		return true
	}
	return false
}

// Team is an internal delivery team a request can be assigned to.
type Team string

const (
	TeamMaintenance Team = "MAINTENANCE"
	TeamRenovations Team = "RENOVATIONS"
)

// TeamUnassigned is the sentinel API value that clears an assignment.
const TeamUnassigned = "UNASSIGNED"

// IsValid reports whether the team is a known value.
func (t Team) IsValid() bool {
	return t == TeamMaintenance || t == TeamRenovations
}

// Request is the central entity: one service request belonging to a
// household. HouseholdID is immutable after creation.
type Request struct {
	RequestID       string
	HouseholdID     string
	CreatedByUserID string
	Category        Category
	Subcategory     *string
	Urgency         *string
	Description     string
	Status          Status
	AssignedTeam    *Team
	Priority        int
	CreatedTime     int64
	UpdatedTime     int64
}

// Answer is one free-form intake question/value pair attached to a request.
// Value holds the answer serialized as JSON.
type Answer struct {
	AnswerID    string
	RequestID   string
	QuestionKey string
	Value       string
}

// CreateAPIRequest is the wire payload for creating a request.
type CreateAPIRequest struct {
	Category    string                 `json:"category" validate:"required"`
	Subcategory string                 `json:"subcategory,omitempty"`
	Urgency     string                 `json:"urgency,omitempty"`
	Description string                 `json:"description" validate:"required"`
	Postcode    string                 `json:"postcode" validate:"required"`
	Answers     map[string]interface{} `json:"answers"`
}

// StatusChangeAPIRequest is the wire payload for an admin status change.
type StatusChangeAPIRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note,omitempty"`
}

// AssignAPIRequest is the wire payload for assignment changes. At least one
// of the fields must be supplied.
type AssignAPIRequest struct {
	AssignedTeam *string `json:"assignedTeam,omitempty"`
	Priority     *int    `json:"priority,omitempty"`
}

// QuoteResponseAPIRequest is the wire payload for a member's quote decision.
type QuoteResponseAPIRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
	Note   string `json:"note,omitempty"`
}

const (
	QuoteActionAccept = "accept"
	QuoteActionReject = "reject"
)

// RequestResponse is the API representation of a request.
type RequestResponse struct {
	RequestID    string   `json:"id"`
	HouseholdID  string   `json:"householdId"`
	Category     Category `json:"category"`
	Subcategory  *string  `json:"subcategory,omitempty"`
	Urgency      *string  `json:"urgency,omitempty"`
	Description  string   `json:"description"`
	Status       Status   `json:"status"`
	AssignedTeam *Team    `json:"assignedTeam,omitempty"`
	Priority     int      `json:"priority"`
	CreatedTime  int64    `json:"createdTime"`
	UpdatedTime  int64    `json:"updatedTime"`
}

// AnswerResponse is the API representation of one intake answer. Value is
// emitted as the JSON it was stored as.
type AnswerResponse struct {
	QuestionKey string          `json:"questionKey"`
	Value       json.RawMessage `json:"value"`
}

// RequestDetailResponse is the single-request API representation, including
// intake answers.
type RequestDetailResponse struct {
	RequestResponse
	Answers []AnswerResponse `json:"answers"`
}

// ToResponse converts the entity to its API representation.
func (r *Request) ToResponse() *RequestResponse {
	return &RequestResponse{
		RequestID:    r.RequestID,
		HouseholdID:  r.HouseholdID,
		Category:     r.Category,
		Subcategory:  r.Subcategory,
		Urgency:      r.Urgency,
		Description:  r.Description,
		Status:       r.Status,
		AssignedTeam: r.AssignedTeam,
		Priority:     r.Priority,
		CreatedTime:  r.CreatedTime,
		UpdatedTime:  r.UpdatedTime,
	}
}
