// Package audit records the append-only trail of state mutations. Entries
// are written inside the mutating transaction so a mutation and its trail
// commit or roll back together.
package audit

import (
	"encoding/json"
	"fmt"
)

// EntityType identifies the kind of entity an audit entry describes. The
// enum is closed; the store rejects writes with any other value.
type EntityType string

const (
	EntityTypeRequest    EntityType = "REQUEST"
	EntityTypeMembership EntityType = "MEMBERSHIP"
)

// IsValid reports whether the entity type is a known value.
func (t EntityType) IsValid() bool {
	return t == EntityTypeRequest || t == EntityTypeMembership
}

// Audit actions.
const (
	ActionCreate            = "create"
	ActionStatusChange      = "status_change"
	ActionAssignmentChange  = "assignment_change"
	ActionQuoteAccepted     = "quote_accepted"
	ActionQuoteRejected     = "quote_rejected"
	ActionApprove           = "approve"
	ActionReject            = "reject"
	ActionRequestMembership = "request"
)

// Entry is one audit record. Before is nil for creation events; ActorUserID
// is nil for system-initiated mutations.
type Entry struct {
	AuditID     string
	EntityType  EntityType
	EntityID    string
	Action      string
	ActorUserID *string
	Before      *string
	After       string
	CreatedTime int64
}

// Snapshot serializes an entity state for the Before/After columns.
func Snapshot(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize audit snapshot: %w", err)
	}
	return string(data), nil
}
