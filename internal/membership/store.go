package membership

import (
	"context"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
)

// DBQuery objects for membership operations
var (
	QueryGetMembershipByUserID = dbmodel.DBQuery{
		ID:    "GET_MEMBERSHIP_BY_USER_ID",
		Query: "SELECT MEMBERSHIP_ID, USER_ID, STATUS, APPROVED_BY, APPROVED_TIME, CREATED_TIME, UPDATED_TIME FROM MEMBERSHIP WHERE USER_ID = ?",
	}

	QueryListMemberships = dbmodel.DBQuery{
		ID:    "LIST_MEMBERSHIPS",
		Query: "SELECT MEMBERSHIP_ID, USER_ID, STATUS, APPROVED_BY, APPROVED_TIME, CREATED_TIME, UPDATED_TIME FROM MEMBERSHIP ORDER BY CREATED_TIME DESC",
	}

	QueryListMembershipsByStatus = dbmodel.DBQuery{
		ID:    "LIST_MEMBERSHIPS_BY_STATUS",
		Query: "SELECT MEMBERSHIP_ID, USER_ID, STATUS, APPROVED_BY, APPROVED_TIME, CREATED_TIME, UPDATED_TIME FROM MEMBERSHIP WHERE STATUS = ? ORDER BY CREATED_TIME DESC",
	}

	// USER_ID carries a unique key, so decisions on an existing record
	// update it in place.
	QueryUpsertMembership = dbmodel.DBQuery{
		ID:    "UPSERT_MEMBERSHIP",
		Query: "INSERT INTO MEMBERSHIP (MEMBERSHIP_ID, USER_ID, STATUS, APPROVED_BY, APPROVED_TIME, CREATED_TIME, UPDATED_TIME) VALUES (?, ?, ?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE STATUS = VALUES(STATUS), APPROVED_BY = VALUES(APPROVED_BY), APPROVED_TIME = VALUES(APPROVED_TIME), UPDATED_TIME = VALUES(UPDATED_TIME)",
	}
)

// MembershipStore defines the interface for membership data operations.
type MembershipStore interface {
	GetByUserID(ctx context.Context, userID string) (*Membership, error)
	List(ctx context.Context, status authn.MembershipStatus) ([]Membership, error)
	UpsertWithTx(tx dbmodel.TxInterface, m *Membership) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewMembershipStore creates a new membership store.
func NewMembershipStore(dbClient provider.DBClientInterface) MembershipStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetByUserID retrieves a user's membership. Returns nil when the user has
// never requested one.
func (s *store) GetByUserID(ctx context.Context, userID string) (*Membership, error) {
	rows, err := s.dbClient.Query(QueryGetMembershipByUserID, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToMembership(rows[0]), nil
}

// List retrieves memberships, optionally filtered by status, newest first.
func (s *store) List(ctx context.Context, status authn.MembershipStatus) ([]Membership, error) {
	var (
		rows []map[string]interface{}
		err  error
	)
	if status == authn.MembershipNone {
		rows, err = s.dbClient.Query(QueryListMemberships)
	} else {
		rows, err = s.dbClient.Query(QueryListMembershipsByStatus, string(status))
	}
	if err != nil {
		return nil, err
	}

	memberships := make([]Membership, 0, len(rows))
	for _, row := range rows {
		if m := mapToMembership(row); m != nil {
			memberships = append(memberships, *m)
		}
	}
	return memberships, nil
}

// UpsertWithTx creates or updates a membership within an existing
// transaction.
func (s *store) UpsertWithTx(tx dbmodel.TxInterface, m *Membership) error {
	_, err := tx.Exec(QueryUpsertMembership.Query,
		m.MembershipID, m.UserID, string(m.Status), m.ApprovedBy, m.ApprovedTime,
		m.CreatedTime, m.UpdatedTime)
	return err
}

func mapToMembership(row map[string]interface{}) *Membership {
	if row == nil {
		return nil
	}

	m := &Membership{}

	if id, ok := row["MEMBERSHIP_ID"].(string); ok {
		m.MembershipID = id
	}
	if userID, ok := row["USER_ID"].(string); ok {
		m.UserID = userID
	}
	if status, ok := row["STATUS"].(string); ok {
		m.Status = authn.MembershipStatus(status)
	}
	if approvedBy, ok := row["APPROVED_BY"].(string); ok {
		m.ApprovedBy = &approvedBy
	}
	if approvedTime, ok := row["APPROVED_TIME"].(int64); ok {
		m.ApprovedTime = &approvedTime
	}
	if created, ok := row["CREATED_TIME"].(int64); ok {
		m.CreatedTime = created
	}
	if updated, ok := row["UPDATED_TIME"].(int64); ok {
		m.UpdatedTime = updated
	}

	return m
}
