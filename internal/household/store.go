package household

import (
	"context"

	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
)

// DBQuery objects for household operations
var (
	QueryCreateHousehold = dbmodel.DBQuery{
		ID:    "CREATE_HOUSEHOLD",
		Query: "INSERT INTO HOUSEHOLD (HOUSEHOLD_ID, NAME, POSTCODE, CREATED_TIME) VALUES (?, ?, ?, ?)",
	}

	QueryCreateHouseholdMember = dbmodel.DBQuery{
		ID:    "CREATE_HOUSEHOLD_MEMBER",
		Query: "INSERT INTO HOUSEHOLD_MEMBER (HOUSEHOLD_ID, USER_ID, MEMBER_ROLE, CAN_PAY, CREATED_TIME) VALUES (?, ?, ?, ?, ?)",
	}

	QueryGetHouseholdIDsForUser = dbmodel.DBQuery{
		ID:    "GET_HOUSEHOLD_IDS_FOR_USER",
		Query: "SELECT HOUSEHOLD_ID FROM HOUSEHOLD_MEMBER WHERE USER_ID = ? ORDER BY CREATED_TIME ASC",
	}

	QueryCountHouseholdMember = dbmodel.DBQuery{
		ID:    "COUNT_HOUSEHOLD_MEMBER",
		Query: "SELECT COUNT(*) as count FROM HOUSEHOLD_MEMBER WHERE HOUSEHOLD_ID = ? AND USER_ID = ?",
	}

	QueryListMemberUserIDs = dbmodel.DBQuery{
		ID:    "LIST_HOUSEHOLD_MEMBER_USER_IDS",
		Query: "SELECT USER_ID FROM HOUSEHOLD_MEMBER WHERE HOUSEHOLD_ID = ?",
	}
)

// HouseholdStore defines the interface for household data operations.
type HouseholdStore interface {
	HouseholdIDsForUser(ctx context.Context, userID string) ([]string, error)
	IsMember(ctx context.Context, householdID, userID string) (bool, error)
	ListMemberUserIDs(ctx context.Context, householdID string) ([]string, error)

	CreateWithTx(tx dbmodel.TxInterface, h *Household) error
	AddMemberWithTx(tx dbmodel.TxInterface, m *Member) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewHouseholdStore creates a new household store.
func NewHouseholdStore(dbClient provider.DBClientInterface) HouseholdStore {
	return &store{
		dbClient: dbClient,
	}
}

// HouseholdIDsForUser retrieves the ids of all households the user belongs
// to, oldest membership first.
func (s *store) HouseholdIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.dbClient.Query(QueryGetHouseholdIDsForUser, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row["HOUSEHOLD_ID"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// IsMember reports whether the user belongs to the household.
func (s *store) IsMember(ctx context.Context, householdID, userID string) (bool, error) {
	rows, err := s.dbClient.Query(QueryCountHouseholdMember, householdID, userID)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	count, ok := rows[0]["count"].(int64)
	return ok && count > 0, nil
}

// ListMemberUserIDs retrieves the user ids of all household members.
func (s *store) ListMemberUserIDs(ctx context.Context, householdID string) ([]string, error) {
	rows, err := s.dbClient.Query(QueryListMemberUserIDs, householdID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row["USER_ID"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CreateWithTx creates a household within an existing transaction.
func (s *store) CreateWithTx(tx dbmodel.TxInterface, h *Household) error {
	_, err := tx.Exec(QueryCreateHousehold.Query,
		h.HouseholdID, h.Name, h.Postcode, h.CreatedTime)
	return err
}

// AddMemberWithTx links a user to a household within an existing transaction.
func (s *store) AddMemberWithTx(tx dbmodel.TxInterface, m *Member) error {
	_, err := tx.Exec(QueryCreateHouseholdMember.Query,
		m.HouseholdID, m.UserID, string(m.Role), m.CanPay, m.CreatedTime)
	return err
}
