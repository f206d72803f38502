package user

import (
	"context"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
)

// DBQuery objects for user operations
var (
	QueryGetUserByID = dbmodel.DBQuery{
		ID:    "GET_USER_BY_ID",
		Query: "SELECT USER_ID, EMAIL, NAME, ROLE, CREATED_TIME FROM APP_USER WHERE USER_ID = ?",
	}

	QueryListStaffEmails = dbmodel.DBQuery{
		ID:    "LIST_STAFF_EMAILS",
		Query: "SELECT EMAIL FROM APP_USER WHERE ROLE IN ('ADMIN', 'OPS_STAFF')",
	}
)

// UserStore defines the interface for user data operations.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*User, error)
	ListStaffEmails(ctx context.Context) ([]string, error)
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewUserStore creates a new user store.
func NewUserStore(dbClient provider.DBClientInterface) UserStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetByID retrieves a user by ID. Returns nil when the user does not exist.
func (s *store) GetByID(ctx context.Context, userID string) (*User, error) {
	rows, err := s.dbClient.Query(QueryGetUserByID, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToUser(rows[0]), nil
}

// ListStaffEmails retrieves the email addresses of all staff accounts.
func (s *store) ListStaffEmails(ctx context.Context) ([]string, error) {
	rows, err := s.dbClient.Query(QueryListStaffEmails)
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		if email, ok := row["EMAIL"].(string); ok {
			emails = append(emails, email)
		}
	}
	return emails, nil
}

func mapToUser(row map[string]interface{}) *User {
	if row == nil {
		return nil
	}

	u := &User{}

	if id, ok := row["USER_ID"].(string); ok {
		u.UserID = id
	}
	if email, ok := row["EMAIL"].(string); ok {
		u.Email = email
	}
	if name, ok := row["NAME"].(string); ok {
		u.Name = name
	}
	if role, ok := row["ROLE"].(string); ok {
		u.Role = authn.Role(role)
	}
	if created, ok := row["CREATED_TIME"].(int64); ok {
		u.CreatedTime = created
	}

	return u
}
