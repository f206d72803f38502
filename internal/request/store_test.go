package request

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hampstead-on-demand/request-management-api/internal/request/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
)

func newMockStore(t *testing.T) (RequestStore, sqlmock.Sqlmock, *database.DB) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := &database.DB{DB: sqlx.NewDb(db, "sqlmock")}
	return NewRequestStore(provider.NewDBClient(wrapped, "mysql")), mock, wrapped
}

func requestColumns() []string {
	return []string{
		"REQUEST_ID", "HOUSEHOLD_ID", "CREATED_BY", "CATEGORY", "SUBCATEGORY",
		"URGENCY", "DESCRIPTION", "STATUS", "ASSIGNED_TEAM", "PRIORITY",
		"CREATED_TIME", "UPDATED_TIME",
	}
}

func TestStoreGetByIDMapsRow(t *testing.T) {
	store, mock, _ := newMockStore(t)

	rows := sqlmock.NewRows(requestColumns()).AddRow(
		"req-1", "house-1", "member-1", "MAINTENANCE", "PLUMBING",
		nil, "Leaking tap", "TRIAGED", "MAINTENANCE", int64(2),
		int64(1000), int64(2000))
	mock.ExpectQuery(QueryGetRequestByID.Query).WithArgs("req-1").WillReturnRows(rows)

	req, err := store.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	require.NotNil(t, req)

	assert.Equal(t, "req-1", req.RequestID)
	assert.Equal(t, "house-1", req.HouseholdID)
	assert.Equal(t, model.CategoryMaintenance, req.Category)
	require.NotNil(t, req.Subcategory)
	assert.Equal(t, "PLUMBING", *req.Subcategory)
	assert.Nil(t, req.Urgency)
	assert.Equal(t, model.StatusTriaged, req.Status)
	require.NotNil(t, req.AssignedTeam)
	assert.Equal(t, model.TeamMaintenance, *req.AssignedTeam)
	assert.Equal(t, 2, req.Priority)
	assert.Equal(t, int64(2000), req.UpdatedTime)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetByIDMissingReturnsNil(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectQuery(QueryGetRequestByID.Query).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(requestColumns()))

	req, err := store.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, req)
}

func TestStoreUpdateStatusConditionalOnPriorStatus(t *testing.T) {
	store, mock, db := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(QueryUpdateRequestStatus.Query).
		WithArgs("TRIAGED", int64(3000), "req-1", "SUBMITTED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.DB.DB.Begin()
	require.NoError(t, err)

	err = store.UpdateStatusWithTx(dbmodel.NewTx(tx), "req-1", model.StatusSubmitted, model.StatusTriaged, 3000)
	assert.NoError(t, err)
}

func TestStoreUpdateStatusZeroRowsIsConflict(t *testing.T) {
	store, mock, db := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(QueryUpdateRequestStatus.Query).
		WithArgs("TRIAGED", int64(3000), "req-1", "SUBMITTED").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.DB.DB.Begin()
	require.NoError(t, err)

	err = store.UpdateStatusWithTx(dbmodel.NewTx(tx), "req-1", model.StatusSubmitted, model.StatusTriaged, 3000)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestStoreListByHouseholdsEmptyInputSkipsQuery(t *testing.T) {
	store, _, _ := newMockStore(t)

	requests, err := store.ListByHouseholds(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, requests)
}
