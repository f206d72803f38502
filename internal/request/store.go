package request

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hampstead-on-demand/request-management-api/internal/request/model"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
)

// ErrStatusConflict is returned when a conditional status update matched no
// row because the request moved concurrently.
var ErrStatusConflict = errors.New("request status changed concurrently")

// DBQuery objects for service request operations
var (
	QueryCreateRequest = dbmodel.DBQuery{
		ID:    "CREATE_SERVICE_REQUEST",
		Query: "INSERT INTO SERVICE_REQUEST (REQUEST_ID, HOUSEHOLD_ID, CREATED_BY, CATEGORY, SUBCATEGORY, URGENCY, DESCRIPTION, STATUS, ASSIGNED_TEAM, PRIORITY, CREATED_TIME, UPDATED_TIME) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetRequestByID = dbmodel.DBQuery{
		ID:    "GET_SERVICE_REQUEST_BY_ID",
		Query: "SELECT REQUEST_ID, HOUSEHOLD_ID, CREATED_BY, CATEGORY, SUBCATEGORY, URGENCY, DESCRIPTION, STATUS, ASSIGNED_TEAM, PRIORITY, CREATED_TIME, UPDATED_TIME FROM SERVICE_REQUEST WHERE REQUEST_ID = ?",
	}

	QueryListAllRequests = dbmodel.DBQuery{
		ID:    "LIST_ALL_SERVICE_REQUESTS",
		Query: "SELECT REQUEST_ID, HOUSEHOLD_ID, CREATED_BY, CATEGORY, SUBCATEGORY, URGENCY, DESCRIPTION, STATUS, ASSIGNED_TEAM, PRIORITY, CREATED_TIME, UPDATED_TIME FROM SERVICE_REQUEST ORDER BY CREATED_TIME DESC",
	}

	// Conditional on the previously read status so concurrent transitions
	// surface as zero affected rows instead of silently clobbering.
	QueryUpdateRequestStatus = dbmodel.DBQuery{
		ID:    "UPDATE_SERVICE_REQUEST_STATUS",
		Query: "UPDATE SERVICE_REQUEST SET STATUS = ?, UPDATED_TIME = ? WHERE REQUEST_ID = ? AND STATUS = ?",
	}

	QueryUpdateRequestAssignment = dbmodel.DBQuery{
		ID:    "UPDATE_SERVICE_REQUEST_ASSIGNMENT",
		Query: "UPDATE SERVICE_REQUEST SET ASSIGNED_TEAM = ?, PRIORITY = ?, UPDATED_TIME = ? WHERE REQUEST_ID = ?",
	}

	QueryCreateAnswer = dbmodel.DBQuery{
		ID:    "CREATE_REQUEST_ANSWER",
		Query: "INSERT INTO REQUEST_ANSWER (ANSWER_ID, REQUEST_ID, QUESTION_KEY, ANSWER_VALUE) VALUES (?, ?, ?, ?)",
	}

	QueryGetAnswersByRequestID = dbmodel.DBQuery{
		ID:    "GET_ANSWERS_BY_REQUEST_ID",
		Query: "SELECT ANSWER_ID, REQUEST_ID, QUESTION_KEY, ANSWER_VALUE FROM REQUEST_ANSWER WHERE REQUEST_ID = ?",
	}
)

// RequestStore defines the interface for service request data operations.
type RequestStore interface {
	GetByID(ctx context.Context, requestID string) (*model.Request, error)
	ListByHouseholds(ctx context.Context, householdIDs []string) ([]model.Request, error)
	ListAll(ctx context.Context) ([]model.Request, error)
	GetAnswers(ctx context.Context, requestID string) ([]model.Answer, error)

	CreateWithTx(tx dbmodel.TxInterface, req *model.Request) error
	CreateAnswersWithTx(tx dbmodel.TxInterface, answers []model.Answer) error
	UpdateStatusWithTx(tx dbmodel.TxInterface, requestID string, from, to model.Status, updatedTime int64) error
	UpdateAssignmentWithTx(tx dbmodel.TxInterface, requestID string, team *model.Team, priority int, updatedTime int64) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewRequestStore creates a new service request store.
func NewRequestStore(dbClient provider.DBClientInterface) RequestStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetByID retrieves a request by ID. Returns nil when it does not exist.
func (s *store) GetByID(ctx context.Context, requestID string) (*model.Request, error) {
	rows, err := s.dbClient.Query(QueryGetRequestByID, requestID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToRequest(rows[0]), nil
}

// ListByHouseholds retrieves all requests belonging to the given households,
// newest first.
func (s *store) ListByHouseholds(ctx context.Context, householdIDs []string) ([]model.Request, error) {
	if len(householdIDs) == 0 {
		return []model.Request{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(householdIDs)), ", ")
	query := dbmodel.DBQuery{
		ID: "LIST_SERVICE_REQUESTS_BY_HOUSEHOLDS",
		Query: fmt.Sprintf(
			"SELECT REQUEST_ID, HOUSEHOLD_ID, CREATED_BY, CATEGORY, SUBCATEGORY, URGENCY, DESCRIPTION, STATUS, ASSIGNED_TEAM, PRIORITY, CREATED_TIME, UPDATED_TIME FROM SERVICE_REQUEST WHERE HOUSEHOLD_ID IN (%s) ORDER BY CREATED_TIME DESC",
			placeholders),
	}

	args := make([]interface{}, len(householdIDs))
	for i, id := range householdIDs {
		args[i] = id
	}

	rows, err := s.dbClient.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return mapToRequests(rows), nil
}

// ListAll retrieves every request, newest first.
func (s *store) ListAll(ctx context.Context) ([]model.Request, error) {
	rows, err := s.dbClient.Query(QueryListAllRequests)
	if err != nil {
		return nil, err
	}
	return mapToRequests(rows), nil
}

// GetAnswers retrieves the intake answers attached to a request.
func (s *store) GetAnswers(ctx context.Context, requestID string) ([]model.Answer, error) {
	rows, err := s.dbClient.Query(QueryGetAnswersByRequestID, requestID)
	if err != nil {
		return nil, err
	}

	answers := make([]model.Answer, 0, len(rows))
	for _, row := range rows {
		if answer := mapToAnswer(row); answer != nil {
			answers = append(answers, *answer)
		}
	}
	return answers, nil
}

// CreateWithTx creates a request within an existing transaction.
func (s *store) CreateWithTx(tx dbmodel.TxInterface, req *model.Request) error {
	var team *string
	if req.AssignedTeam != nil {
		t := string(*req.AssignedTeam)
		team = &t
	}

	_, err := tx.Exec(QueryCreateRequest.Query,
		req.RequestID, req.HouseholdID, req.CreatedByUserID, string(req.Category),
		req.Subcategory, req.Urgency, req.Description, string(req.Status),
		team, req.Priority, req.CreatedTime, req.UpdatedTime)
	return err
}

// CreateAnswersWithTx creates intake answers within an existing transaction.
func (s *store) CreateAnswersWithTx(tx dbmodel.TxInterface, answers []model.Answer) error {
	for _, answer := range answers {
		_, err := tx.Exec(QueryCreateAnswer.Query,
			answer.AnswerID, answer.RequestID, answer.QuestionKey, answer.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatusWithTx moves a request from one status to another within an
// existing transaction. Returns ErrStatusConflict when the request is no
// longer in the expected status.
func (s *store) UpdateStatusWithTx(tx dbmodel.TxInterface, requestID string, from, to model.Status, updatedTime int64) error {
	result, err := tx.Exec(QueryUpdateRequestStatus.Query,
		string(to), updatedTime, requestID, string(from))
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// UpdateAssignmentWithTx updates team assignment and priority within an
// existing transaction. A nil team clears the assignment.
func (s *store) UpdateAssignmentWithTx(tx dbmodel.TxInterface, requestID string, team *model.Team, priority int, updatedTime int64) error {
	var teamValue *string
	if team != nil {
		t := string(*team)
		teamValue = &t
	}

	_, err := tx.Exec(QueryUpdateRequestAssignment.Query,
		teamValue, priority, updatedTime, requestID)
	return err
}

// Mapper functions

func mapToRequest(row map[string]interface{}) *model.Request {
	if row == nil {
		return nil
	}

	req := &model.Request{}

	if id, ok := row["REQUEST_ID"].(string); ok {
		req.RequestID = id
	}
	if householdID, ok := row["HOUSEHOLD_ID"].(string); ok {
		req.HouseholdID = householdID
	}
	if createdBy, ok := row["CREATED_BY"].(string); ok {
		req.CreatedByUserID = createdBy
	}
	if category, ok := row["CATEGORY"].(string); ok {
		req.Category = model.Category(category)
	}
	if subcategory, ok := row["SUBCATEGORY"].(string); ok {
		req.Subcategory = &subcategory
	}
	if urgency, ok := row["URGENCY"].(string); ok {
		req.Urgency = &urgency
	}
	if description, ok := row["DESCRIPTION"].(string); ok {
		req.Description = description
	}
	if status, ok := row["STATUS"].(string); ok {
		req.Status = model.Status(status)
	}
	if team, ok := row["ASSIGNED_TEAM"].(string); ok {
		t := model.Team(team)
		req.AssignedTeam = &t
	}
	if priority, ok := row["PRIORITY"].(int64); ok {
		req.Priority = int(priority)
	}
	if created, ok := row["CREATED_TIME"].(int64); ok {
		req.CreatedTime = created
	}
	if updated, ok := row["UPDATED_TIME"].(int64); ok {
		req.UpdatedTime = updated
	}

	return req
}

func mapToRequests(rows []map[string]interface{}) []model.Request {
	requests := make([]model.Request, 0, len(rows))
	for _, row := range rows {
		if req := mapToRequest(row); req != nil {
			requests = append(requests, *req)
		}
	}
	return requests
}

func mapToAnswer(row map[string]interface{}) *model.Answer {
	if row == nil {
		return nil
	}

	answer := &model.Answer{}

	if id, ok := row["ANSWER_ID"].(string); ok {
		answer.AnswerID = id
	}
	if requestID, ok := row["REQUEST_ID"].(string); ok {
		answer.RequestID = requestID
	}
	if key, ok := row["QUESTION_KEY"].(string); ok {
		answer.QuestionKey = key
	}
	if value, ok := row["ANSWER_VALUE"].(string); ok {
		answer.Value = value
	}

	return answer
}
