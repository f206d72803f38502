package message

import (
	"context"

	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
)

// DBQuery objects for message operations
var (
	QueryGetThreadByRequestID = dbmodel.DBQuery{
		ID:    "GET_THREAD_BY_REQUEST_ID",
		Query: "SELECT THREAD_ID, REQUEST_ID, CREATED_TIME FROM MESSAGE_THREAD WHERE REQUEST_ID = ?",
	}

	QueryCreateThread = dbmodel.DBQuery{
		ID:    "CREATE_MESSAGE_THREAD",
		Query: "INSERT INTO MESSAGE_THREAD (THREAD_ID, REQUEST_ID, CREATED_TIME) VALUES (?, ?, ?)",
	}

	QueryListMessagesByThreadID = dbmodel.DBQuery{
		ID:    "LIST_MESSAGES_BY_THREAD_ID",
		Query: "SELECT MESSAGE_ID, THREAD_ID, SENDER_USER_ID, BODY, ATTACHMENTS, CREATED_TIME FROM MESSAGE WHERE THREAD_ID = ? ORDER BY CREATED_TIME ASC",
	}

	QueryCreateMessage = dbmodel.DBQuery{
		ID:    "CREATE_MESSAGE",
		Query: "INSERT INTO MESSAGE (MESSAGE_ID, THREAD_ID, SENDER_USER_ID, BODY, ATTACHMENTS, CREATED_TIME) VALUES (?, ?, ?, ?, ?, ?)",
	}
)

// MessageStore defines the interface for message data operations.
type MessageStore interface {
	GetThreadByRequestID(ctx context.Context, requestID string) (*Thread, error)
	CreateThread(ctx context.Context, t *Thread) error
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
	CreateMessage(ctx context.Context, m *Message) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewMessageStore creates a new message store.
func NewMessageStore(dbClient provider.DBClientInterface) MessageStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetThreadByRequestID retrieves a request's thread. Returns nil when no
// thread exists yet.
func (s *store) GetThreadByRequestID(ctx context.Context, requestID string) (*Thread, error) {
	rows, err := s.dbClient.Query(QueryGetThreadByRequestID, requestID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToThread(rows[0]), nil
}

// CreateThread creates a thread.
func (s *store) CreateThread(ctx context.Context, t *Thread) error {
	_, err := s.dbClient.Execute(QueryCreateThread, t.ThreadID, t.RequestID, t.CreatedTime)
	return err
}

// ListMessages retrieves a thread's messages, oldest first.
func (s *store) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	rows, err := s.dbClient.Query(QueryListMessagesByThreadID, threadID)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		if m := mapToMessage(row); m != nil {
			messages = append(messages, *m)
		}
	}
	return messages, nil
}

// CreateMessage creates a message.
func (s *store) CreateMessage(ctx context.Context, m *Message) error {
	_, err := s.dbClient.Execute(QueryCreateMessage,
		m.MessageID, m.ThreadID, m.SenderUserID, m.Body, m.Attachments, m.CreatedTime)
	return err
}

func mapToThread(row map[string]interface{}) *Thread {
	if row == nil {
		return nil
	}

	t := &Thread{}

	if id, ok := row["THREAD_ID"].(string); ok {
		t.ThreadID = id
	}
	if requestID, ok := row["REQUEST_ID"].(string); ok {
		t.RequestID = requestID
	}
	if created, ok := row["CREATED_TIME"].(int64); ok {
		t.CreatedTime = created
	}

	return t
}

func mapToMessage(row map[string]interface{}) *Message {
	if row == nil {
		return nil
	}

	m := &Message{}

	if id, ok := row["MESSAGE_ID"].(string); ok {
		m.MessageID = id
	}
	if threadID, ok := row["THREAD_ID"].(string); ok {
		m.ThreadID = threadID
	}
	if sender, ok := row["SENDER_USER_ID"].(string); ok {
		m.SenderUserID = sender
	}
	if body, ok := row["BODY"].(string); ok {
		m.Body = body
	}
	if attachments, ok := row["ATTACHMENTS"].(string); ok {
		m.Attachments = attachments
	}
	if created, ok := row["CREATED_TIME"].(int64); ok {
		m.CreatedTime = created
	}

	return m
}
