package waitlist

import (
	"context"

	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
)

// DBQuery objects for waitlist operations
var (
	QueryCreateWaitlistEntry = dbmodel.DBQuery{
		ID:    "CREATE_WAITLIST_ENTRY",
		Query: "INSERT INTO WAITLIST_ENTRY (ENTRY_ID, POSTCODE, EMAIL, PHONE, NOTES, CREATED_TIME) VALUES (?, ?, ?, ?, ?, ?)",
	}

	QueryListWaitlistEntries = dbmodel.DBQuery{
		ID:    "LIST_WAITLIST_ENTRIES",
		Query: "SELECT ENTRY_ID, POSTCODE, EMAIL, PHONE, NOTES, CREATED_TIME FROM WAITLIST_ENTRY ORDER BY CREATED_TIME DESC",
	}
)

// WaitlistStore defines the interface for waitlist data operations.
type WaitlistStore interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]Entry, error)
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewWaitlistStore creates a new waitlist store.
func NewWaitlistStore(dbClient provider.DBClientInterface) WaitlistStore {
	return &store{
		dbClient: dbClient,
	}
}

// Create creates a waitlist entry.
func (s *store) Create(ctx context.Context, entry *Entry) error {
	_, err := s.dbClient.Execute(QueryCreateWaitlistEntry,
		entry.EntryID, entry.Postcode, entry.Email, entry.Phone, entry.Notes, entry.CreatedTime)
	return err
}

// List retrieves all waitlist entries, newest first.
func (s *store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.dbClient.Query(QueryListWaitlistEntries)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if entry := mapToEntry(row); entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

func mapToEntry(row map[string]interface{}) *Entry {
	if row == nil {
		return nil
	}

	entry := &Entry{}

	if id, ok := row["ENTRY_ID"].(string); ok {
		entry.EntryID = id
	}
	if postcode, ok := row["POSTCODE"].(string); ok {
		entry.Postcode = postcode
	}
	if email, ok := row["EMAIL"].(string); ok {
		entry.Email = &email
	}
	if phone, ok := row["PHONE"].(string); ok {
		entry.Phone = &phone
	}
	if notes, ok := row["NOTES"].(string); ok {
		entry.Notes = &notes
	}
	if created, ok := row["CREATED_TIME"].(int64); ok {
		entry.CreatedTime = created
	}

	return entry
}
