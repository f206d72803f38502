package audit

import (
	"context"
	"fmt"

	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
)

// DBQuery objects for audit operations. The table is append-only; no update
// or delete statements exist.
var (
	QueryCreateAuditEntry = dbmodel.DBQuery{
		ID:    "CREATE_AUDIT_ENTRY",
		Query: "INSERT INTO AUDIT_LOG (AUDIT_ID, ENTITY_TYPE, ENTITY_ID, ACTION, ACTOR_USER_ID, BEFORE_STATE, AFTER_STATE, CREATED_TIME) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryListAuditByEntity = dbmodel.DBQuery{
		ID:    "LIST_AUDIT_BY_ENTITY",
		Query: "SELECT AUDIT_ID, ENTITY_TYPE, ENTITY_ID, ACTION, ACTOR_USER_ID, BEFORE_STATE, AFTER_STATE, CREATED_TIME FROM AUDIT_LOG WHERE ENTITY_TYPE = ? AND ENTITY_ID = ? ORDER BY CREATED_TIME DESC",
	}
)

// AuditStore defines the interface for audit trail operations.
type AuditStore interface {
	CreateWithTx(tx dbmodel.TxInterface, entry *Entry) error
	ListByEntity(ctx context.Context, entityType EntityType, entityID string) ([]Entry, error)
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewAuditStore creates a new audit store.
func NewAuditStore(dbClient provider.DBClientInterface) AuditStore {
	return &store{
		dbClient: dbClient,
	}
}

// CreateWithTx appends an audit entry within an existing transaction. The
// entity type is validated here so no unknown kinds ever reach the table.
func (s *store) CreateWithTx(tx dbmodel.TxInterface, entry *Entry) error {
	if !entry.EntityType.IsValid() {
		return fmt.Errorf("unknown audit entity type %q", entry.EntityType)
	}

	_, err := tx.Exec(QueryCreateAuditEntry.Query,
		entry.AuditID, string(entry.EntityType), entry.EntityID, entry.Action,
		entry.ActorUserID, entry.Before, entry.After, entry.CreatedTime)
	return err
}

// ListByEntity retrieves the audit trail for one entity, newest first.
func (s *store) ListByEntity(ctx context.Context, entityType EntityType, entityID string) ([]Entry, error) {
	rows, err := s.dbClient.Query(QueryListAuditByEntity, string(entityType), entityID)
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

	if id, ok := row["AUDIT_ID"].(string); ok {
		entry.AuditID = id
	}
	if entityType, ok := row["ENTITY_TYPE"].(string); ok {
		entry.EntityType = EntityType(entityType)
	}
	if entityID, ok := row["ENTITY_ID"].(string); ok {
		entry.EntityID = entityID
	}
	if action, ok := row["ACTION"].(string); ok {
		entry.Action = action
	}
	if actor, ok := row["ACTOR_USER_ID"].(string); ok {
		entry.ActorUserID = &actor
	}
	if before, ok := row["BEFORE_STATE"].(string); ok {
		entry.Before = &before
	}
	if after, ok := row["AFTER_STATE"].(string); ok {
		entry.After = after
	}
	if created, ok := row["CREATED_TIME"].(int64); ok {
		entry.CreatedTime = created
	}

	return entry
}
