// Package provider provides functionality for managing database clients.
package provider

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/hampstead-on-demand/request-management-api/internal/system/database"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
)

// DBClientInterface defines the interface stores use to run queries.
type DBClientInterface interface {
	Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	Execute(query dbmodel.DBQuery, args ...interface{}) (sql.Result, error)
	BeginTx() (dbmodel.TxInterface, error)
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetRequestsDBClient() (DBClientInterface, error)
}

type dbClient struct {
	db     *database.DB
	dbType string
}

// NewDBClient creates a database client backed by the given connection.
func NewDBClient(db *database.DB, dbType string) DBClientInterface {
	return &dbClient{db: db, dbType: dbType}
}

// Query runs a read query and returns the rows as generic maps. Byte slices
// from the MySQL driver are normalized to strings.
func (c *dbClient) Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBClient"))

	rows, err := c.db.Queryx(query.Query, args...)
	if err != nil {
		logger.Error("Query failed", log.String("query_id", query.ID), log.Error(err))
		return nil, fmt.Errorf("query %s failed: %w", query.ID, err)
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("query %s scan failed: %w", query.ID, err)
		}
		for key, value := range row {
			if b, ok := value.([]byte); ok {
				row[key] = string(b)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s iteration failed: %w", query.ID, err)
	}

	return results, nil
}

// Execute runs a write statement.
func (c *dbClient) Execute(query dbmodel.DBQuery, args ...interface{}) (sql.Result, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBClient"))

	result, err := c.db.Exec(query.Query, args...)
	if err != nil {
		logger.Error("Execute failed", log.String("query_id", query.ID), log.Error(err))
		return nil, fmt.Errorf("execute %s failed: %w", query.ID, err)
	}
	return result, nil
}

// BeginTx starts a new transaction.
func (c *dbClient) BeginTx() (dbmodel.TxInterface, error) {
	tx, err := c.db.DB.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return dbmodel.NewTx(tx), nil
}

// dbProvider is the implementation of DBProviderInterface.
type dbProvider struct {
	requestsClient DBClientInterface
	requestsMutex  sync.RWMutex
	db             *database.DB
}

var (
	instance *dbProvider
	once     sync.Once
)

// InitDBProvider initializes the singleton instance of DBProvider with the
// database connection.
func InitDBProvider(db *database.DB) {
	once.Do(func() {
		instance = &dbProvider{
			db: db,
		}
		instance.initializeClient()
	})
}

// GetDBProvider returns the instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetRequestsDBClient returns a database client for the requests datasource.
// Not required to close the returned client manually since it manages its own
// connection pool.
func (d *dbProvider) GetRequestsDBClient() (DBClientInterface, error) {
	d.requestsMutex.RLock()
	defer d.requestsMutex.RUnlock()

	if d.requestsClient == nil {
		return nil, fmt.Errorf("requests DB client not initialized")
	}
	return d.requestsClient, nil
}

func (d *dbProvider) initializeClient() {
	d.requestsMutex.Lock()
	defer d.requestsMutex.Unlock()

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider"))

	if d.db == nil {
		logger.Fatal("Database connection is nil")
		return
	}

	d.requestsClient = NewDBClient(d.db, "mysql")
	logger.Debug("Requests DB client initialized")
}
