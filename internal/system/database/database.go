// Package database provides database connection management.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/hampstead-on-demand/request-management-api/internal/system/config"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
)

// DB holds the database connection.
type DB struct {
	*sqlx.DB
}

// Initialize creates and initializes the database connection.
func Initialize(cfg *config.DatabaseConfig) (*DB, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Database"))
	dsn := cfg.GetDSN()

	logger.Info("Connecting to database...",
		log.String("hostname", cfg.Hostname),
		log.Int("port", cfg.Port),
		log.String("database", cfg.Database))

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to database")

	return &DB{DB: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.DB != nil {
		logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Database"))
		logger.Info("Closing database connection...")
		return db.DB.Close()
	}
	return nil
}

// HealthCheck checks if the database is healthy. The ping races the
// context deadline; expiry reports unhealthy.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	done := make(chan error, 1)
	go func() {
		done <- db.PingContext(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("database health check timed out: %w", ctx.Err())
	}
}
