package database

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

func NewDatabase(databaseType, connectionString string) (database DatabaseService, err error) {
	switch databaseType {
	case "sqlite":
		database, err = NewSQLiteDatabase(connectionString)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", databaseType)
	}

	// Ensure database schema exists (idempotent), important for in-memory SQLite
	slog.Info("initializing database schema (ensuring tables exist)")
	if _, err = database.CreateDatabase(); err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	return database, nil
}

// NewConfigurationRepository returns the store holding the configuration record.
// The "database" store reuses the given database, "redis" connects to the given address.
func NewConfigurationRepository(storeType string, database DatabaseService, redisOptions *redis.Options) (ConfigurationRepository, error) {
	switch storeType {
	case "", "database":
		return database, nil
	case "redis":
		if redisOptions == nil || redisOptions.Addr == "" {
			return nil, fmt.Errorf("redis configuration store requires an address")
		}
		return NewRedisConfigurationStore(redis.NewClient(redisOptions)), nil
	default:
		return nil, fmt.Errorf("unsupported configuration store: %s", storeType)
	}
}
