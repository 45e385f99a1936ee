package core

import (
	"context"
	"fmt"
	"os"

	"ifcqa/internal/infra/persistence/memory"
	"ifcqa/internal/infra/persistence/postgres"
	"ifcqa/internal/infra/persistence/sqlite"
	"ifcqa/pkg/domain"
)

// StorageDriver identifies a run history backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects a run history backend explicitly.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// StorageConfigFromEnv reads the backend selection from the environment.
//
//	IFCQA_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	IFCQA_SQLITE_PATH: path to sqlite file (default ./ifcqa.db)
//	IFCQA_POSTGRES_DSN: postgres DSN when driver=postgres
func StorageConfigFromEnv() StorageConfig {
	return StorageConfig{
		Driver:      StorageDriver(os.Getenv("IFCQA_STORAGE_DRIVER")),
		SQLitePath:  os.Getenv("IFCQA_SQLITE_PATH"),
		PostgresDSN: os.Getenv("IFCQA_POSTGRES_DSN"),
	}
}

// OpenRunStore opens the backend named by cfg. Defaults to sqlite.
func OpenRunStore(ctx context.Context, cfg StorageConfig) (domain.RunStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
