package database

import (
	"fmt"
	"os"
	"path/filepath"

	"clinic-go/internal/clinic"
	"clinic-go/internal/config"
	"clinic-go/internal/database/migrations"
)

// NewLazyFromConfig creates a lazy store provider based on the database
// config type. The store itself is not opened until the first Acquire.
func NewLazyFromConfig(cfg config.DatabaseConfig) (*Lazy, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, "clinic.db")
		return NewLazy(func() (clinic.Store, error) {
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
			return Open(dbPath)
		}), nil
	case "memory":
		return NewLazy(func() (clinic.Store, error) {
			return Open(":memory:")
		}), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// Open opens the SQLite store at path and brings its schema up to date.
// Schema creation and migration belong to the store, not its callers.
func Open(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return NewSQLiteStoreFromDB(db), nil
}
