// Package activitylog persists activity entries and badge progress in a
// pure-Go SQLite database.
package activitylog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open connects to the database at path, creating parent directories and
// migrating the schema.
func Open(path string) (*gorm.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	if err = configure(db, path); err != nil {
		return nil, err
	}
	if err = Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}, &BadgeProgress{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func configure(db *gorm.DB, path string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("configuring database: %w", err)
	}

	if path == MemoryPath {
		// Each connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
		return nil
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err = db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("executing %s: %w", pragma, err)
		}
	}
	return nil
}
