// Package repo implements the persistence layer on GORM. This file boots the
// SQLite database (pure Go driver, no cgo) and runs schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
)

// OpenSQLite opens (or creates) the SQLite database at path, applies the
// connection PRAGMAs, and sizes the pool for a small single-process service.
//
// A missing parent directory fails immediately with a readable error; letting
// the driver discover it later produces the cryptic "out of memory (14)" on
// some platforms.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// foreign_keys must stay ON: interaction events hang off pets with
	// ON DELETE CASCADE.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		db.Exec(pragma)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for every persisted model. Pets
// come first so the event tables' foreign keys resolve.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Pet{},
		&domain.Feeding{},
		&domain.Playtime{},
		&domain.Scolding{},
		&domain.Idempotency{},
	)
}
