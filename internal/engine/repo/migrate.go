package repo

import (
	"errors"
	"fmt"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/pkg/database"
	"gorm.io/gorm"
)

// Migrate creates the metadata tables and the audit table in its store.
func Migrate(db database.IDatabase) error {
	if err := database.AutoMigrate(db.Database(), model.Models()...); err != nil {
		return fmt.Errorf("migrate metadata store: %w", err)
	}
	auditDB := db.AuditDatabase()
	if db.AuditOnClickHouse() {
		auditDB = auditDB.Set("gorm:table_options", "ENGINE=MergeTree() ORDER BY (resource, timestamp)")
	}
	if err := database.AutoMigrate(auditDB, &model.AuditLog{}); err != nil {
		return fmt.Errorf("migrate audit store: %w", err)
	}
	return nil
}

// IsNotFound reports a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
