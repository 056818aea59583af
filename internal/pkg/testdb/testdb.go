// Package testdb opens throwaway sqlite stores behind database.IDatabase.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/pkg/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sqliteDB struct {
	db *gorm.DB
}

func (s *sqliteDB) Database() *gorm.DB      { return s.db }
func (s *sqliteDB) AuditDatabase() *gorm.DB { return s.db }
func (s *sqliteDB) AuditOnClickHouse() bool { return false }

// New returns an in-memory store with every model migrated. It is closed
// when the test ends.
func New(t testing.TB) database.IDatabase {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	models := append(model.Models(), &model.AuditLog{})
	if err := database.AutoMigrate(db, models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &sqliteDB{db: db}
}
