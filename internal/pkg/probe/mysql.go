package probe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-arcade/ingest/pkg/database"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type mysqlProber struct {
	timeout time.Duration
}

func (p mysqlProber) open(info ConnectionInfo) (*gorm.DB, error) {
	if info.User == "" || info.Host == "" || info.Database == "" {
		return nil, fmt.Errorf("Missing required fields (user, host, database)")
	}
	port := int(info.Port)
	if port == 0 {
		port = 3306
	}
	dsn := database.BuildMySQLDSN(info.User, info.Password, info.Host, strconv.Itoa(port), info.Database, p.timeout)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: database.NewGormLogger(false)})
}

func (p mysqlProber) Test(ctx context.Context, info ConnectionInfo) Result {
	db, err := p.open(info)
	if err != nil {
		return failure("Connection failed: %v", err)
	}
	defer closeDB(db)

	if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return failure("Connection failed: %v", err)
	}
	return success("Successfully connected to MySQL")
}

func (p mysqlProber) Metadata(ctx context.Context, info ConnectionInfo) ([]string, error) {
	db, err := p.open(info)
	if err != nil {
		return nil, err
	}
	defer closeDB(db)
	return db.WithContext(ctx).Migrator().GetTables()
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
