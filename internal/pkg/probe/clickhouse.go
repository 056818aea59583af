package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/ingest/pkg/database"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
)

type clickHouseProber struct {
	timeout time.Duration
}

func (p clickHouseProber) open(info ConnectionInfo) (*gorm.DB, error) {
	if info.User == "" || info.Host == "" {
		return nil, fmt.Errorf("Missing required fields (user, host)")
	}
	port := int(info.Port)
	if port == 0 {
		port = 9000
	}
	db := info.Database
	if db == "" {
		db = "default"
	}
	secs := int(p.timeout / time.Second)
	dsn := database.BuildClickHouseDSN(info.User, info.Password, info.Host, port, db, secs, secs)
	return gorm.Open(clickhouse.Open(dsn), &gorm.Config{Logger: database.NewGormLogger(false)})
}

func (p clickHouseProber) Test(ctx context.Context, info ConnectionInfo) Result {
	db, err := p.open(info)
	if err != nil {
		return failure("Connection failed: %v", err)
	}
	defer closeDB(db)

	if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return failure("Connection failed: %v", err)
	}
	return success("Successfully connected to ClickHouse")
}

func (p clickHouseProber) Metadata(ctx context.Context, info ConnectionInfo) ([]string, error) {
	db, err := p.open(info)
	if err != nil {
		return nil, err
	}
	defer closeDB(db)

	var tables []string
	if err := db.WithContext(ctx).Raw("SHOW TABLES").Scan(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}
