// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"context"
	"fmt"
	"time"

	chgorm "gorm.io/driver/clickhouse"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	dataTablePrefix = "t_"
	logTablePrefix  = "l_"
)

// NewClickHouseConnection opens the ClickHouse audit store.
func NewClickHouseConnection(chCfg ClickHouseConfig, commonCfg Database) (*gorm.DB, error) {
	dsn := BuildClickHouseDSN(chCfg.Username, chCfg.Password, chCfg.Host, chCfg.Port,
		chCfg.DBName, chCfg.DialTimeout, chCfg.ReadTimeout)

	db, err := gorm.Open(chgorm.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(commonCfg.OutPut),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   logTablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(commonCfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(commonCfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(commonCfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(commonCfg.MaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return db, nil
}
