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
	"errors"
	"fmt"

	"github.com/go-arcade/ingest/pkg/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

type Manager interface {
	// MySQL returns the metadata store connection
	MySQL() *gorm.DB
	// ClickHouse returns the audit store connection, nil when not configured
	ClickHouse() *gorm.DB
	Close() error
}

type managerImpl struct {
	mysql      *gorm.DB
	clickHouse *gorm.DB
}

func (m *managerImpl) MySQL() *gorm.DB {
	return m.mysql
}

func (m *managerImpl) ClickHouse() *gorm.DB {
	return m.clickHouse
}

func (m *managerImpl) Close() error {
	var errs []error
	for name, db := range map[string]*gorm.DB{"MySQL": m.mysql, "ClickHouse": m.clickHouse} {
		if db == nil {
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// NewManager opens the MySQL metadata store and, when configured, the ClickHouse audit store.
func NewManager(cfg Database) (Manager, error) {
	m := &managerImpl{}

	mysqlDB, err := newMySQLConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MySQL: %w", err)
	}
	m.mysql = mysqlDB
	log.Infow("MySQL database connected", "host", cfg.MySQL.Host, "db", cfg.MySQL.DBName)

	if cfg.ClickHouse.Enabled() {
		chDB, err := NewClickHouseConnection(cfg.ClickHouse, cfg)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to connect ClickHouse: %w", err)
		}
		m.clickHouse = chDB
		log.Infow("ClickHouse database connected", "host", cfg.ClickHouse.Host, "db", cfg.ClickHouse.DBName)
	}
	return m, nil
}

func newMySQLConnection(cfg Database) (*gorm.DB, error) {
	c := cfg.MySQL
	dsn := BuildMySQLDSN(c.User, c.Password, c.Host, c.Port, c.DBName, 0)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(cfg.OutPut),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dataTablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if len(c.Replicas) > 0 {
		replicas, err := buildDialectors(c.Replicas)
		if err != nil {
			return nil, fmt.Errorf("failed to build replica dialectors: %w", err)
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas:          replicas,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: cfg.OutPut,
		}).
			SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime)).
			SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime)).
			SetMaxIdleConns(cfg.MaxIdleConns).
			SetMaxOpenConns(cfg.MaxOpenConns))
		if err != nil {
			return nil, fmt.Errorf("failed to register DBResolver plugin: %w", err)
		}
		log.Infow("MySQL read replicas registered", "replicas", len(replicas))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	return db, nil
}
