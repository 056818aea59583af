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

import "gorm.io/gorm"

type IDatabase interface {
	// Database returns the metadata store (MySQL)
	Database() *gorm.DB
	// AuditDatabase returns the audit store: ClickHouse when configured, else MySQL
	AuditDatabase() *gorm.DB
	// AuditOnClickHouse reports whether AuditDatabase is ClickHouse
	AuditOnClickHouse() bool
}

type databaseAdapter struct {
	manager Manager
}

func NewDatabaseAdapter(manager Manager) IDatabase {
	return &databaseAdapter{manager: manager}
}

func (d *databaseAdapter) Database() *gorm.DB {
	return d.manager.MySQL()
}

func (d *databaseAdapter) AuditDatabase() *gorm.DB {
	if ch := d.manager.ClickHouse(); ch != nil {
		return ch
	}
	return d.manager.MySQL()
}

func (d *databaseAdapter) AuditOnClickHouse() bool {
	return d.manager.ClickHouse() != nil
}

// AutoMigrate creates or updates the tables of models.
func AutoMigrate(db *gorm.DB, models ...any) error {
	return db.AutoMigrate(models...)
}
