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

package repo

import (
	"strings"

	"github.com/go-arcade/ingest/pkg/database"
	"gorm.io/gorm"
)

// Repositories 统一管理所有 repository
type Repositories struct {
	DataSource  IDataSourceRepository
	Task        ITaskRepository
	Audit       IAuditRepository
	SyncedTable ISyncedTableRepository
}

// NewRepositories 初始化所有 repository
func NewRepositories(db database.IDatabase) *Repositories {
	return &Repositories{
		DataSource:  NewDataSourceRepo(db),
		Task:        NewTaskRepo(db),
		Audit:       NewAuditRepo(db),
		SyncedTable: NewSyncedTableRepo(db),
	}
}

// page applies skip/limit, limit <= 0 means no limit
func page(tx *gorm.DB, skip, limit int) *gorm.DB {
	if skip > 0 {
		tx = tx.Offset(skip)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	return tx
}

// nameContains 子串匹配, 转义 LIKE 通配符; '!' 作转义符, MySQL 与 sqlite 通用
func nameContains(tx *gorm.DB, column, sub string) *gorm.DB {
	return tx.Where(column+" LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(sub)+"%")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
