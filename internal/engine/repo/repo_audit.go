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
	"time"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/pkg/database"
)

type AuditFilter struct {
	UserID   string
	Action   string
	Resource string
}

type IAuditRepository interface {
	CreateAuditLog(entry *model.AuditLog) error
	// ListAuditLogs returns matching entries newest first
	ListAuditLogs(filter AuditFilter, skip, limit int) ([]*model.AuditLog, int64, error)
}

type AuditRepo struct {
	database.IDatabase
}

func NewAuditRepo(db database.IDatabase) IAuditRepository {
	return &AuditRepo{
		IDatabase: db,
	}
}

func (ar *AuditRepo) CreateAuditLog(entry *model.AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	// ClickHouse 没有自增主键
	if ar.AuditOnClickHouse() && entry.ID == 0 {
		entry.ID = uint64(time.Now().UnixNano())
	}
	return ar.AuditDatabase().Model(&model.AuditLog{}).Create(entry).Error
}

func (ar *AuditRepo) ListAuditLogs(filter AuditFilter, skip, limit int) ([]*model.AuditLog, int64, error) {
	var (
		logs  []*model.AuditLog
		total int64
	)

	query := ar.AuditDatabase().Model(&model.AuditLog{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(query.Order("timestamp DESC").Order("id DESC"), skip, limit).Find(&logs).Error
	return logs, total, err
}
