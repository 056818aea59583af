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

package service

import (
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/internal/pkg/executor"
	"github.com/go-arcade/ingest/internal/pkg/probe"
)

// Services 统一管理所有 service
type Services struct {
	DataSource *DataSourceService
	Task       *TaskService
	Audit      *AuditService
	Asset      *AssetService
}

// NewServices 初始化所有 service
func NewServices(repos *repo.Repositories, probes *probe.Registry, dispatcher JobDispatcher, execConf executor.Config, stores Stores) *Services {
	auditSvc := NewAuditService(repos.Audit)
	dsSvc := NewDataSourceService(repos.DataSource, probes, auditSvc)
	return &Services{
		DataSource: dsSvc,
		Task:       NewTaskService(repos, dsSvc, dispatcher, auditSvc, execConf),
		Audit:      auditSvc,
		Asset:      NewAssetService(repos.SyncedTable, stores, auditSvc),
	}
}
