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

type DataSourceFilter struct {
	Name string // substring
	Type string
}

type IDataSourceRepository interface {
	CreateDataSource(ds *model.DataSource) error
	UpdateDataSource(ds *model.DataSource) error
	GetDataSource(id uint64) (*model.DataSource, error)
	ListDataSources(filter DataSourceFilter, skip, limit int) ([]*model.DataSource, int64, error)
	DeleteDataSource(id uint64) error
}

type DataSourceRepo struct {
	database.IDatabase
}

func NewDataSourceRepo(db database.IDatabase) IDataSourceRepository {
	return &DataSourceRepo{
		IDatabase: db,
	}
}

func (dr *DataSourceRepo) CreateDataSource(ds *model.DataSource) error {
	return dr.Database().Table(ds.TableName()).Create(ds).Error
}

// UpdateDataSource updates name, description and connection_info, type is immutable
func (dr *DataSourceRepo) UpdateDataSource(ds *model.DataSource) error {
	ds.UpdatedAt = time.Now()
	return dr.Database().Table(ds.TableName()).
		Where("id = ?", ds.ID).
		Select("name", "description", "connection_info", "updated_at").
		Updates(ds).Error
}

func (dr *DataSourceRepo) GetDataSource(id uint64) (*model.DataSource, error) {
	var ds model.DataSource
	err := dr.Database().Table(ds.TableName()).
		Where("id = ?", id).
		First(&ds).Error
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

func (dr *DataSourceRepo) ListDataSources(filter DataSourceFilter, skip, limit int) ([]*model.DataSource, int64, error) {
	var (
		list  []*model.DataSource
		ds    model.DataSource
		total int64
	)

	query := dr.Database().Table(ds.TableName())
	if filter.Name != "" {
		query = nameContains(query, "name", filter.Name)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(query.Order("id DESC"), skip, limit).Find(&list).Error
	return list, total, err
}

func (dr *DataSourceRepo) DeleteDataSource(id uint64) error {
	var ds model.DataSource
	return dr.Database().Table(ds.TableName()).
		Where("id = ?", id).
		Delete(&model.DataSource{}).Error
}
