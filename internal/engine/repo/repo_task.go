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
	"github.com/go-arcade/ingest/pkg/statemachine"
)

type ITaskRepository interface {
	CreateTask(task *model.Task) error
	GetTask(id uint64) (*model.Task, error)
	GetTasksByIDs(ids []uint64) ([]*model.Task, error)
	ListTasks(name string, skip, limit int) ([]*model.Task, int64, error)
	ListScheduledTasks() ([]*model.Task, error)
	// MarkRunning moves a task that is not running to running, reporting
	// false when another caller got there first.
	MarkRunning(id uint64, runID string) (bool, error)
	// UpdateRunState writes status, progress and verification when the
	// stored status still equals expect.
	UpdateRunState(task *model.Task, expect statemachine.TaskStatus) (bool, error)
	DeleteTasks(ids []uint64) (int64, error)
}

type TaskRepo struct {
	database.IDatabase
}

func NewTaskRepo(db database.IDatabase) ITaskRepository {
	return &TaskRepo{
		IDatabase: db,
	}
}

func (tr *TaskRepo) CreateTask(task *model.Task) error {
	return tr.Database().Table(task.TableName()).Create(task).Error
}

func (tr *TaskRepo) GetTask(id uint64) (*model.Task, error) {
	var task model.Task
	err := tr.Database().Table(task.TableName()).
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tr *TaskRepo) GetTasksByIDs(ids []uint64) ([]*model.Task, error) {
	var (
		tasks []*model.Task
		task  model.Task
	)
	if len(ids) == 0 {
		return tasks, nil
	}
	err := tr.Database().Table(task.TableName()).
		Where("id IN ?", ids).
		Find(&tasks).Error
	return tasks, err
}

// ListTasks 按名称模糊匹配分页查询
func (tr *TaskRepo) ListTasks(name string, skip, limit int) ([]*model.Task, int64, error) {
	var (
		tasks []*model.Task
		task  model.Task
		total int64
	)

	query := tr.Database().Table(task.TableName())
	if name != "" {
		query = nameContains(query, "name", name)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(query.Order("id DESC"), skip, limit).Find(&tasks).Error
	return tasks, total, err
}

func (tr *TaskRepo) ListScheduledTasks() ([]*model.Task, error) {
	var (
		tasks []*model.Task
		task  model.Task
	)
	err := tr.Database().Table(task.TableName()).
		Where("schedule <> ''").
		Find(&tasks).Error
	return tasks, err
}

func (tr *TaskRepo) MarkRunning(id uint64, runID string) (bool, error) {
	var task model.Task
	res := tr.Database().Table(task.TableName()).
		Where("id = ? AND status <> ?", id, statemachine.TaskRunning).
		Updates(map[string]any{
			"status":              statemachine.TaskRunning,
			"progress":            0,
			"verification_status": statemachine.VerificationNone,
			"run_id":              runID,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (tr *TaskRepo) UpdateRunState(task *model.Task, expect statemachine.TaskStatus) (bool, error) {
	res := tr.Database().Table(task.TableName()).
		Where("id = ? AND status = ?", task.ID, expect).
		Updates(map[string]any{
			"status":              task.Status,
			"progress":            task.Progress,
			"verification_status": task.VerificationStatus,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (tr *TaskRepo) DeleteTasks(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var task model.Task
	res := tr.Database().Table(task.TableName()).
		Where("id IN ?", ids).
		Delete(&model.Task{})
	return res.RowsAffected, res.Error
}
