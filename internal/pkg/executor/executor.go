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

package executor

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-arcade/ingest/pkg/taskconf"
)

// Executor 定义了任务执行器的统一接口
// 执行器只负责接收任务, 执行结果通过 PUT /tasks/{id}/status 异步回报
type Executor interface {
	// Submit 提交一个任务, 返回 nil 表示执行器已接受
	Submit(ctx context.Context, job *Job) error

	// Name 返回执行器名称
	Name() string
}

// Job 提交给执行器的任务描述
type Job struct {
	TaskID      uint64            `json:"task_id"`
	RunID       string            `json:"run_id"`
	Name        string            `json:"name"`
	TaskType    taskconf.TaskType `json:"task_type"`
	Config      json.RawMessage   `json:"config"`
	CallbackURL string            `json:"callback_url,omitempty"`
}

// Config 执行器配置
type Config struct {
	URL string // webhook 地址, 为空时使用 noop executor
	// CallbackURL 执行器回报状态的地址, {id} 会被替换为任务 ID
	CallbackURL string
	Token       string
	MaxWorkers  int
	QueueSize   int
	Timeout     int // seconds, 单次提交超时
}

func (c Config) SubmitTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// Callback returns the status callback of a task, empty when not configured.
func (c Config) Callback(taskID uint64) string {
	if c.CallbackURL == "" {
		return ""
	}
	return strings.ReplaceAll(c.CallbackURL, "{id}", strconv.FormatUint(taskID, 10))
}
