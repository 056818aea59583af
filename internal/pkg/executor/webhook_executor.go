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
	"fmt"

	"github.com/go-arcade/ingest/pkg/log"
	"github.com/go-resty/resty/v2"
)

// WebhookExecutor POST 任务到外部执行引擎
type WebhookExecutor struct {
	client *resty.Client
	url    string
}

// NewWebhookExecutor 创建 webhook 执行器
func NewWebhookExecutor(conf Config) *WebhookExecutor {
	client := resty.New()
	client.SetTimeout(conf.SubmitTimeout())
	client.SetHeader("Content-Type", "application/json")
	// 不重试, 同一 run 只提交一次
	if conf.Token != "" {
		client.SetAuthToken(conf.Token)
	}

	return &WebhookExecutor{
		client: client,
		url:    conf.URL,
	}
}

// Name 返回执行器名称
func (e *WebhookExecutor) Name() string {
	return "webhook"
}

// Submit 提交任务, 2xx 视为接受
func (e *WebhookExecutor) Submit(ctx context.Context, job *Job) error {
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("X-Run-Id", job.RunID).
		SetBody(job).
		Post(e.url)
	if err != nil {
		return fmt.Errorf("submit job to %s: %w", e.url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("executor rejected job: status %d: %s", resp.StatusCode(), truncate(resp.String(), 256))
	}

	log.Debugw("job submitted",
		"task_id", job.TaskID,
		"run_id", job.RunID,
		"status_code", resp.StatusCode(),
		"duration", resp.Time())
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
