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

package statemachine

import "fmt"

// TaskStatus 任务执行状态
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskRunning TaskStatus = "running"
	TaskSuccess TaskStatus = "success"
	TaskFailed  TaskStatus = "failed"
)

// IsTerminal 判断是否为终止状态
func (ts TaskStatus) IsTerminal() bool {
	return ts == TaskSuccess || ts == TaskFailed
}

// IsValid reports whether ts is one of the known statuses.
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskPending, TaskRunning, TaskSuccess, TaskFailed:
		return true
	}
	return false
}

// VerificationStatus 同步后校验结果, 与 TaskStatus 正交
type VerificationStatus string

const (
	VerificationNone    VerificationStatus = "none"
	VerificationSuccess VerificationStatus = "success"
	VerificationFailed  VerificationStatus = "failed"
)

// IsValid reports whether vs is one of the known verification statuses.
func (vs VerificationStatus) IsValid() bool {
	switch vs {
	case VerificationNone, VerificationSuccess, VerificationFailed:
		return true
	}
	return false
}

// NewTaskStateMachine 创建任务状态机
//
// pending -> running -> success | failed. Terminal tasks only leave their state
// through an explicit re-run.
func NewTaskStateMachine() *StateMachine[TaskStatus] {
	sm := NewWithState(TaskPending)
	sm.Allow(TaskPending, TaskRunning).
		Allow(TaskRunning, TaskSuccess, TaskFailed).
		Allow(TaskSuccess, TaskRunning).
		Allow(TaskFailed, TaskRunning)
	return sm
}

// CheckVerification enforces that a verification result is only recorded on a
// successful task.
func CheckVerification(status TaskStatus, vs VerificationStatus) error {
	if !vs.IsValid() {
		return fmt.Errorf("unknown verification status %q", vs)
	}
	if vs != VerificationNone && status != TaskSuccess {
		return fmt.Errorf("%w: verification %s requires status %s, got %s",
			ErrInvalidTransition, vs, TaskSuccess, status)
	}
	return nil
}

// CheckProgress enforces 0..100 and monotonic progress while running.
func CheckProgress(status TaskStatus, prev, next int) error {
	if next < 0 || next > 100 {
		return fmt.Errorf("progress %d out of range [0,100]", next)
	}
	if status == TaskRunning && next < prev {
		return fmt.Errorf("%w: progress must not decrease while running (%d -> %d)",
			ErrInvalidTransition, prev, next)
	}
	return nil
}
