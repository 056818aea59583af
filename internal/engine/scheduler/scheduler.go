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

// Package scheduler runs tasks on their cron schedule.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/engine/service"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/go-arcade/ingest/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// Runner starts a task run and lists the tasks that carry a schedule.
type Runner interface {
	RunScheduled(ctx context.Context, id uint64) error
	ScheduledTasks() ([]*model.Task, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[uint64]cron.EntryID // taskID -> EntryID
}

func New(runner Runner) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		runner:  runner,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[uint64]cron.EntryID),
	}
}

// Start registers every scheduled task and starts the cron loop.
func (s *Scheduler) Start() error {
	tasks, err := s.runner.ScheduledTasks()
	if err != nil {
		return err
	}
	for _, task := range tasks {
		s.Schedule(task)
	}
	s.cron.Start()
	log.Infow("scheduler started", "tasks", s.Len())
	return nil
}

// Stop halts the cron loop and waits for running ticks.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Info("scheduler stopped")
}

// Schedule registers or replaces the entry of a task. An empty schedule only
// removes it.
func (s *Scheduler) Schedule(task *model.Task) {
	s.Unschedule(task.ID)
	if task.Schedule == "" {
		return
	}

	spec, err := cron.ParseStandard(task.Schedule)
	if err != nil {
		log.Warnw("skip task with invalid schedule",
			"task_id", task.ID,
			"schedule", task.Schedule,
			"error", err)
		return
	}

	taskID := task.ID
	entryID := s.cron.Schedule(spec, cron.FuncJob(func() {
		s.tick(taskID)
	}))

	s.mu.Lock()
	s.entries[taskID] = entryID
	metrics.ScheduledTasks.Set(float64(len(s.entries)))
	s.mu.Unlock()

	log.Infow("task scheduled",
		"task_id", taskID,
		"schedule", task.Schedule)
}

func (s *Scheduler) Unschedule(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entryID, ok := s.entries[id]
	if !ok {
		return
	}
	s.cron.Remove(entryID)
	delete(s.entries, id)
	metrics.ScheduledTasks.Set(float64(len(s.entries)))
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) tick(id uint64) {
	err := s.runner.RunScheduled(s.ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrAlreadyRunning):
		log.Infow("scheduled run skipped, task is still running", "task_id", id)
	case errors.Is(err, service.ErrTaskNotFound):
		s.Unschedule(id)
	default:
		log.Errorw("scheduled run failed", "task_id", id, "error", err)
	}
}

// cronLogger routes cron's own messages to zap.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debugw("[Cron] "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Errorw("[Cron] "+msg, append(keysAndValues, "error", err)...)
}
