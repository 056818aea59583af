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
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-arcade/ingest/pkg/log"
	"github.com/go-arcade/ingest/pkg/metrics"
	"github.com/go-arcade/ingest/pkg/safe"
)

var (
	ErrQueueFull         = errors.New("dispatch queue is full")
	ErrDispatcherStopped = errors.New("dispatcher is not running")
)

// FailureHandler 任务提交失败回调
type FailureHandler func(job *Job, err error)

// Dispatcher 有界协程池, 把任务交给 Executor
type Dispatcher struct {
	mu sync.RWMutex

	executor   Executor
	maxWorkers int
	conf       Config

	queue  chan *Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onFailure FailureHandler
	running   bool
}

// NewDispatcher 创建分发器, maxWorkers/queueSize 为 0 时按 CPU 计算
func NewDispatcher(executor Executor, conf Config) *Dispatcher {
	maxWorkers := conf.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = max(2, min(16, runtime.NumCPU()))
	}
	queueSize := conf.QueueSize
	if queueSize <= 0 {
		queueSize = maxWorkers * 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		executor:   executor,
		maxWorkers: maxWorkers,
		conf:       conf,
		queue:      make(chan *Job, queueSize),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// OnFailure 设置提交失败回调, 可在运行期间替换
func (d *Dispatcher) OnFailure(h FailureHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onFailure = h
}

// Start 启动工作协程
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("dispatcher already running")
	}
	for i := 0; i < d.maxWorkers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.running = true
	log.Infow("dispatcher started",
		"executor", d.executor.Name(),
		"workers", d.maxWorkers,
		"queue_size", cap(d.queue))
	return nil
}

// Stop 停止接收任务并等待队列中的任务提交完成
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
	log.Info("dispatcher stopped")
}

// Dispatch 入队, 队列满时立即返回 ErrQueueFull
func (d *Dispatcher) Dispatch(job *Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.running {
		return ErrDispatcherStopped
	}
	select {
	case d.queue <- job:
		metrics.DispatchQueueDepth.Set(float64(len(d.queue)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Executor returns the executor jobs are handed to.
func (d *Dispatcher) Executor() Executor {
	return d.executor
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for job := range d.queue {
		metrics.DispatchQueueDepth.Set(float64(len(d.queue)))
		d.submit(id, job)
	}
}

func (d *Dispatcher) submit(worker int, job *Job) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panic: %v", r)
		}
		if err != nil {
			d.fail(job, err)
		}
	}()

	ctx, cancel := context.WithTimeout(d.ctx, d.conf.SubmitTimeout())
	defer cancel()

	err = d.executor.Submit(ctx, job)
	if err == nil {
		log.Infow("job dispatched",
			"worker", worker,
			"task_id", job.TaskID,
			"run_id", job.RunID,
			"executor", d.executor.Name())
	}
}

func (d *Dispatcher) fail(job *Job, err error) {
	metrics.TaskDispatchErrorsTotal.WithLabelValues(d.executor.Name()).Inc()
	log.Errorw("job dispatch failed",
		"task_id", job.TaskID,
		"run_id", job.RunID,
		"error", err)

	d.mu.RLock()
	h := d.onFailure
	d.mu.RUnlock()
	if h != nil {
		// 回调 panic 不能带走 worker
		safe.Do(func() { h(job, err) })
	}
}
