package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/engine/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu    sync.Mutex
	tasks []*model.Task
	runs  map[uint64]int
	err   error
}

func (f *fakeRunner) RunScheduled(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runs == nil {
		f.runs = map[uint64]int{}
	}
	f.runs[id]++
	return f.err
}

func (f *fakeRunner) ScheduledTasks() ([]*model.Task, error) {
	return f.tasks, nil
}

func (f *fakeRunner) count(id uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[id]
}

func task(id uint64, schedule string) *model.Task {
	t := &model.Task{Schedule: schedule}
	t.ID = id
	return t
}

func TestScheduler_LoadsAndRuns(t *testing.T) {
	runner := &fakeRunner{tasks: []*model.Task{
		task(1, "@every 1s"),
		task(2, "not a cron"),
		task(3, "0 3 * * *"),
	}}
	s := New(runner)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 2, s.Len(), "invalid schedule is skipped")
	assert.Eventually(t, func() bool { return runner.count(1) > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.Zero(t, runner.count(3))
}

func TestScheduler_ScheduleReplacesAndUnschedules(t *testing.T) {
	s := New(&fakeRunner{})
	s.Schedule(task(7, "0 3 * * *"))
	s.Schedule(task(7, "0 4 * * *"))
	assert.Equal(t, 1, s.Len())

	s.Schedule(task(7, ""))
	assert.Zero(t, s.Len())

	s.Schedule(task(8, "0 4 * * *"))
	s.Unschedule(8)
	s.Unschedule(8)
	assert.Zero(t, s.Len())
}

func TestScheduler_TickDropsDeletedTask(t *testing.T) {
	runner := &fakeRunner{err: service.ErrTaskNotFound}
	s := New(runner)
	s.Schedule(task(9, "0 3 * * *"))
	require.Equal(t, 1, s.Len())

	s.tick(9)
	assert.Zero(t, s.Len())

	runner.err = service.ErrAlreadyRunning
	s.Schedule(task(9, "0 3 * * *"))
	s.tick(9)
	assert.Equal(t, 1, s.Len())
}
