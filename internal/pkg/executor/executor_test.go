package executor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/ingest/pkg/taskconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookExecutor_Submit(t *testing.T) {
	var got Job
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	e := NewWebhookExecutor(Config{URL: srv.URL, Token: "t0k", Timeout: 2})
	job := &Job{
		TaskID:   7,
		RunID:    "01J0000000000000000000000",
		Name:     "job1",
		TaskType: taskconf.TaskSync,
		Config:   json.RawMessage(`{"source_id":1}`),
	}
	require.NoError(t, e.Submit(context.Background(), job))
	assert.Equal(t, uint64(7), got.TaskID)
	assert.Equal(t, "job1", got.Name)
	assert.JSONEq(t, `{"source_id":1}`, string(got.Config))
	assert.Equal(t, "Bearer t0k", auth)
}

func TestWebhookExecutor_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewWebhookExecutor(Config{URL: srv.URL, Timeout: 2})
	err := e.Submit(context.Background(), &Job{TaskID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestConfig_Callback(t *testing.T) {
	c := Config{CallbackURL: "http://ingest:8080/tasks/{id}/status"}
	assert.Equal(t, "http://ingest:8080/tasks/42/status", c.Callback(42))
	assert.Empty(t, Config{}.Callback(42))
}

type recordingExecutor struct {
	mu   sync.Mutex
	jobs []uint64
	err  error
	gate chan struct{}
}

func (r *recordingExecutor) Name() string { return "recording" }

func (r *recordingExecutor) Submit(ctx context.Context, job *Job) error {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job.TaskID)
	return r.err
}

func TestDispatcher_DeliversJobs(t *testing.T) {
	exec := &recordingExecutor{}
	d := NewDispatcher(exec, Config{MaxWorkers: 2, QueueSize: 10})
	require.NoError(t, d.Start())

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, d.Dispatch(&Job{TaskID: i}))
	}
	d.Stop()

	assert.ElementsMatch(t, []uint64{1, 2, 3, 4, 5}, exec.jobs)
	assert.ErrorIs(t, d.Dispatch(&Job{TaskID: 6}), ErrDispatcherStopped)
}

func TestDispatcher_ReportsFailures(t *testing.T) {
	exec := &recordingExecutor{err: errors.New("connection refused")}
	d := NewDispatcher(exec, Config{MaxWorkers: 1, QueueSize: 1})

	failed := make(chan uint64, 1)
	d.OnFailure(func(job *Job, err error) {
		assert.EqualError(t, err, "connection refused")
		failed <- job.TaskID
	})
	require.NoError(t, d.Start())
	defer d.Stop()

	require.NoError(t, d.Dispatch(&Job{TaskID: 9}))
	select {
	case id := <-failed:
		assert.Equal(t, uint64(9), id)
	case <-time.After(2 * time.Second):
		t.Fatal("failure handler not called")
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	exec := &recordingExecutor{gate: make(chan struct{})}
	d := NewDispatcher(exec, Config{MaxWorkers: 1, QueueSize: 1, Timeout: 5})
	require.NoError(t, d.Start())

	// the worker takes the first job and blocks, the second fills the queue
	require.NoError(t, d.Dispatch(&Job{TaskID: 1}))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, d.Dispatch(&Job{TaskID: 2}))
	assert.ErrorIs(t, d.Dispatch(&Job{TaskID: 3}), ErrQueueFull)

	close(exec.gate)
	d.Stop()
	assert.ElementsMatch(t, []uint64{1, 2}, exec.jobs)
}

func TestWebhookExecutor_SubmitsOnce(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
		key   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		key = r.Header.Get("X-Run-Id")
		mu.Unlock()
		// drop the connection without an answer
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	defer srv.Close()

	e := NewWebhookExecutor(Config{URL: srv.URL, Timeout: 2})
	err := e.Submit(context.Background(), &Job{TaskID: 1, RunID: "01J0000000000000000000001"})
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, "01J0000000000000000000001", key)
}
