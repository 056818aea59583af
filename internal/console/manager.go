package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-arcade/ingest/pkg/statemachine"
	"github.com/go-arcade/ingest/pkg/taskconf"
)

// Filter narrows the task list, Name is a substring match.
type Filter struct {
	Name string
}

// Manager owns the console's view of all tasks. Every list request is tagged
// with a generation; results are applied in generation order so a slow
// response never overwrites a newer one.
type Manager struct {
	client   *Client
	builder  *taskconf.Builder
	sources  taskconf.SourceLookup
	resolver *Resolver

	gen atomic.Uint64

	mu       sync.Mutex
	applied  uint64
	observed map[uint64]observedTask
	// deleted 记录删除完成时已发出的最大 generation，不晚于它的轮询结果中该任务被忽略
	deleted map[uint64]uint64
	// started 同理，覆盖 run 之前发出的轮询结果
	started  map[uint64]uint64
	inflight map[uint64]struct{}
}

func NewManager(client *Client) *Manager {
	m := &Manager{
		client:   client,
		resolver: NewResolver(client),
		observed: make(map[uint64]observedTask),
		deleted:  make(map[uint64]uint64),
		started:  make(map[uint64]uint64),
		inflight: make(map[uint64]struct{}),
	}
	m.sources = taskconf.SourceLookupFunc(m.sourceType)
	m.builder = taskconf.NewBuilder(m.sources)
	return m
}

func (m *Manager) Resolver() *Resolver {
	return m.resolver
}

func (m *Manager) sourceType(ctx context.Context, id uint64) (taskconf.SourceType, error) {
	ds, err := m.client.GetDataSource(ctx, id)
	if IsNotFound(err) {
		return "", taskconf.ErrSourceNotFound
	}
	if err != nil {
		return "", err
	}
	return ds.Type, nil
}

// List fetches one page, page is 1-based.
func (m *Manager) List(ctx context.Context, filter Filter, page, pageSize int) (*TaskPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	gen := m.gen.Add(1)
	res, err := m.client.ListTasks(ctx, strings.TrimSpace(filter.Name), (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	res.Generation = gen
	m.apply(res)
	m.resolver.Observe(gen, res.Items)
	return res, nil
}

func (m *Manager) apply(res *TaskPage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gen := res.Generation
	items := res.Items[:0]
	for _, t := range res.Items {
		if delGen, ok := m.deleted[t.ID]; ok {
			if gen <= delGen {
				res.Total--
				continue
			}
			delete(m.deleted, t.ID)
		}
		if runGen, ok := m.started[t.ID]; ok {
			if gen <= runGen {
				markRunning(&t)
			} else {
				delete(m.started, t.ID)
			}
		}
		items = append(items, t)
	}
	res.Items = items
	if res.Total < int64(len(items)) {
		res.Total = int64(len(items))
	}

	if gen <= m.applied {
		return
	}
	m.applied = gen
	for _, t := range items {
		m.observed[t.ID] = observedTask{Task: t, gen: gen}
	}
}

// Observed returns the last applied state of id.
func (m *Manager) Observed(id uint64) (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.observed[id]
	return o.Task, ok
}

// observedTask is a task as of the generation it was applied in.
type observedTask struct {
	Task
	gen uint64
}

// current reports whether o is at least as new as the newest applied page.
// A task missing from later pages (other filter, other page) is not current.
func (m *Manager) current(o observedTask) bool {
	return o.gen >= m.applied
}

// CreateOption customizes a create request.
type CreateOption func(*CreateTaskRequest)

// WithSchedule attaches a cron schedule to the created task.
func WithSchedule(expr string) CreateOption {
	return func(r *CreateTaskRequest) {
		r.Schedule = strings.TrimSpace(expr)
	}
}

// Create validates config under taskType and creates the task. Invalid input
// fails with a *taskconf.ValidationError before any request is sent.
func (m *Manager) Create(ctx context.Context, name string, taskType taskconf.TaskType, config []byte, opts ...CreateOption) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &taskconf.ValidationError{Kind: taskconf.KindIncompleteSelection, Message: "missing task name"}
	}
	cfg, err := taskconf.ParseConfig(taskType, config)
	if err != nil {
		return nil, err
	}
	if sc, ok := cfg.(*taskconf.SyncConfig); ok {
		if err := taskconf.SanitizeConfig(ctx, sc, m.sources); err != nil {
			return nil, err
		}
	}
	return m.submit(ctx, name, taskType, cfg, opts)
}

// CreateFromSelections builds a sync configuration from form selections and
// creates the task.
func (m *Manager) CreateFromSelections(ctx context.Context, name string, taskType taskconf.TaskType,
	sel taskconf.SyncSelections, toggles taskconf.OperatorToggles, opts ...CreateOption) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &taskconf.ValidationError{Kind: taskconf.KindIncompleteSelection, Message: "missing task name"}
	}
	cfg, err := m.builder.Build(ctx, taskType, sel, toggles)
	if err != nil {
		return nil, err
	}
	return m.submit(ctx, name, taskType, cfg, opts)
}

func (m *Manager) submit(ctx context.Context, name string, taskType taskconf.TaskType, cfg taskconf.Config, opts []CreateOption) (*Task, error) {
	raw, err := taskconf.Encode(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode task config: %w", err)
	}
	req := &CreateTaskRequest{Name: name, TaskType: taskType, Config: json.RawMessage(raw)}
	for _, opt := range opts {
		opt(req)
	}
	return m.client.CreateTask(ctx, req)
}

// Run starts id. It fails with ErrAlreadyRunning when the newest applied page
// shows the task running, a run of it is in flight from this console, or the
// engine refuses with 409. An older observation is left to the engine.
func (m *Manager) Run(ctx context.Context, id uint64) error {
	m.mu.Lock()
	if o, ok := m.observed[id]; ok && m.current(o) && o.Status == statemachine.TaskRunning {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	if _, ok := m.inflight[id]; ok {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.inflight[id] = struct{}{}
	m.mu.Unlock()

	err := m.client.RunTask(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, id)
	if IsConflict(err) {
		return fmt.Errorf("%w: %v", ErrAlreadyRunning, err)
	}
	if err != nil {
		return err
	}

	gen := m.gen.Load()
	o, ok := m.observed[id]
	if !ok {
		o.Task = Task{ID: id}
	}
	markRunning(&o.Task)
	// 本地标记, 直到之后发出的轮询结果覆盖
	o.gen = gen
	m.observed[id] = o
	m.started[id] = gen
	m.resolver.Forget(id, gen)
	return nil
}

// DeleteOne removes id. A task that is already gone counts as removed.
func (m *Manager) DeleteOne(ctx context.Context, id uint64) error {
	if err := m.client.DeleteTask(ctx, id); err != nil && !IsNotFound(err) {
		return err
	}
	m.forget(id)
	return nil
}

// DeleteMany removes ids in one request.
func (m *Manager) DeleteMany(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := m.client.DeleteTasks(ctx, ids); err != nil && !IsNotFound(err) {
		return err
	}
	m.forget(ids...)
	return nil
}

func (m *Manager) forget(ids ...uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen := m.gen.Load()
	for _, id := range ids {
		delete(m.observed, id)
		delete(m.started, id)
		m.deleted[id] = gen
		m.resolver.Forget(id, gen)
	}
}

func markRunning(t *Task) {
	t.Status = statemachine.TaskRunning
	t.Progress = 0
	t.VerificationStatus = statemachine.VerificationNone
}
