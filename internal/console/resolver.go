package console

import (
	"context"
	"sync"
	"time"

	"github.com/go-arcade/ingest/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	ActionTaskFailed         = "task_failed"
	ActionVerificationFailed = "verification_failed"

	defaultAuditWindow      = 10
	defaultResolveParallels = 4
)

// AuditSource is the part of the engine the Resolver reads.
type AuditSource interface {
	ListAudit(ctx context.Context, q AuditQuery) (*AuditPage, error)
}

// observation is the newest state seen for one task id.
type observation struct {
	gen     uint64
	failing bool
}

// attribution is a cached cause, valid while the failure it was resolved for
// is still the one being shown.
type attribution struct {
	gen          uint64
	updatedAt    time.Time
	verification bool
	message      string
}

// Resolver attributes failed tasks to audit log entries. It is the only
// writer of the error map; lookups run concurrently and publish under mu.
type Resolver struct {
	audit     AuditSource
	window    int
	parallels int

	mu       sync.RWMutex
	latest   map[uint64]observation
	messages map[uint64]attribution
}

func NewResolver(audit AuditSource) *Resolver {
	return &Resolver{
		audit:     audit,
		window:    defaultAuditWindow,
		parallels: defaultResolveParallels,
		latest:    make(map[uint64]observation),
		messages:  make(map[uint64]attribution),
	}
}

// Observe records the task states of poll generation gen. Observations older
// than what is already known for a task are ignored. A task seen in a
// non-failing state loses its cached message.
func (r *Resolver) Observe(gen uint64, tasks []Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range tasks {
		t := &tasks[i]
		if prev, ok := r.latest[t.ID]; ok && gen < prev.gen {
			continue
		}
		failing := t.IsFailing()
		r.latest[t.ID] = observation{gen: gen, failing: failing}
		if !failing {
			delete(r.messages, t.ID)
		}
	}
}

// Forget drops the cached message of id and marks it non-failing as of gen,
// e.g. after the task was re-run or deleted.
func (r *Resolver) Forget(id, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.latest[id]; !ok || gen >= prev.gen {
		r.latest[id] = observation{gen: gen}
	}
	delete(r.messages, id)
}

// Message returns the cached cause for id, if any.
func (r *Resolver) Message(id uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.messages[id]
	if !ok || a.message == "" {
		return "", false
	}
	return a.message, true
}

// Resolve looks up causes for the failing tasks of generation gen that have no
// valid cached message, then returns the messages known for tasks. Lookup
// errors are logged and leave the task without a message.
func (r *Resolver) Resolve(ctx context.Context, gen uint64, tasks []Task) map[uint64]string {
	r.Observe(gen, tasks)

	var g errgroup.Group
	g.SetLimit(r.parallels)
	for i := range tasks {
		task := tasks[i]
		if !task.IsFailing() || r.cached(&task) {
			continue
		}
		g.Go(func() error {
			r.lookup(ctx, gen, &task)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[uint64]string)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range tasks {
		if a, ok := r.messages[tasks[i].ID]; ok && a.message != "" {
			out[tasks[i].ID] = a.message
		}
	}
	return out
}

// cached reports whether the stored attribution belongs to this failure.
func (r *Resolver) cached(t *Task) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.messages[t.ID]
	return ok && a.updatedAt.Equal(t.UpdatedAt) && a.verification == t.VerificationFailing()
}

func (r *Resolver) lookup(ctx context.Context, gen uint64, t *Task) {
	page, err := r.audit.ListAudit(ctx, AuditQuery{Resource: t.Name, Limit: r.window})
	if err != nil {
		log.Warnw("resolve task failure cause", "task_id", t.ID, "task", t.Name, "error", err)
		return
	}
	message, _ := Attribute(t, page.Items)

	r.mu.Lock()
	defer r.mu.Unlock()
	// 结果返回前任务可能已被新一轮轮询看到不再失败
	latest, ok := r.latest[t.ID]
	if !ok || !latest.failing || gen < latest.gen {
		return
	}
	if prev, ok := r.messages[t.ID]; ok && prev.gen > gen {
		return
	}
	r.messages[t.ID] = attribution{
		gen:          gen,
		updatedAt:    t.UpdatedAt,
		verification: t.VerificationFailing(),
		message:      message,
	}
}

// Attribute picks the cause of t's failure from audit entries ordered newest
// first: the first task_failed or verification_failed entry for t, with
// verification_failed preferred when verification is the failing signal.
// Entries without details are skipped.
func Attribute(t *Task, entries []AuditLogEntry) (string, bool) {
	if !t.IsFailing() {
		return "", false
	}
	var first *AuditLogEntry
	for i := range entries {
		e := &entries[i]
		if e.Resource != t.Name || e.Details == "" {
			continue
		}
		switch e.Action {
		case ActionVerificationFailed:
			if t.VerificationFailing() {
				return e.Details, true
			}
		case ActionTaskFailed:
		default:
			continue
		}
		if first == nil {
			first = e
		}
	}
	if first == nil {
		return "", false
	}
	return first.Details, true
}
