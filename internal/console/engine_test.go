package console

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/ingest/pkg/statemachine"
	"github.com/go-arcade/ingest/pkg/taskconf"
)

// fakeEngine serves the engine REST surface from memory.
type fakeEngine struct {
	mu       sync.Mutex
	srv      *httptest.Server
	nextID   uint64
	sources  map[uint64]DataSource
	tasks    map[uint64]Task
	audit    []AuditLogEntry
	calls    map[string]int
	auditErr bool
	// listHook runs before a list answer is written, with the lock released.
	listHook func()
	// runHook runs before a run answer is written, with the lock released.
	runHook func()
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	e := &fakeEngine{
		nextID:  100,
		sources: make(map[uint64]DataSource),
		tasks:   make(map[uint64]Task),
		calls:   make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /datasources/{id}", e.getDataSource)
	mux.HandleFunc("GET /tasks/{$}", e.listTasks)
	mux.HandleFunc("POST /tasks/{$}", e.createTask)
	mux.HandleFunc("DELETE /tasks/{$}", e.deleteTasks)
	mux.HandleFunc("GET /tasks/{id}", e.getTask)
	mux.HandleFunc("DELETE /tasks/{id}", e.deleteTask)
	mux.HandleFunc("POST /tasks/{id}/run", e.runTask)
	mux.HandleFunc("GET /audit/{$}", e.listAudit)
	e.srv = httptest.NewServer(mux)
	t.Cleanup(e.srv.Close)
	return e
}

func (e *fakeEngine) client() *Client {
	return NewClient(ClientConfig{Server: e.srv.URL, Timeout: 5 * time.Second})
}

func (e *fakeEngine) addSource(id uint64, typ taskconf.SourceType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sources[id] = DataSource{ID: id, Name: "ds-" + strconv.FormatUint(id, 10), Type: typ}
}

func (e *fakeEngine) putTask(t Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}
	e.tasks[t.ID] = t
}

func (e *fakeEngine) setStatus(id uint64, status statemachine.TaskStatus, vs statemachine.VerificationStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tasks[id]
	t.Status = status
	t.VerificationStatus = vs
	t.UpdatedAt = t.UpdatedAt.Add(time.Second)
	e.tasks[id] = t
}

// addAudit prepends, keeping the log newest first.
func (e *fakeEngine) addAudit(resource, action, details string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry := AuditLogEntry{
		ID:        uint64(len(e.audit) + 1),
		UserID:    "system",
		Action:    action,
		Resource:  resource,
		Details:   details,
		Timestamp: time.Now(),
	}
	e.audit = append([]AuditLogEntry{entry}, e.audit...)
}

func (e *fakeEngine) count(key string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[key]
}

func (e *fakeEngine) hit(key string) {
	e.mu.Lock()
	e.calls[key]++
	e.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, map[string]any{"code": status, "errMsg": msg, "path": r.URL.Path})
}

func pathID(r *http.Request) uint64 {
	id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return id
}

func (e *fakeEngine) getDataSource(w http.ResponseWriter, r *http.Request) {
	e.hit("get_datasource")
	e.mu.Lock()
	ds, ok := e.sources[pathID(r)]
	e.mu.Unlock()
	if !ok {
		writeErr(w, r, http.StatusNotFound, "data source not found")
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (e *fakeEngine) listTasks(w http.ResponseWriter, r *http.Request) {
	e.hit("list_tasks")
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	name := r.URL.Query().Get("name")

	e.mu.Lock()
	var items []Task
	for _, t := range e.tasks {
		if name == "" || strings.Contains(t.Name, name) {
			items = append(items, t)
		}
	}
	hook := e.listHook
	e.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	total := len(items)
	if skip > len(items) {
		skip = len(items)
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	if hook != nil {
		hook()
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (e *fakeEngine) createTask(w http.ResponseWriter, r *http.Request) {
	e.hit("create_task")
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	e.mu.Lock()
	e.nextID++
	t := Task{
		ID:                 e.nextID,
		Name:               req.Name,
		TaskType:           req.TaskType,
		Config:             req.Config,
		Schedule:           req.Schedule,
		Status:             statemachine.TaskPending,
		VerificationStatus: statemachine.VerificationNone,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	e.tasks[t.ID] = t
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, t)
}

func (e *fakeEngine) getTask(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	t, ok := e.tasks[pathID(r)]
	e.mu.Unlock()
	if !ok {
		writeErr(w, r, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (e *fakeEngine) runTask(w http.ResponseWriter, r *http.Request) {
	e.hit("run_task")
	id := pathID(r)
	e.mu.Lock()
	t, ok := e.tasks[id]
	switch {
	case !ok:
		e.mu.Unlock()
		writeErr(w, r, http.StatusNotFound, "task not found")
		return
	case t.Status == statemachine.TaskRunning:
		e.mu.Unlock()
		writeErr(w, r, http.StatusConflict, "task is already running")
		return
	}
	markRunning(&t)
	t.UpdatedAt = t.UpdatedAt.Add(time.Second)
	e.tasks[id] = t
	hook := e.runHook
	e.mu.Unlock()
	if hook != nil {
		hook()
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Task started", "task_id": id})
}

func (e *fakeEngine) deleteTask(w http.ResponseWriter, r *http.Request) {
	e.hit("delete_task")
	id := pathID(r)
	e.mu.Lock()
	_, ok := e.tasks[id]
	delete(e.tasks, id)
	e.mu.Unlock()
	if !ok {
		writeErr(w, r, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (e *fakeEngine) deleteTasks(w http.ResponseWriter, r *http.Request) {
	e.hit("delete_tasks")
	var ids []uint64
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil || len(ids) == 0 {
		writeErr(w, r, http.StatusBadRequest, "task ids are required")
		return
	}
	e.mu.Lock()
	n := 0
	for _, id := range ids {
		if _, ok := e.tasks[id]; ok {
			delete(e.tasks, id)
			n++
		}
	}
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
}

func (e *fakeEngine) listAudit(w http.ResponseWriter, r *http.Request) {
	e.hit("list_audit")
	e.mu.Lock()
	fail := e.auditErr
	e.mu.Unlock()
	if fail {
		writeErr(w, r, http.StatusInternalServerError, "audit store unavailable")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	e.mu.Lock()
	var items []AuditLogEntry
	for _, entry := range e.audit {
		if res := q.Get("resource"); res != "" && entry.Resource != res {
			continue
		}
		if act := q.Get("action"); act != "" && entry.Action != act {
			continue
		}
		items = append(items, entry)
	}
	e.mu.Unlock()
	total := len(items)
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}
