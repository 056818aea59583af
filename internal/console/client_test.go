package console

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-arcade/ingest/pkg/statemachine"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListTasksPaging(t *testing.T) {
	e := newFakeEngine(t)
	for i := uint64(1); i <= 3; i++ {
		e.putTask(Task{ID: i, Name: "job" + string(rune('a'+i)), Status: statemachine.TaskPending})
	}
	c := e.client()

	page, err := c.ListTasks(context.Background(), "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, uint64(2), page.Items[0].ID)

	page, err = c.ListTasks(context.Background(), "jobd", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, uint64(3), page.Items[0].ID)
}

func TestClient_ErrorBody(t *testing.T) {
	e := newFakeEngine(t)
	c := e.client()

	_, err := c.GetTask(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "get task", re.Op)
	assert.Equal(t, http.StatusNotFound, re.Status)
	assert.Equal(t, "task not found", re.Message)
	assert.Contains(t, err.Error(), "task not found")
}

func TestClient_RunConflict(t *testing.T) {
	e := newFakeEngine(t)
	e.putTask(Task{ID: 1, Name: "job1", Status: statemachine.TaskRunning})

	err := e.client().RunTask(context.Background(), 1)
	assert.True(t, IsConflict(err))
}

func TestClient_TransportError(t *testing.T) {
	c := NewClient(ClientConfig{Server: "http://127.0.0.1:1"})
	_, err := c.ListTasks(context.Background(), "", 0, 10)
	require.Error(t, err)

	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 0, re.Status)
	assert.NotNil(t, re.Err)
	assert.False(t, IsNotFound(err))
}

func TestClient_DeleteTasksBody(t *testing.T) {
	e := newFakeEngine(t)
	e.putTask(Task{ID: 1, Name: "a"})
	e.putTask(Task{ID: 2, Name: "b"})
	e.putTask(Task{ID: 3, Name: "c"})

	require.NoError(t, e.client().DeleteTasks(context.Background(), []uint64{1, 3}))
	page, err := e.client().ListTasks(context.Background(), "", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, uint64(2), page.Items[0].ID)
}

func TestClient_ListAuditFilters(t *testing.T) {
	e := newFakeEngine(t)
	e.addAudit("job1", ActionTaskFailed, "old")
	e.addAudit("job2", ActionTaskFailed, "other")
	e.addAudit("job1", ActionTaskFailed, "new")

	page, err := e.client().ListAudit(context.Background(), AuditQuery{Resource: "job1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "new", page.Items[0].Details)
	assert.Equal(t, int64(2), page.Total)
}

func TestClient_GetDataSource(t *testing.T) {
	e := newFakeEngine(t)
	e.addSource(7, taskconf.SourceClickHouse)

	ds, err := e.client().GetDataSource(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, taskconf.SourceClickHouse, ds.Type)
}

func TestClient_DataManagement(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.RequestURI())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"columns":["id"],"data":[{"id":3,"_rowid":3}],"total":9,"meta":{"source":"mysql","editable":true,"rowid_col":"id"}}`))
		case strings.HasSuffix(r.URL.Path, "/row/404"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":4045,"errMsg":"Row not found"}`))
		default:
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()
	c := NewClient(ClientConfig{Server: srv.URL})
	ctx := context.Background()

	p, err := c.PreviewAsset(ctx, "ods_orders", 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 9, p.Total)
	require.NotNil(t, p.Meta.RowIDColumn)
	assert.Equal(t, "id", *p.Meta.RowIDColumn)

	require.NoError(t, c.DeleteAsset(ctx, "ods_orders"))
	require.NoError(t, c.DeleteRow(ctx, "ods_orders", "3"))
	err = c.DeleteRow(ctx, "ods_orders", "404")
	assert.True(t, IsNotFound(err))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /data-mgmt/preview?limit=1&offset=2&path=ods_orders",
		"DELETE /data-mgmt/ods_orders",
		"DELETE /data-mgmt/table/ods_orders/row/3",
		"DELETE /data-mgmt/table/ods_orders/row/404",
	}, paths)
}
