package console

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientConfig 连接 engine 的配置
type ClientConfig struct {
	Server  string
	Timeout time.Duration
	Retry   int
}

// Client calls the engine REST surface.
type Client struct {
	rc *resty.Client
}

// apiError is the error body of the engine.
type apiError struct {
	Code   int    `json:"code"`
	ErrMsg any    `json:"errMsg"`
	Path   string `json:"path"`
}

func NewClient(conf ClientConfig) *Client {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(conf.Server, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if conf.Retry > 0 {
		// 5xx 只对 GET 重试
		rc.SetRetryCount(conf.Retry).
			SetRetryWaitTime(200 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if r == nil || r.Request == nil || r.Request.Method != resty.MethodGet {
					return false
				}
				return err != nil || r.StatusCode() >= 500
			})
	}
	return &Client{rc: rc}
}

func (c *Client) do(ctx context.Context, op, method, path string, configure func(*resty.Request), result any) error {
	req := c.rc.R().SetContext(ctx).SetError(&apiError{})
	if result != nil {
		req.SetResult(result)
	}
	if configure != nil {
		configure(req)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	if resp.IsError() {
		re := &RequestError{Op: op, Status: resp.StatusCode()}
		if ae, ok := resp.Error().(*apiError); ok && ae.ErrMsg != nil {
			if s, ok := ae.ErrMsg.(string); ok {
				re.Message = s
			}
		}
		return re
	}
	return nil
}

func pageParams(skip, limit int) map[string]string {
	params := map[string]string{"skip": strconv.Itoa(skip)}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	return params
}

func idPath(prefix string, id uint64, suffix string) string {
	return prefix + strconv.FormatUint(id, 10) + suffix
}

// ListDataSources GET /datasources/
func (c *Client) ListDataSources(ctx context.Context, name, sourceType string, skip, limit int) (*DataSourcePage, error) {
	var page DataSourcePage
	err := c.do(ctx, "list data sources", resty.MethodGet, "/datasources/", func(r *resty.Request) {
		r.SetQueryParams(pageParams(skip, limit))
		if name != "" {
			r.SetQueryParam("name", name)
		}
		if sourceType != "" {
			r.SetQueryParam("type", sourceType)
		}
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetDataSource(ctx context.Context, id uint64) (*DataSource, error) {
	var ds DataSource
	if err := c.do(ctx, "get data source", resty.MethodGet, idPath("/datasources/", id, ""), nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (c *Client) CreateDataSource(ctx context.Context, ds *DataSource) (*DataSource, error) {
	var created DataSource
	err := c.do(ctx, "create data source", resty.MethodPost, "/datasources/", func(r *resty.Request) {
		r.SetBody(ds)
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteDataSource(ctx context.Context, id uint64) error {
	return c.do(ctx, "delete data source", resty.MethodDelete, idPath("/datasources/", id, ""), nil, nil)
}

// DataSourceMetadata lists the tables or buckets of a data source.
func (c *Client) DataSourceMetadata(ctx context.Context, id uint64) ([]string, error) {
	var body struct {
		Tables []string `json:"tables"`
	}
	if err := c.do(ctx, "data source metadata", resty.MethodGet, idPath("/datasources/", id, "/metadata"), nil, &body); err != nil {
		return nil, err
	}
	return body.Tables, nil
}

// TestConnection sends {type, ...connection fields}.
func (c *Client) TestConnection(ctx context.Context, fields map[string]any) (*ConnectionResult, error) {
	var res ConnectionResult
	err := c.do(ctx, "test connection", resty.MethodPost, "/datasources/test-connection", func(r *resty.Request) {
		r.SetBody(fields)
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListTasks GET /tasks/
func (c *Client) ListTasks(ctx context.Context, name string, skip, limit int) (*TaskPage, error) {
	var page TaskPage
	err := c.do(ctx, "list tasks", resty.MethodGet, "/tasks/", func(r *resty.Request) {
		r.SetQueryParams(pageParams(skip, limit))
		if name != "" {
			r.SetQueryParam("name", name)
		}
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetTask(ctx context.Context, id uint64) (*Task, error) {
	var task Task
	if err := c.do(ctx, "get task", resty.MethodGet, idPath("/tasks/", id, ""), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, req *CreateTaskRequest) (*Task, error) {
	var task Task
	err := c.do(ctx, "create task", resty.MethodPost, "/tasks/", func(r *resty.Request) {
		r.SetBody(req)
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// RunTask POST /tasks/{id}/run, 2xx means the run was accepted.
func (c *Client) RunTask(ctx context.Context, id uint64) error {
	return c.do(ctx, "run task", resty.MethodPost, idPath("/tasks/", id, "/run"), nil, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id uint64) error {
	return c.do(ctx, "delete task", resty.MethodDelete, idPath("/tasks/", id, ""), nil, nil)
}

// DeleteTasks DELETE /tasks/ with the ids as body.
func (c *Client) DeleteTasks(ctx context.Context, ids []uint64) error {
	return c.do(ctx, "delete tasks", resty.MethodDelete, "/tasks/", func(r *resty.Request) {
		r.SetBody(ids)
	}, nil)
}

// ListAudit GET /audit/, newest first.
func (c *Client) ListAudit(ctx context.Context, q AuditQuery) (*AuditPage, error) {
	var page AuditPage
	err := c.do(ctx, "list audit logs", resty.MethodGet, "/audit/", func(r *resty.Request) {
		r.SetQueryParams(pageParams(q.Skip, q.Limit))
		for k, v := range map[string]string{"user_id": q.UserID, "action": q.Action, "resource": q.Resource} {
			if v != "" {
				r.SetQueryParam(k, v)
			}
		}
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListAssets(ctx context.Context) ([]Asset, error) {
	var assets []Asset
	if err := c.do(ctx, "list assets", resty.MethodGet, "/data-mgmt/assets", nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// PreviewAsset GET /data-mgmt/preview. path is a table, bucket or data file.
func (c *Client) PreviewAsset(ctx context.Context, path string, offset, limit int) (*AssetPreview, error) {
	var p AssetPreview
	err := c.do(ctx, "preview asset", resty.MethodGet, "/data-mgmt/preview", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"path":   path,
			"offset": strconv.Itoa(offset),
			"limit":  strconv.Itoa(limit),
		})
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteAsset DELETE /data-mgmt/:nameOrID, drops the table or bucket.
func (c *Client) DeleteAsset(ctx context.Context, nameOrID string) error {
	return c.do(ctx, "delete asset", resty.MethodDelete, "/data-mgmt/{asset}", func(r *resty.Request) {
		r.SetPathParam("asset", nameOrID)
	}, nil)
}

// DeleteRow DELETE /data-mgmt/table/:table/row/:rowID
func (c *Client) DeleteRow(ctx context.Context, table, rowID string) error {
	return c.do(ctx, "delete row", resty.MethodDelete, "/data-mgmt/table/{table}/row/{row}", func(r *resty.Request) {
		r.SetPathParams(map[string]string{"table": table, "row": rowID})
	}, nil)
}

// CreateAudit POST /audit/, used by the console to record operator actions.
func (c *Client) CreateAudit(ctx context.Context, entry *AuditLogEntry) (*AuditLogEntry, error) {
	var created AuditLogEntry
	err := c.do(ctx, "create audit log", resty.MethodPost, "/audit/", func(r *resty.Request) {
		r.SetBody(entry)
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
