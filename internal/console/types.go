// Package console is the operator side of ingest: it builds task
// configurations, drives task runs over the engine's REST surface, polls task
// state and attributes failures to audit log entries.
package console

import (
	"encoding/json"
	"time"

	"github.com/go-arcade/ingest/pkg/statemachine"
	"github.com/go-arcade/ingest/pkg/taskconf"
)

type DataSource struct {
	ID             uint64              `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Type           taskconf.SourceType `json:"type"`
	ConnectionInfo json.RawMessage     `json:"connection_info,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type DataSourcePage struct {
	Data  []DataSource `json:"data"`
	Total int64        `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}

type Task struct {
	ID                 uint64                          `json:"id"`
	Name               string                          `json:"name"`
	TaskType           taskconf.TaskType               `json:"task_type"`
	Config             json.RawMessage                 `json:"config"`
	Status             statemachine.TaskStatus         `json:"status"`
	Progress           int                             `json:"progress"`
	VerificationStatus statemachine.VerificationStatus `json:"verification_status"`
	Schedule           string                          `json:"schedule,omitempty"`
	RunID              string                          `json:"run_id,omitempty"`
	CreatedAt          time.Time                       `json:"created_at"`
	UpdatedAt          time.Time                       `json:"updated_at"`
}

// IsFailing reports whether the task shows a failure badge.
func (t *Task) IsFailing() bool {
	return t.Status == statemachine.TaskFailed || t.VerificationStatus == statemachine.VerificationFailed
}

// VerificationFailing reports whether the failing signal is the verification
// status rather than the run status.
func (t *Task) VerificationFailing() bool {
	return t.VerificationStatus == statemachine.VerificationFailed && t.Status != statemachine.TaskFailed
}

// TaskPage is one page of the task list. Generation orders pages by the time
// their request was issued.
type TaskPage struct {
	Items      []Task `json:"items"`
	Total      int64  `json:"total"`
	Generation uint64 `json:"-"`
}

type CreateTaskRequest struct {
	Name     string            `json:"name"`
	TaskType taskconf.TaskType `json:"task_type"`
	Config   json.RawMessage   `json:"config"`
	Schedule string            `json:"schedule,omitempty"`
}

type AuditLogEntry struct {
	ID        uint64    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

type AuditPage struct {
	Items []AuditLogEntry `json:"items"`
	Total int64           `json:"total"`
}

type AuditQuery struct {
	UserID   string
	Action   string
	Resource string
	Skip     int
	Limit    int
}

// ConnectionResult is the answer of a connection test.
type ConnectionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Asset struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Path   string `json:"path"`
	Size   string `json:"size"`
	Source string `json:"source"`
	Rows   int64  `json:"rows"`
}

// AssetPreview one page of an asset, rows carry _rowid.
type AssetPreview struct {
	Columns []string         `json:"columns"`
	Data    []map[string]any `json:"data"`
	Total   int64            `json:"total"`
	Meta    struct {
		Source      string  `json:"source"`
		Editable    bool    `json:"editable"`
		RowIDColumn *string `json:"rowid_col"`
	} `json:"meta"`
}
