package model

import "time"

// 审计动作
const (
	ActionCreateDataSource   = "create_datasource"
	ActionDeleteDataSource   = "delete_datasource"
	ActionCreateTask         = "create_task"
	ActionRunTask            = "run_task"
	ActionDeleteTask         = "delete_task"
	ActionTaskCompleted      = "task_completed"
	ActionTaskFailed         = "task_failed"
	ActionVerificationFailed = "verification_failed"
	ActionDeleteAsset        = "delete_asset"
	ActionDownloadAsset      = "download_asset"
	ActionUpdateRow          = "update_row"
	ActionDeleteRow          = "delete_row"
)

const (
	UserAdmin  = "admin"
	UserSystem = "system"
)

// AuditLog append-only audit entry. No TableName: the naming strategy of the
// store it lives in decides the prefix (t_audit_log on MySQL, l_audit_log on ClickHouse).
type AuditLog struct {
	ID        uint64    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	Action    string    `gorm:"column:action;size:64;index" json:"action"`
	Resource  string    `gorm:"column:resource;size:128;index" json:"resource"`
	Details   string    `gorm:"column:details" json:"details"`
	Timestamp time.Time `gorm:"column:timestamp;index" json:"timestamp"`
}
