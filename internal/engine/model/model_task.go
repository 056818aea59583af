package model

import (
	"github.com/go-arcade/ingest/pkg/statemachine"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"gorm.io/datatypes"
)

// Task a sync, sync_process or preprocess job and its last observed run state
type Task struct {
	BaseModel
	Name               string                          `gorm:"column:name;size:128;index" json:"name"`
	TaskType           taskconf.TaskType               `gorm:"column:task_type;size:32" json:"task_type"`
	Config             datatypes.JSON                  `gorm:"column:config" json:"config"`
	Status             statemachine.TaskStatus         `gorm:"column:status;size:16;default:pending;index" json:"status"`
	Progress           int                             `gorm:"column:progress;default:0" json:"progress"`
	VerificationStatus statemachine.VerificationStatus `gorm:"column:verification_status;size:16;default:none" json:"verification_status"`
	Schedule           string                          `gorm:"column:schedule;size:64" json:"schedule,omitempty"`
	RunID              string                          `gorm:"column:run_id;size:26" json:"run_id,omitempty"`
}

func (Task) TableName() string {
	return "t_task"
}

// IsFailing reports whether the task currently shows a failure.
func (t *Task) IsFailing() bool {
	return t.Status == statemachine.TaskFailed || t.VerificationStatus == statemachine.VerificationFailed
}
