package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/internal/pkg/executor"
	"github.com/go-arcade/ingest/pkg/id"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/go-arcade/ingest/pkg/metrics"
	"github.com/go-arcade/ingest/pkg/statemachine"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
)

const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
)

// JobDispatcher hands jobs to the executor asynchronously.
type JobDispatcher interface {
	Dispatch(job *executor.Job) error
	OnFailure(h executor.FailureHandler)
}

// ScheduleHook is told about tasks whose cron schedule changed.
type ScheduleHook interface {
	Schedule(task *model.Task)
	Unschedule(id uint64)
}

type CreateTaskRequest struct {
	Name     string            `json:"name"`
	TaskType taskconf.TaskType `json:"task_type"`
	Config   json.RawMessage   `json:"config"`
	Schedule string            `json:"schedule,omitempty"`
}

// StatusReport is sent by the executor. Empty or nil fields are left unchanged.
type StatusReport struct {
	RunID              string                          `json:"run_id,omitempty"`
	Status             statemachine.TaskStatus         `json:"status,omitempty"`
	Progress           *int                            `json:"progress,omitempty"`
	VerificationStatus statemachine.VerificationStatus `json:"verification_status,omitempty"`
	Message            string                          `json:"message,omitempty"`
	RowsSynced         *int64                          `json:"rows_synced,omitempty"`
}

type TaskService struct {
	repos      *repo.Repositories
	sources    taskconf.SourceLookup
	dispatcher JobDispatcher
	auditSvc   *AuditService
	execConf   executor.Config
	hook       ScheduleHook
}

func NewTaskService(
	repos *repo.Repositories,
	sources taskconf.SourceLookup,
	dispatcher JobDispatcher,
	auditSvc *AuditService,
	execConf executor.Config,
) *TaskService {
	ts := &TaskService{
		repos:      repos,
		sources:    sources,
		dispatcher: dispatcher,
		auditSvc:   auditSvc,
		execConf:   execConf,
	}
	dispatcher.OnFailure(ts.dispatchFailed)
	return ts
}

// SetScheduleHook 由 scheduler 启动时注册
func (ts *TaskService) SetScheduleHook(h ScheduleHook) {
	ts.hook = h
}

// normalizeConfig accepts the config as an object or as a string holding one
func normalizeConfig(raw json.RawMessage) []byte {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return []byte(s)
		}
	}
	return raw
}

// Create validates the config under its task type and stores a pending task.
func (ts *TaskService) Create(ctx context.Context, req *CreateTaskRequest) (*model.Task, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if !req.TaskType.IsValid() {
		return nil, &taskconf.ValidationError{Kind: taskconf.KindUnsupportedTaskType, Message: fmt.Sprintf("unknown task type %q", req.TaskType)}
	}
	schedule := strings.TrimSpace(req.Schedule)
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, &taskconf.ValidationError{Kind: taskconf.KindInvalidConfig, Message: "invalid schedule", Err: err}
		}
	}

	cfg, err := taskconf.ParseConfig(req.TaskType, normalizeConfig(req.Config))
	if err != nil {
		return nil, err
	}
	if sc, ok := cfg.(*taskconf.SyncConfig); ok {
		if err := taskconf.SanitizeConfig(ctx, sc, ts.sources); err != nil {
			return nil, err
		}
	}
	raw, err := taskconf.Encode(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	task := &model.Task{
		Name:               name,
		TaskType:           req.TaskType,
		Config:             datatypes.JSON(raw),
		Status:             statemachine.TaskPending,
		VerificationStatus: statemachine.VerificationNone,
		Schedule:           schedule,
	}
	if err := ts.repos.Task.CreateTask(task); err != nil {
		return nil, err
	}
	ts.auditSvc.Record(model.UserAdmin, model.ActionCreateTask, task.Name, "Type: "+string(task.TaskType))
	if task.Schedule != "" && ts.hook != nil {
		ts.hook.Schedule(task)
	}
	return task, nil
}

func (ts *TaskService) Get(id uint64) (*model.Task, error) {
	task, err := ts.repos.Task.GetTask(id)
	if repo.IsNotFound(err) {
		return nil, ErrTaskNotFound
	}
	return task, err
}

func (ts *TaskService) List(name string, skip, limit int) ([]*model.Task, int64, error) {
	return ts.repos.Task.ListTasks(name, skip, limit)
}

func (ts *TaskService) ScheduledTasks() ([]*model.Task, error) {
	return ts.repos.Task.ListScheduledTasks()
}

// Run moves the task to running and hands it to the executor. Running tasks
// are refused with ErrAlreadyRunning, the check and the write are one
// conditional update so concurrent callers cannot both dispatch.
func (ts *TaskService) Run(ctx context.Context, taskID uint64, trigger string) (*model.Task, error) {
	task, err := ts.Get(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == statemachine.TaskRunning {
		metrics.TaskRunRejectedTotal.Inc()
		return nil, ErrAlreadyRunning
	}
	if err := statemachine.NewTaskStateMachine().Transition(task.Status, statemachine.TaskRunning); err != nil {
		return nil, err
	}

	runID := id.GetUlid()
	ok, err := ts.repos.Task.MarkRunning(task.ID, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.TaskRunRejectedTotal.Inc()
		return nil, ErrAlreadyRunning
	}
	task.Status = statemachine.TaskRunning
	task.Progress = 0
	task.VerificationStatus = statemachine.VerificationNone
	task.RunID = runID

	user := model.UserAdmin
	if trigger == TriggerSchedule {
		user = model.UserSystem
	}
	ts.auditSvc.Record(user, model.ActionRunTask, task.Name, "Run: "+runID)
	metrics.TaskRunsTotal.WithLabelValues(string(task.TaskType), trigger).Inc()

	job := &executor.Job{
		TaskID:      task.ID,
		RunID:       runID,
		Name:        task.Name,
		TaskType:    task.TaskType,
		Config:      json.RawMessage(task.Config),
		CallbackURL: ts.execConf.Callback(task.ID),
	}
	if err := ts.dispatcher.Dispatch(job); err != nil {
		ts.dispatchFailed(job, err)
		return nil, fmt.Errorf("dispatch task %d: %w", task.ID, err)
	}
	log.Infow("task run accepted",
		"task_id", task.ID,
		"run_id", runID,
		"trigger", trigger)
	return task, nil
}

// RunScheduled is the cron entry point.
func (ts *TaskService) RunScheduled(ctx context.Context, taskID uint64) error {
	_, err := ts.Run(ctx, taskID, TriggerSchedule)
	return err
}

// dispatchFailed fails the run when the executor could not take the job.
func (ts *TaskService) dispatchFailed(job *executor.Job, cause error) {
	_, err := ts.ReportStatus(context.Background(), job.TaskID, &StatusReport{
		RunID:   job.RunID,
		Status:  statemachine.TaskFailed,
		Message: "dispatch failed: " + cause.Error(),
	})
	if err != nil && !errors.Is(err, ErrStaleReport) && !errors.Is(err, ErrTaskNotFound) {
		log.Errorw("failed to mark undispatched task as failed",
			"task_id", job.TaskID,
			"run_id", job.RunID,
			"error", err)
	}
}

// ReportStatus applies an executor report through the task state machine.
func (ts *TaskService) ReportStatus(ctx context.Context, taskID uint64, report *StatusReport) (*model.Task, error) {
	task, err := ts.Get(taskID)
	if err != nil {
		return nil, err
	}
	if report.RunID != "" && task.RunID != "" && report.RunID != task.RunID {
		return nil, ErrStaleReport
	}

	next := *task
	if report.Status != "" && report.Status != task.Status {
		if !report.Status.IsValid() {
			return nil, invalid(fmt.Sprintf("unknown status %q", report.Status))
		}
		if err := statemachine.NewTaskStateMachine().Transition(task.Status, report.Status); err != nil {
			return nil, err
		}
		next.Status = report.Status
	}

	if report.Progress != nil {
		if *report.Progress < 0 || *report.Progress > 100 {
			return nil, invalid(fmt.Sprintf("progress %d out of range [0,100]", *report.Progress))
		}
		prev := 0
		if task.Status == statemachine.TaskRunning && next.Status == statemachine.TaskRunning {
			prev = task.Progress
		}
		if err := statemachine.CheckProgress(next.Status, prev, *report.Progress); err != nil {
			return nil, err
		}
		next.Progress = *report.Progress
	} else if next.Status == statemachine.TaskSuccess {
		next.Progress = 100
	}

	if report.VerificationStatus != "" {
		if !report.VerificationStatus.IsValid() {
			return nil, invalid(fmt.Sprintf("unknown verification status %q", report.VerificationStatus))
		}
		if err := statemachine.CheckVerification(next.Status, report.VerificationStatus); err != nil {
			return nil, err
		}
		next.VerificationStatus = report.VerificationStatus
	}

	ok, err := ts.repos.Task.UpdateRunState(&next, task.Status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	metrics.TaskStatusReportsTotal.WithLabelValues(string(next.Status), string(next.VerificationStatus)).Inc()

	ts.afterReport(task, &next, report)
	return &next, nil
}

func (ts *TaskService) afterReport(prev, next *model.Task, report *StatusReport) {
	if prev.Status != next.Status {
		switch next.Status {
		case statemachine.TaskFailed:
			details := Redact(report.Message)
			if details == "" {
				details = "Status: failed"
			}
			ts.auditSvc.Record(model.UserSystem, model.ActionTaskFailed, next.Name, details)
		case statemachine.TaskSuccess:
			ts.auditSvc.Record(model.UserSystem, model.ActionTaskCompleted, next.Name, "Status: success")
			if report.RowsSynced != nil {
				ts.recordSyncedTable(next, *report.RowsSynced)
			}
		}
	}
	if prev.VerificationStatus != next.VerificationStatus && next.VerificationStatus == statemachine.VerificationFailed {
		details := Redact(report.Message)
		if details == "" {
			details = "verification failed"
		}
		ts.auditSvc.Record(model.UserSystem, model.ActionVerificationFailed, next.Name, details)
	}
	log.Infow("task status reported",
		"task_id", next.ID,
		"status", next.Status,
		"progress", next.Progress,
		"verification", next.VerificationStatus)
}

// recordSyncedTable updates the asset registry after a successful sync.
func (ts *TaskService) recordSyncedTable(task *model.Task, rows int64) {
	if !task.TaskType.IsSync() {
		return
	}
	cfg, err := taskconf.ParseConfig(task.TaskType, task.Config)
	if err != nil {
		log.Warnw("skip synced table registry, stored config unreadable", "task_id", task.ID, "error", err)
		return
	}
	sc := cfg.(*taskconf.SyncConfig)

	entry := &model.SyncedTable{
		Name:     sc.Target.Table,
		RowCount: rows,
	}
	if source, err := ts.repos.DataSource.GetDataSource(sc.SourceID); err == nil {
		entry.SourceType = source.Type
		entry.SourceName = source.Name
	}
	if err := ts.repos.SyncedTable.RecordSync(entry, sc.Target.Mode); err != nil {
		log.Errorw("failed to update synced table registry",
			"task_id", task.ID,
			"table", sc.Target.Table,
			"error", err)
	}
}

func (ts *TaskService) Delete(ctx context.Context, taskID uint64) error {
	task, err := ts.Get(taskID)
	if err != nil {
		return err
	}
	if _, err := ts.repos.Task.DeleteTasks([]uint64{taskID}); err != nil {
		return err
	}
	ts.afterDelete(task)
	return nil
}

// DeleteMany removes the tasks that exist and ignores unknown ids.
func (ts *TaskService) DeleteMany(ctx context.Context, ids []uint64) (int64, error) {
	tasks, err := ts.repos.Task.GetTasksByIDs(ids)
	if err != nil {
		return 0, err
	}
	n, err := ts.repos.Task.DeleteTasks(ids)
	if err != nil {
		return 0, err
	}
	for _, task := range tasks {
		ts.afterDelete(task)
	}
	return n, nil
}

func (ts *TaskService) afterDelete(task *model.Task) {
	ts.auditSvc.Record(model.UserAdmin, model.ActionDeleteTask, task.Name, "")
	if task.Schedule != "" && ts.hook != nil {
		ts.hook.Unschedule(task.ID)
	}
}
