package executor

import (
	"context"

	"github.com/go-arcade/ingest/pkg/log"
)

// NoopExecutor accepts every job and does nothing, tasks stay running until
// a status report arrives. Used when no executor endpoint is configured.
type NoopExecutor struct{}

func (NoopExecutor) Name() string {
	return "noop"
}

func (NoopExecutor) Submit(_ context.Context, job *Job) error {
	log.Warnw("no executor configured, job accepted without dispatch",
		"task_id", job.TaskID,
		"run_id", job.RunID,
		"name", job.Name)
	return nil
}
