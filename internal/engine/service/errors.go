package service

import (
	"errors"

	"github.com/go-arcade/ingest/pkg/statemachine"
	"github.com/go-arcade/ingest/pkg/taskconf"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrDataSourceNotFound = errors.New("data source not found")
	ErrAlreadyRunning     = errors.New("task is already running")
	ErrInvalidTransition  = statemachine.ErrInvalidTransition
	// ErrStaleReport a status report for a run that is no longer the latest
	ErrStaleReport = errors.New("status report does not belong to the current run")
	// ErrConcurrentUpdate the task changed between read and write
	ErrConcurrentUpdate = errors.New("task was updated concurrently")

	ErrAssetNotFound = errors.New("asset not found")
	ErrTableNotFound = errors.New("table not found")
	ErrRowNotFound   = errors.New("row not found")
	// ErrStorageUnavailable the store an asset lives in is not configured
	ErrStorageUnavailable = errors.New("storage is not configured")
)

func invalid(format string) *taskconf.ValidationError {
	return &taskconf.ValidationError{Kind: taskconf.KindInvalidConfig, Message: format}
}
