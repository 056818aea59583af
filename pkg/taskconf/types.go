// Package taskconf turns task form selections into the canonical job
// configuration stored in Task.config, and validates stored configurations.
package taskconf

// TaskType discriminates the configuration schema of a task.
type TaskType string

const (
	TaskSync        TaskType = "sync"
	TaskSyncProcess TaskType = "sync_process"
	TaskPreprocess  TaskType = "preprocess"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskSync, TaskSyncProcess, TaskPreprocess:
		return true
	}
	return false
}

// IsSync reports whether t is built from sync selections.
func (t TaskType) IsSync() bool {
	return t == TaskSync || t == TaskSyncProcess
}

// SourceType is the type of a registered data source.
type SourceType string

const (
	SourceMySQL      SourceType = "mysql"
	SourceClickHouse SourceType = "clickhouse"
	SourceMinIO      SourceType = "minio"
	SourceCSV        SourceType = "csv"
)

func (s SourceType) IsValid() bool {
	switch s {
	case SourceMySQL, SourceClickHouse, SourceMinIO, SourceCSV:
		return true
	}
	return false
}

// TargetType is the system-owned store a sync writes into.
type TargetType string

const (
	TargetSystemMySQL      TargetType = "system_mysql"
	TargetSystemClickHouse TargetType = "system_clickhouse"
	TargetSystemMinIO      TargetType = "system_minio"
)

func (t TargetType) IsValid() bool {
	switch t {
	case TargetSystemMySQL, TargetSystemClickHouse, TargetSystemMinIO:
		return true
	}
	return false
}

// SyncMode decides whether the target table is replaced or extended.
type SyncMode string

const (
	ModeAppend    SyncMode = "append"
	ModeOverwrite SyncMode = "overwrite"
)

func (m SyncMode) IsValid() bool {
	return m == ModeAppend || m == ModeOverwrite
}

// Config is the decoded value of Task.config: *SyncConfig or *PreprocessConfig.
type Config interface {
	config()
}

type SourceSpec struct {
	Table string `json:"table"`
}

type TargetSpec struct {
	Type  TargetType `json:"type"`
	Table string     `json:"table"`
	Mode  SyncMode   `json:"mode"`
}

// SyncConfig is the configuration of sync and sync_process tasks.
type SyncConfig struct {
	SourceID  uint64     `json:"source_id"`
	Source    SourceSpec `json:"source"`
	Target    TargetSpec `json:"target"`
	Operators Operators  `json:"operators"`
}

func (*SyncConfig) config() {}
