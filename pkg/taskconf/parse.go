package taskconf

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// PreprocessConfig is a manually authored job description. Only the top
// level must be a JSON object; every field is passed to the executor as is.
type PreprocessConfig struct {
	JobName   string          `json:"job_name,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
	Operators json.RawMessage `json:"operators,omitempty"`
	Target    json.RawMessage `json:"target,omitempty"`

	raw json.RawMessage
}

func (*PreprocessConfig) config() {}

// MarshalJSON returns the authored document unchanged.
func (p *PreprocessConfig) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	type plain PreprocessConfig
	return json.Marshal((*plain)(p))
}

// DefaultPreprocessConfig is the template offered when authoring a
// preprocess job by hand.
func DefaultPreprocessConfig() json.RawMessage {
	return json.RawMessage(`{
  "job_name": "my_job",
  "source": {"type": "csv", "path": "/data/input.csv"},
  "operators": [{"type": "dedup"}],
  "target": {"type": "csv", "path": "/data/output.csv", "mode": "overwrite"}
}`)
}

// ParseConfig decodes raw under the schema of taskType and validates it.
func ParseConfig(taskType TaskType, raw []byte) (Config, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
		return nil, newValidationError(KindInvalidConfig, "config must be a JSON object")
	}

	switch taskType {
	case TaskSync, TaskSyncProcess:
		var cfg SyncConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, &ValidationError{Kind: KindInvalidConfig, Message: "config does not match the sync schema", Err: err}
		}
		if err := validateSync(taskType, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	case TaskPreprocess:
		cfg := &PreprocessConfig{}
		if err := json.Unmarshal(raw, cfg); err != nil {
			// Fields of other shapes are tolerated, the executor owns this schema.
			cfg = &PreprocessConfig{}
		}
		cfg.raw = append(json.RawMessage(nil), raw...)
		return cfg, nil
	default:
		return nil, newValidationError(KindUnsupportedTaskType, "unknown task type %q", taskType)
	}
}

func validateSync(taskType TaskType, cfg *SyncConfig) error {
	cfg.Source.Table = strings.TrimSpace(cfg.Source.Table)
	cfg.Target.Table = strings.TrimSpace(cfg.Target.Table)
	if err := checkSelections(SyncSelections{
		SourceID:    cfg.SourceID,
		SourceTable: cfg.Source.Table,
		TargetTable: cfg.Target.Table,
	}); err != nil {
		return err
	}
	if cfg.Target.Mode == "" {
		cfg.Target.Mode = ModeAppend
	}
	if !cfg.Target.Mode.IsValid() {
		return newValidationError(KindInvalidConfig, "unknown sync mode %q", cfg.Target.Mode)
	}
	if cfg.Target.Type != "" && !cfg.Target.Type.IsValid() {
		return newValidationError(KindInvalidConfig, "unknown target type %q", cfg.Target.Type)
	}
	if cfg.Operators == nil {
		cfg.Operators = Operators{}
	}
	if taskType == TaskSync && len(cfg.Operators) > 0 {
		return newValidationError(KindInvalidConfig, "operators are only allowed for sync_process tasks")
	}
	if err := cfg.Operators.checkOrder(); err != nil {
		return &ValidationError{Kind: KindInvalidConfig, Message: "invalid operator pipeline", Err: err}
	}
	return nil
}

// SanitizeConfig re-derives target.type from the referenced source, so a
// stored config never disagrees with its source.
func SanitizeConfig(ctx context.Context, cfg *SyncConfig, sources SourceLookup) error {
	st, err := lookupSource(ctx, sources, cfg.SourceID)
	if err != nil {
		return err
	}
	cfg.Target.Type = DeriveTargetType(st)
	return nil
}

// Encode serializes a Config for storage in Task.config.
func Encode(cfg Config) (json.RawMessage, error) {
	return json.Marshal(cfg)
}
