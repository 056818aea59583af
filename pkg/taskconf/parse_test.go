package taskconf

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Sync(t *testing.T) {
	raw := `{"source_id": 3, "source": {"table": "t"}, "target": {"type": "system_minio", "table": "bucket", "mode": "append"}}`

	cfg, err := ParseConfig(TaskSync, []byte(raw))
	require.NoError(t, err)
	sc, ok := cfg.(*SyncConfig)
	require.True(t, ok)
	assert.Equal(t, uint64(3), sc.SourceID)
	assert.NotNil(t, sc.Operators)
	assert.Empty(t, sc.Operators)
}

func TestParseConfig_SyncProcessOperators(t *testing.T) {
	raw := `{"source_id": 1, "source": {"table": "t"}, "target": {"table": "x", "mode": "overwrite"},
		"operators": [{"type": "explore"}, {"type": "fill_na", "value": "n/a"}, {"type": "rename", "mapping": {"a": "b"}}]}`

	cfg, err := ParseConfig(TaskSyncProcess, []byte(raw))
	require.NoError(t, err)
	sc := cfg.(*SyncConfig)
	assert.Equal(t, Operators{Explore{}, FillNA{Value: "n/a"}, Rename{Mapping: map[string]string{"a": "b"}}}, sc.Operators)

	out, err := Encode(sc)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Len(t, back["operators"], 3)
}

func TestParseConfig_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		taskType TaskType
		raw      string
		want     error
	}{
		{"not json", TaskSync, `{source_id: 1`, ErrInvalidConfig},
		{"array", TaskPreprocess, `[1, 2]`, ErrInvalidConfig},
		{"empty", TaskPreprocess, ``, ErrInvalidConfig},
		{"missing table", TaskSync, `{"source_id": 1, "source": {}, "target": {"table": "x"}}`, ErrIncompleteSelection},
		{"bad mode", TaskSync, `{"source_id": 1, "source": {"table": "t"}, "target": {"table": "x", "mode": "merge"}}`, ErrInvalidConfig},
		{"bad target", TaskSync, `{"source_id": 1, "source": {"table": "t"}, "target": {"type": "s3", "table": "x"}}`, ErrInvalidConfig},
		{"operators on sync", TaskSync, `{"source_id": 1, "source": {"table": "t"}, "target": {"table": "x"}, "operators": [{"type": "dedup"}]}`, ErrInvalidConfig},
		{"unknown operator", TaskSyncProcess, `{"source_id": 1, "source": {"table": "t"}, "target": {"table": "x"}, "operators": [{"type": "pivot"}]}`, ErrInvalidConfig},
		{"out of order", TaskSyncProcess, `{"source_id": 1, "source": {"table": "t"}, "target": {"table": "x"}, "operators": [{"type": "rename", "mapping": {"a": "b"}}, {"type": "dedup"}]}`, ErrInvalidConfig},
		{"two missing-value ops", TaskSyncProcess, `{"source_id": 1, "source": {"table": "t"}, "target": {"table": "x"}, "operators": [{"type": "drop_na"}, {"type": "fill_na", "value": 0}]}`, ErrInvalidConfig},
		{"unknown task type", TaskType("stream"), `{}`, ErrUnsupportedTaskType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.taskType, []byte(tt.raw))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseConfig_PreprocessKeepsDocument(t *testing.T) {
	raw := DefaultPreprocessConfig()

	cfg, err := ParseConfig(TaskPreprocess, raw)
	require.NoError(t, err)
	pc := cfg.(*PreprocessConfig)
	assert.Equal(t, "my_job", pc.JobName)

	out, err := Encode(pc)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))

	// shapes the executor owns are passed through
	cfg, err = ParseConfig(TaskPreprocess, []byte(`{"job_name": 7, "extra": true}`))
	require.NoError(t, err)
	out, err = Encode(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"job_name": 7, "extra": true}`, string(out))
}

func TestSanitizeConfig(t *testing.T) {
	cfg := &SyncConfig{SourceID: 2, Target: TargetSpec{Type: TargetSystemMySQL}}

	err := SanitizeConfig(context.Background(), cfg, staticSources(map[uint64]SourceType{2: SourceClickHouse}))
	require.NoError(t, err)
	assert.Equal(t, TargetSystemClickHouse, cfg.Target.Type)

	err = SanitizeConfig(context.Background(), &SyncConfig{SourceID: 9}, staticSources(nil))
	assert.ErrorIs(t, err, ErrUnknownSource)
}
