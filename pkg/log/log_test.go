// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetDefaults(t *testing.T) {
	conf := SetDefaults()
	assert.Equal(t, "stdout", conf.Output)
	assert.Equal(t, "INFO", conf.Level)
	assert.Equal(t, 7, conf.KeepDays)
	assert.Equal(t, "ingest.log", conf.Filename)
}

func TestConf_Validate(t *testing.T) {
	tests := []struct {
		name    string
		conf    *Conf
		wantErr bool
	}{
		{name: "stdout needs nothing", conf: &Conf{Output: "stdout"}},
		{name: "file with path", conf: &Conf{Output: "file", Path: t.TempDir()}},
		{name: "file without path", conf: &Conf{Output: "file"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConf_ValidateFillsRotation(t *testing.T) {
	conf := &Conf{Output: "file", Path: "/tmp"}
	require.NoError(t, conf.Validate())
	assert.Equal(t, 100, conf.RotateSize)
	assert.Equal(t, 10, conf.RotateNum)
	assert.Equal(t, 7, conf.KeepDays)
	assert.Equal(t, "ingest.log", conf.Filename)
}

func TestNewLog_File(t *testing.T) {
	dir := t.TempDir()
	conf := &Conf{Output: "file", Path: dir, Filename: "test.log", Level: "DEBUG"}

	l, err := NewLog(conf)
	require.NoError(t, err)
	require.NotNil(t, l)

	Infow("file log entry", "task", "job1")
	_ = Sync()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "file log entry")
	assert.Contains(t, string(data), "job1")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"Error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestConcurrentLogging(t *testing.T) {
	require.NoError(t, Init(&Conf{Output: "stdout", Level: "ERROR"}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Infof("worker %d", n)
			With("worker", n).Debug("ignored")
		}(i)
	}
	wg.Wait()
}
