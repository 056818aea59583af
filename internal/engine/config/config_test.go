package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConf = `
[log]
output = "stdout"
level = "DEBUG"

[http]
port = 9090

[database.mysql]
host = "127.0.0.1"
port = "3306"
user = "root"
dbname = "ingest"

[executor]
url = "http://executor:8000/jobs"
maxWorkers = 8

[storage.minio]
endpoint = "http://minio:9000"
accessKey = "ingest"
secretKey = "secret"
`

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConf), 0o644))

	conf, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, conf.Http.Port)
	assert.Equal(t, "0.0.0.0", conf.Http.Host)
	assert.Equal(t, "DEBUG", conf.Log.Level)
	assert.Equal(t, "ingest", conf.Database.MySQL.DBName)
	assert.Equal(t, "http://executor:8000/jobs", conf.Executor.URL)
	assert.Equal(t, 8, conf.Executor.MaxWorkers)
	assert.Equal(t, 100, conf.Executor.QueueSize)
	assert.Equal(t, 60, conf.Probe.CacheTTL)
	assert.Equal(t, "./data", conf.Storage.DataDir)
	assert.True(t, conf.Storage.MinIO.Enabled())
	assert.Equal(t, "ingest", conf.Storage.MinIO.AccessKey)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
