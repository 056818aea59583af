package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-arcade/ingest/pkg/cache"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *Registry {
	return NewRegistry(Config{Timeout: 1, CacheTTL: 60}, cache.NewFastCache(cache.FastCacheConfig{MaxBytes: 1 << 20}))
}

func TestParseConnectionInfo(t *testing.T) {
	info, err := ParseConnectionInfo([]byte(`{"type":"MySQL","host":"db","port":"3307","user":"root","database":"shop"}`))
	require.NoError(t, err)
	assert.Equal(t, taskconf.SourceMySQL, info.Type)
	assert.Equal(t, Port(3307), info.Port)

	info, err = ParseConnectionInfo([]byte(`{"type":"CSV File","path":"/tmp/a.csv","port":9000}`))
	require.NoError(t, err)
	assert.Equal(t, taskconf.SourceCSV, info.Type)
	assert.Equal(t, Port(9000), info.Port)

	_, err = ParseConnectionInfo([]byte(`{"port":"abc"}`))
	assert.Error(t, err)
}

func TestRegistry_Unsupported(t *testing.T) {
	res := newRegistry().Test(context.Background(), ConnectionInfo{Type: "oracle"})
	assert.Equal(t, Result{Status: StatusError, Message: "Unsupported data source type: oracle"}, res)

	tables, err := newRegistry().Metadata(context.Background(), "1", ConnectionInfo{Type: "oracle"})
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestRegistry_CSV(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(file, []byte("a,b\n1,2\n"), 0o644))
	r := newRegistry()

	res := r.Test(context.Background(), ConnectionInfo{Type: taskconf.SourceCSV, Path: file})
	assert.Equal(t, StatusSuccess, res.Status)

	res = r.Test(context.Background(), ConnectionInfo{Type: taskconf.SourceCSV, Path: dir})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "not a file")

	res = r.Test(context.Background(), ConnectionInfo{Type: taskconf.SourceCSV})
	assert.Equal(t, Result{Status: StatusError, Message: "File path is required"}, res)
}

func TestRegistry_MissingFields(t *testing.T) {
	r := newRegistry()

	res := r.Test(context.Background(), ConnectionInfo{Type: taskconf.SourceMySQL, Host: "db"})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "Missing required fields")

	res = r.Test(context.Background(), ConnectionInfo{Type: taskconf.SourceMinIO, Endpoint: "minio:9000"})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "access_key")
}

type countingProber struct {
	calls  int
	tables []string
}

func (p *countingProber) Test(context.Context, ConnectionInfo) Result { return success("ok") }

func (p *countingProber) Metadata(context.Context, ConnectionInfo) ([]string, error) {
	p.calls++
	return p.tables, nil
}

func TestRegistry_MetadataIsCached(t *testing.T) {
	r := newRegistry()
	p := &countingProber{tables: []string{"orders", "users"}}
	r.Register(taskconf.SourceMySQL, p)
	info := ConnectionInfo{Type: taskconf.SourceMySQL}

	for i := 0; i < 3; i++ {
		tables, err := r.Metadata(context.Background(), "5", info)
		require.NoError(t, err)
		assert.Equal(t, []string{"orders", "users"}, tables)
	}
	assert.Equal(t, 1, p.calls)

	r.Invalidate(context.Background(), "5")
	_, err := r.Metadata(context.Background(), "5", info)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestMinioEndpoint(t *testing.T) {
	host, secure, err := minioEndpoint("https://s3.local:9000/", false)
	require.NoError(t, err)
	assert.Equal(t, "s3.local:9000", host)
	assert.True(t, secure)

	host, secure, err = minioEndpoint("minio:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}
