package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.csv", "x\n1\n")
	write(t, dir, "deep/b.PARQUET", "PAR1")
	write(t, dir, "deep/c.json", "{}")
	write(t, dir, "readme.md", "#")

	files, err := ListFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []File{
		{Name: "a.csv", Path: "a.csv", Size: 4},
		{Name: "b.PARQUET", Path: "deep/b.PARQUET", Size: 4},
		{Name: "c.json", Path: "deep/c.json", Size: 2},
	}, files)

	files, err = ListFiles(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = ListFiles("")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "data")
	want := write(t, dir, "sub/a.csv", "x\n")
	write(t, root, "secret.csv", "x\n")

	got, ok := Resolve(dir, "sub/a.csv")
	assert.True(t, ok)
	assert.Equal(t, want, got)

	for _, name := range []string{"../secret.csv", "/../secret.csv", "sub", "nope.csv", ""} {
		_, ok := Resolve(dir, name)
		assert.False(t, ok, name)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	tbl, err := ReadFile(write(t, dir, "a.csv", "id,name\n1,alice\n2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, tbl.Columns)
	assert.Equal(t, []map[string]any{
		{"id": "1", "name": "alice"},
		{"id": "2", "name": nil},
	}, tbl.Rows)

	tbl, err = ReadFile(write(t, dir, "lines.json", "{\"b\":1,\"a\":\"x\"}\n\n{\"c\":true}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, true, tbl.Rows[1]["c"])

	tbl, err = ReadFile(write(t, dir, "array.json", `[{"a":1},{"a":2}]`))
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)

	tbl, err = ReadFile(write(t, dir, "empty.csv", ""))
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)

	_, err = ReadFile(write(t, dir, "bad.json", "{oops\n"))
	assert.Error(t, err)

	_, err = ReadFile(write(t, dir, "x.parquet", "PAR1"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestNewBuckets_Disabled(t *testing.T) {
	b, err := NewBuckets(MinIOConfig{Endpoint: "minio:9000"})
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = NewBuckets(MinIOConfig{Endpoint: "http://minio:9000", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.NotNil(t, b)
}
