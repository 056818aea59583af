// Package storage reaches the system-owned object store and the local data
// directory that synced assets live in next to the database tables.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoSuchBucket    = errors.New("bucket does not exist")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	UseSSL    bool   `mapstructure:"useSSL"`
}

// Enabled reports whether the system object store is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Config struct {
	// DataDir is scanned for .csv/.parquet/.json files, empty disables it.
	DataDir string      `mapstructure:"dataDir"`
	MinIO   MinIOConfig `mapstructure:"minio"`
}

// Object one entry of a bucket listing.
type Object struct {
	Key          string    `json:"Key"`
	Size         int64     `json:"Size"`
	LastModified time.Time `json:"LastModified"`
	ETag         string    `json:"ETag"`
}

// Buckets is the part of the object store the data console uses.
type Buckets interface {
	// List returns limit objects starting at offset and the object count of
	// the bucket. A missing bucket returns ErrNoSuchBucket.
	List(ctx context.Context, bucket string, offset, limit int) ([]Object, int, error)
	// Remove empties and removes the bucket. A missing bucket is not an error.
	Remove(ctx context.Context, bucket string) error
	Presign(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// Table rows keyed by column, Columns keeps the display order.
type Table struct {
	Columns []string
	Rows    []map[string]any
}
