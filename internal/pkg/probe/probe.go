// Package probe tests data source connections and lists their tables or
// buckets.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-arcade/ingest/pkg/taskconf"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the answer of a connection test.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func success(format string, args ...any) Result {
	return Result{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

func failure(format string, args ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Port accepts both 3306 and "3306".
type Port int

func (p *Port) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid port %s", b)
	}
	*p = Port(n)
	return nil
}

// ConnectionInfo connection parameters, the fields in use depend on Type.
type ConnectionInfo struct {
	Type     taskconf.SourceType `json:"type,omitempty"`
	Host     string              `json:"host,omitempty"`
	Port     Port                `json:"port,omitempty"`
	User     string              `json:"user,omitempty"`
	Password string              `json:"password,omitempty"`
	Database string              `json:"database,omitempty"`

	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	UseSSL    bool   `json:"use_ssl,omitempty"`

	Path string `json:"path,omitempty"`
}

// ParseConnectionInfo decodes a connection_info document. The type is
// lowercased and "csv file" is accepted for csv.
func ParseConnectionInfo(raw []byte) (ConnectionInfo, error) {
	var info ConnectionInfo
	if len(raw) == 0 {
		return info, nil
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return info, fmt.Errorf("invalid connection info: %w", err)
	}
	info.Type = normalizeType(info.Type)
	return info, nil
}

func normalizeType(t taskconf.SourceType) taskconf.SourceType {
	s := strings.ToLower(strings.TrimSpace(string(t)))
	if s == "csv file" {
		s = string(taskconf.SourceCSV)
	}
	return taskconf.SourceType(s)
}

// Prober tests one kind of data source.
type Prober interface {
	Test(ctx context.Context, info ConnectionInfo) Result
	// Metadata lists tables, or buckets for object stores.
	Metadata(ctx context.Context, info ConnectionInfo) ([]string, error)
}
