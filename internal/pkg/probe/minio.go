package probe

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioProber struct{}

// minioEndpoint splits an endpoint that may carry a scheme into host and TLS flag.
func minioEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return u.Host, u.Scheme == "https", nil
}

func (minioProber) client(info ConnectionInfo) (*minio.Client, error) {
	return NewMinIOClient(info.Endpoint, info.AccessKey, info.SecretKey, info.UseSSL)
}

// NewMinIOClient builds a client, endpoint may carry an http(s):// scheme.
func NewMinIOClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("Missing required fields (endpoint, access_key, secret_key)")
	}
	host, secure, err := minioEndpoint(endpoint, useSSL)
	if err != nil {
		return nil, err
	}
	return minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
}

func (p minioProber) Test(ctx context.Context, info ConnectionInfo) Result {
	client, err := p.client(info)
	if err != nil {
		return failure("Connection failed: %v", err)
	}
	if _, err := client.ListBuckets(ctx); err != nil {
		return failure("Connection failed: %v", err)
	}
	return success("Successfully connected to MinIO")
}

func (p minioProber) Metadata(ctx context.Context, info ConnectionInfo) ([]string, error) {
	client, err := p.client(info)
	if err != nil {
		return nil, err
	}
	buckets, err := client.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}
