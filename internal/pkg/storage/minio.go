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

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-arcade/ingest/internal/pkg/probe"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/minio/minio-go/v7"
)

type minioBuckets struct {
	client *minio.Client
}

// NewBuckets returns nil when MinIO is not configured.
func NewBuckets(conf MinIOConfig) (Buckets, error) {
	if !conf.Enabled() {
		return nil, nil
	}
	client, err := probe.NewMinIOClient(conf.Endpoint, conf.AccessKey, conf.SecretKey, conf.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	log.Infow("system object store configured", "endpoint", conf.Endpoint)
	return &minioBuckets{client: client}, nil
}

func noSuchBucket(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchBucket"
}

func (b *minioBuckets) List(ctx context.Context, bucket string, offset, limit int) ([]Object, int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		objects []Object
		total   int
	)
	for info := range b.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			if noSuchBucket(info.Err) {
				return nil, 0, ErrNoSuchBucket
			}
			return nil, 0, info.Err
		}
		if total >= offset && (limit <= 0 || len(objects) < limit) {
			objects = append(objects, Object{
				Key:          info.Key,
				Size:         info.Size,
				LastModified: info.LastModified,
				ETag:         info.ETag,
			})
		}
		total++
	}
	return objects, total, nil
}

func (b *minioBuckets) Remove(ctx context.Context, bucket string) error {
	exists, err := b.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	objects := b.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true})
	var errs []error
	for rerr := range b.client.RemoveObjects(ctx, bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove %s: %w", rerr.ObjectName, rerr.Err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := b.client.RemoveBucket(ctx, bucket); err != nil && !noSuchBucket(err) {
		return err
	}
	return nil
}

func (b *minioBuckets) Presign(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
