package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates that the key was not found in cache.
var ErrCacheMiss = redis.Nil

type QueryFunc[T any] func(ctx context.Context) (T, error)

// CachedQuery is a read-through cache around a query: results are stored as
// JSON under key for ttl; cache errors fall through to the query.
type CachedQuery[T any] struct {
	cache     ICache
	ttl       time.Duration
	logPrefix string
}

type CachedQueryOption[T any] func(*CachedQuery[T])

func WithTTL[T any](ttl time.Duration) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttl = ttl
	}
}

func WithLogPrefix[T any](prefix string) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.logPrefix = prefix
	}
}

func NewCachedQuery[T any](cache ICache, opts ...CachedQueryOption[T]) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache:     cache,
		ttl:       time.Minute,
		logPrefix: "[CachedQuery]",
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

// Get returns the cached value of key or runs query and caches its result.
func (cq *CachedQuery[T]) Get(ctx context.Context, key string, query QueryFunc[T]) (T, error) {
	if cq.cache != nil {
		data, err := cq.cache.Get(ctx, key).Result()
		switch {
		case err == nil:
			var result T
			if err := sonic.UnmarshalString(data, &result); err == nil {
				log.Debugw(cq.logPrefix+" cache hit", "key", key)
				return result, nil
			}
			log.Warnw(cq.logPrefix+" failed to unmarshal cached data", "key", key, "error", err)
		case !errors.Is(err, ErrCacheMiss):
			log.Warnw(cq.logPrefix+" cache read failed", "key", key, "error", err)
		}
	}

	result, err := query(ctx)
	if err != nil {
		return result, err
	}

	if cq.cache != nil {
		data, err := sonic.MarshalString(result)
		if err == nil {
			err = cq.cache.Set(ctx, key, data, cq.ttl).Err()
		}
		if err != nil {
			log.Warnw(cq.logPrefix+" cache write failed", "key", key, "error", err)
		}
	}
	return result, nil
}

// Invalidate removes key from the cache.
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, key string) error {
	if cq.cache == nil {
		return nil
	}
	return cq.cache.Del(ctx, key).Err()
}
