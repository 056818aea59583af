package cache

import (
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/google/wire"
)

const defaultLocalMaxBytes = 32 * 1024 * 1024

var ProviderSet = wire.NewSet(ProvideICache)

// ProvideICache returns a redis backed cache when redis is configured and an
// in-process FastCache otherwise.
func ProvideICache(conf Redis) (ICache, func(), error) {
	if !conf.Enabled() {
		log.Info("redis not configured, using in-process cache")
		return NewFastCache(FastCacheConfig{MaxBytes: defaultLocalMaxBytes}), func() {}, nil
	}
	client, err := NewRedisCmdable(conf)
	if err != nil {
		return nil, nil, err
	}
	return NewRedisCache(client), func() { _ = client.Close() }, nil
}
