package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/ingest/pkg/cache"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/go-arcade/ingest/pkg/metrics"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"github.com/google/wire"
)

// Config 探测配置
type Config struct {
	Timeout  int // seconds
	CacheTTL int // seconds, metadata cache
}

var ProviderSet = wire.NewSet(ProvideRegistry)

func ProvideRegistry(conf Config, c cache.ICache) *Registry {
	return NewRegistry(conf, c)
}

// Registry dispatches connection tests and metadata lookups to the prober of
// each source type. Metadata is cached.
type Registry struct {
	probers  map[taskconf.SourceType]Prober
	metadata *cache.CachedQuery[[]string]
	timeout  time.Duration
}

func NewRegistry(conf Config, c cache.ICache) *Registry {
	timeout := time.Duration(conf.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ttl := time.Duration(conf.CacheTTL) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Registry{
		probers: map[taskconf.SourceType]Prober{
			taskconf.SourceMySQL:      mysqlProber{timeout: timeout},
			taskconf.SourceClickHouse: clickHouseProber{timeout: timeout},
			taskconf.SourceMinIO:      minioProber{},
			taskconf.SourceCSV:        csvProber{},
		},
		metadata: cache.NewCachedQuery[[]string](c,
			cache.WithTTL[[]string](ttl),
			cache.WithLogPrefix[[]string]("[Metadata]")),
		timeout: timeout,
	}
}

// Register replaces the prober of a source type.
func (r *Registry) Register(t taskconf.SourceType, p Prober) {
	r.probers[t] = p
}

// Test never returns an error, failures are reported in the Result.
func (r *Registry) Test(ctx context.Context, info ConnectionInfo) Result {
	info.Type = normalizeType(info.Type)
	p, ok := r.probers[info.Type]
	if !ok {
		metrics.ProbeChecksTotal.WithLabelValues("unsupported", StatusError).Inc()
		return failure("Unsupported data source type: %s", info.Type)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := p.Test(ctx, info)
	metrics.ProbeChecksTotal.WithLabelValues(string(info.Type), res.Status).Inc()
	log.Infow("data source connection tested",
		"type", info.Type,
		"status", res.Status)
	return res
}

// Metadata lists tables of source key. Unsupported types have no tables.
func (r *Registry) Metadata(ctx context.Context, key string, info ConnectionInfo) ([]string, error) {
	info.Type = normalizeType(info.Type)
	p, ok := r.probers[info.Type]
	if !ok {
		return []string{}, nil
	}
	return r.metadata.Get(ctx, metadataKey(key), func(ctx context.Context) ([]string, error) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		tables, err := p.Metadata(ctx, info)
		if err != nil {
			return nil, fmt.Errorf("Failed to fetch metadata: %w", err)
		}
		if tables == nil {
			tables = []string{}
		}
		return tables, nil
	})
}

// Invalidate drops the cached metadata of source key.
func (r *Registry) Invalidate(ctx context.Context, key string) {
	if err := r.metadata.Invalidate(ctx, metadataKey(key)); err != nil {
		log.Warnw("invalidate metadata cache failed", "key", key, "error", err)
	}
}

func metadataKey(key string) string {
	return "ingest:datasource:metadata:" + key
}
