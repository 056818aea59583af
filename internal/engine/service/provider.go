package service

import (
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/internal/pkg/executor"
	"github.com/go-arcade/ingest/internal/pkg/probe"
	"github.com/go-arcade/ingest/internal/pkg/storage"
	"github.com/go-arcade/ingest/pkg/database"
	"github.com/google/wire"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(ProvideStores, ProvideServices)

// ProvideStores 汇总同步目标存储, 未配置的存储为 nil
func ProvideStores(manager database.Manager, conf storage.Config) (Stores, error) {
	buckets, err := storage.NewBuckets(conf.MinIO)
	if err != nil {
		return Stores{}, err
	}
	return Stores{
		MySQL:      manager.MySQL(),
		ClickHouse: manager.ClickHouse(),
		Buckets:    buckets,
		DataDir:    conf.DataDir,
	}, nil
}

func ProvideServices(repos *repo.Repositories, probes *probe.Registry, dispatcher *executor.Dispatcher, execConf executor.Config, stores Stores) *Services {
	return NewServices(repos, probes, dispatcher, execConf, stores)
}
