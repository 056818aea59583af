package executor

import (
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/google/wire"
)

// ProviderSet 提供执行器相关依赖
var ProviderSet = wire.NewSet(
	ProvideExecutor,
	ProvideDispatcher,
)

// ProvideExecutor 配置了 URL 时使用 webhook, 否则使用 noop
func ProvideExecutor(conf Config) Executor {
	if conf.URL == "" {
		log.Warn("executor url not configured, runs will not be dispatched")
		return NoopExecutor{}
	}
	return NewWebhookExecutor(conf)
}

// ProvideDispatcher 创建并启动分发器
func ProvideDispatcher(executor Executor, conf Config) (*Dispatcher, func(), error) {
	d := NewDispatcher(executor, conf)
	if err := d.Start(); err != nil {
		return nil, nil, err
	}
	return d, d.Stop, nil
}
