package scheduler

import (
	"github.com/go-arcade/ingest/internal/engine/config"
	"github.com/go-arcade/ingest/internal/engine/service"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(ProvideScheduler)

// ProvideScheduler 启动调度器并注册到任务服务, 未开启时返回 nil
func ProvideScheduler(conf config.SchedulerConfig, services *service.Services) (*Scheduler, func(), error) {
	if !conf.Enabled {
		return nil, func() {}, nil
	}
	s := New(services.Task)
	services.Task.SetScheduleHook(s)
	if err := s.Start(); err != nil {
		return nil, nil, err
	}
	return s, s.Stop, nil
}
