//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/ingest/internal/engine/bootstrap"
	"github.com/go-arcade/ingest/internal/engine/config"
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/internal/engine/router"
	"github.com/go-arcade/ingest/internal/engine/scheduler"
	"github.com/go-arcade/ingest/internal/engine/service"
	"github.com/go-arcade/ingest/internal/pkg/executor"
	"github.com/go-arcade/ingest/internal/pkg/probe"
	"github.com/go-arcade/ingest/pkg/cache"
	"github.com/go-arcade/ingest/pkg/database"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/google/wire"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		// 日志
		log.ProviderSet,
		// 存储层
		database.ProviderSet,
		cache.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		// 数据源探测
		probe.ProviderSet,
		// 执行器
		executor.ProviderSet,
		// 服务层
		service.ProviderSet,
		// 调度器
		scheduler.ProviderSet,
		// 路由层
		router.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}
