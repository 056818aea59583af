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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-arcade/ingest/internal/engine/config"
	"github.com/go-arcade/ingest/internal/engine/router"
	"github.com/go-arcade/ingest/internal/engine/scheduler"
	"github.com/go-arcade/ingest/internal/pkg/executor"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type App struct {
	HttpApp    *fiber.App
	Dispatcher *executor.Dispatcher
	Scheduler  *scheduler.Scheduler
	Logger     *zap.Logger
	AppConf    *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	logger *zap.Logger,
	rt *router.Router,
	dispatcher *executor.Dispatcher,
	sched *scheduler.Scheduler,
	appConf *config.AppConfig,
) (*App, func(), error) {
	app := &App{
		HttpApp:    rt.Router(),
		Dispatcher: dispatcher,
		Scheduler:  sched,
		Logger:     logger,
		AppConf:    appConf,
	}

	cleanup := func() {
		_ = log.Sync()
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, err
	}
	return app, cleanup, nil
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	appConf := app.AppConf

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	addr := fmt.Sprintf("%s:%d", appConf.Http.Host, appConf.Http.Port)
	go func() {
		log.Infow("HTTP listener started",
			"address", addr,
			"executor", app.Dispatcher.Executor().Name(),
			"scheduler", app.Scheduler != nil,
		)
		if err := app.HttpApp.Listen(addr); err != nil {
			log.Errorw("HTTP listener failed",
				"address", addr,
				"error", err,
			)
			quit <- syscall.SIGTERM
		}
	}()

	sig := <-quit
	log.Infof("Received signal: %v, shutting down gracefully...", sig)

	// 先停止接收请求, 再由 cleanup 依次停止调度器和分发器
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), appConf.Http.ShutdownWait())
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	cleanup()

	log.Info("Server shutdown complete")
}
