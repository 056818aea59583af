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

package router

import (
	"strconv"
	"time"

	"github.com/go-arcade/ingest/internal/engine/service"
	"github.com/go-arcade/ingest/pkg/http"
	"github.com/go-arcade/ingest/pkg/http/middleware"
	"github.com/go-arcade/ingest/pkg/metrics"
	"github.com/go-arcade/ingest/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type Router struct {
	Http     *http.Http
	Services *service.Services
}

func NewRouter(httpConf *http.Http, services *service.Services) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
	}
}

func (rt *Router) Router() *fiber.App {
	bodyLimit := rt.Http.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:               "Ingest",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             bodyLimit,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.CorsMiddleware(),
		middleware.RequestMiddleware(),
		middleware.AccessLogMiddleware(rt.Http),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	if rt.Http.ExposeMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Default().Handler()))
	}

	rt.dataSourceRouter(app)
	rt.taskRouter(app)
	rt.auditRouter(app)
	rt.assetRouter(app)

	// 找不到路径时的处理, 必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrMsg(c, http.NotFound, "request path not found")
	})

	return app
}

// paging reads skip/limit, limit falls back to def and is capped at 1000.
func paging(c *fiber.Ctx, def int) (int, int) {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := c.QueryInt("limit", def)
	if limit <= 0 {
		limit = def
	}
	if limit > 1000 {
		limit = 1000
	}
	return skip, limit
}

func paramID(c *fiber.Ctx, key string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params(key), 10, 64)
	return id, err == nil && id > 0
}
