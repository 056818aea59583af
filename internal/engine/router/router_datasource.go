package router

import (
	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/internal/pkg/probe"
	"github.com/go-arcade/ingest/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) dataSourceRouter(r fiber.Router) {
	dsGroup := r.Group("/datasources")
	{
		dsGroup.Post("/test-connection", rt.testConnection) // POST /datasources/test-connection
		dsGroup.Post("/", rt.createDataSource)              // POST /datasources/
		dsGroup.Get("/", rt.listDataSources)                // GET /datasources/?name=&type=&skip=&limit=
		dsGroup.Get("/:id", rt.getDataSource)               // GET /datasources/:id
		dsGroup.Put("/:id", rt.updateDataSource)            // PUT /datasources/:id
		dsGroup.Delete("/:id", rt.deleteDataSource)         // DELETE /datasources/:id
		dsGroup.Get("/:id/metadata", rt.dataSourceMetadata) // GET /datasources/:id/metadata
	}
}

func (rt *Router) createDataSource(c *fiber.Ctx) error {
	var ds model.DataSource
	if err := c.BodyParser(&ds); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed, "invalid request body")
	}
	if err := rt.Services.DataSource.Create(&ds); err != nil {
		return fail(c, err)
	}
	return c.JSON(ds)
}

func (rt *Router) listDataSources(c *fiber.Ctx) error {
	skip, limit := paging(c, 10)
	filter := repo.DataSourceFilter{
		Name: c.Query("name"),
		Type: c.Query("type"),
	}
	items, total, err := rt.Services.DataSource.List(filter, skip, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"data":  items,
		"total": total,
		"skip":  skip,
		"limit": limit,
	})
}

func (rt *Router) getDataSource(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return http.WithRepErrMsg(c, http.BadRequest, "invalid data source id")
	}
	ds, err := rt.Services.DataSource.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ds)
}

func (rt *Router) updateDataSource(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return http.WithRepErrMsg(c, http.BadRequest, "invalid data source id")
	}
	var update model.DataSource
	if err := c.BodyParser(&update); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed, "invalid request body")
	}
	ds, err := rt.Services.DataSource.Update(c.UserContext(), id, &update)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ds)
}

func (rt *Router) deleteDataSource(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return http.WithRepErrMsg(c, http.BadRequest, "invalid data source id")
	}
	if err := rt.Services.DataSource.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (rt *Router) dataSourceMetadata(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return http.WithRepErrMsg(c, http.BadRequest, "invalid data source id")
	}
	tables, err := rt.Services.DataSource.Metadata(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"tables": tables})
}

// testConnection answers 200 with {status, message} even when the test fails.
func (rt *Router) testConnection(c *fiber.Ctx) error {
	info, err := probe.ParseConnectionInfo(c.Body())
	if err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed, err.Error())
	}
	if info.Type == "" {
		return http.WithRepErrMsg(c, http.ValidationFailed, "type is required")
	}
	return c.JSON(rt.Services.DataSource.TestConnection(c.UserContext(), info))
}
