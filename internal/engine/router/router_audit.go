package router

import (
	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) auditRouter(r fiber.Router) {
	auditGroup := r.Group("/audit")
	{
		auditGroup.Get("/", rt.listAuditLogs)   // GET /audit/?user_id=&action=&resource=&skip=&limit=
		auditGroup.Post("/", rt.createAuditLog) // POST /audit/
	}
}

func (rt *Router) listAuditLogs(c *fiber.Ctx) error {
	skip, limit := paging(c, 100)
	filter := repo.AuditFilter{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
	}
	items, total, err := rt.Services.Audit.List(filter, skip, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"items": items,
		"total": total,
	})
}

func (rt *Router) createAuditLog(c *fiber.Ctx) error {
	var entry model.AuditLog
	if err := c.BodyParser(&entry); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed, "invalid request body")
	}
	if err := rt.Services.Audit.Create(&entry); err != nil {
		return fail(c, err)
	}
	return c.JSON(entry)
}
