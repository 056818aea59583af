package router

import (
	"bytes"

	"github.com/go-arcade/ingest/internal/engine/service"
	"github.com/go-arcade/ingest/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) assetRouter(r fiber.Router) {
	dataGroup := r.Group("/data-mgmt")
	{
		dataGroup.Get("/assets", rt.listAssets)                    // GET /data-mgmt/assets
		dataGroup.Get("/preview", rt.previewAsset)                 // GET /data-mgmt/preview?path=&id=&limit=&offset=
		dataGroup.Get("/structure", rt.assetStructure)             // GET /data-mgmt/structure?path=&id=
		dataGroup.Get("/download/:nameOrID", rt.downloadAsset)     // GET /data-mgmt/download/:nameOrID?format=csv|json|excel
		dataGroup.Put("/table/:table/row/:rowID", rt.updateRow)    // PUT /data-mgmt/table/:table/row/:rowID
		dataGroup.Delete("/table/:table/row/:rowID", rt.deleteRow) // DELETE /data-mgmt/table/:table/row/:rowID
		dataGroup.Delete("/:nameOrID", rt.deleteAsset)             // DELETE /data-mgmt/:nameOrID
	}
}

func (rt *Router) listAssets(c *fiber.Ctx) error {
	assets, err := rt.Services.Asset.List()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(assets)
}

func (rt *Router) previewAsset(c *fiber.Ctx) error {
	id := uint64(max(c.QueryInt("id", 0), 0))
	offset := c.QueryInt("offset", 0)
	limit := min(c.QueryInt("limit", 20), 1000)
	preview, err := rt.Services.Asset.Preview(c.UserContext(), c.Query("path"), id, offset, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(preview)
}

func (rt *Router) assetStructure(c *fiber.Ctx) error {
	id := uint64(max(c.QueryInt("id", 0), 0))
	columns, err := rt.Services.Asset.Structure(c.UserContext(), c.Query("path"), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(columns)
}

func (rt *Router) deleteAsset(c *fiber.Ctx) error {
	msg, err := rt.Services.Asset.DeleteAsset(c.UserContext(), c.Params("nameOrID"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "message": msg})
}

func (rt *Router) updateRow(c *fiber.Ctx) error {
	var req service.RowUpdate
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed, "invalid request body")
	}
	if err := rt.Services.Asset.UpdateRow(c.UserContext(), c.Params("table"), c.Params("rowID"), &req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (rt *Router) deleteRow(c *fiber.Ctx) error {
	if err := rt.Services.Asset.DeleteRow(c.UserContext(), c.Params("table"), c.Params("rowID")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (rt *Router) downloadAsset(c *fiber.Ctx) error {
	exp, err := rt.Services.Asset.Download(c.UserContext(), c.Params("nameOrID"), c.Query("format", service.FormatCSV))
	if err != nil {
		return fail(c, err)
	}
	if exp.Links != nil {
		return c.JSON(fiber.Map{"status": "minio_links", "links": exp.Links})
	}

	var buf bytes.Buffer
	if err := exp.Write(&buf); err != nil {
		return fail(c, err)
	}
	c.Attachment(exp.Filename())
	c.Set(fiber.HeaderContentType, exp.ContentType())
	return c.Send(buf.Bytes())
}
