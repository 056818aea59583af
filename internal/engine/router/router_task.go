package router

import (
	"github.com/bytedance/sonic"
	"github.com/go-arcade/ingest/internal/engine/service"
	"github.com/go-arcade/ingest/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) taskRouter(r fiber.Router) {
	taskGroup := r.Group("/tasks")
	{
		taskGroup.Post("/", rt.createTask)            // POST /tasks/
		taskGroup.Get("/", rt.listTasks)              // GET /tasks/?name=&skip=&limit=
		taskGroup.Delete("/", rt.deleteTasks)         // DELETE /tasks/ body [ids]
		taskGroup.Get("/:id", rt.getTask)             // GET /tasks/:id
		taskGroup.Delete("/:id", rt.deleteTask)       // DELETE /tasks/:id
		taskGroup.Post("/:id/run", rt.runTask)        // POST /tasks/:id/run
		taskGroup.Put("/:id/status", rt.reportStatus) // PUT /tasks/:id/status, executor callback
	}
}

func (rt *Router) createTask(c *fiber.Ctx) error {
	var req service.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed, "invalid request body")
	}
	task, err := rt.Services.Task.Create(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(task)
}

func (rt *Router) listTasks(c *fiber.Ctx) error {
	skip, limit := paging(c, 100)
	items, total, err := rt.Services.Task.List(c.Query("name"), skip, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"items": items,
		"total": total,
	})
}

func (rt *Router) getTask(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return http.WithRepErrMsg(c, http.BadRequest, "invalid task id")
	}
	task, err := rt.Services.Task.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(task)
}

func (rt *Router) runTask(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return http.WithRepErrMsg(c, http.BadRequest, "invalid task id")
	}
	task, err := rt.Services.Task.Run(c.UserContext(), id, service.TriggerManual)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Task started",
		"task_id": task.ID,
		"run_id":  task.RunID,
	})
}

func (rt *Router) reportStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return http.WithRepErrMsg(c, http.BadRequest, "invalid task id")
	}
	var report service.StatusReport
	if err := c.BodyParser(&report); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed, "invalid request body")
	}
	task, err := rt.Services.Task.ReportStatus(c.UserContext(), id, &report)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(task)
}

func (rt *Router) deleteTask(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return http.WithRepErrMsg(c, http.BadRequest, "invalid task id")
	}
	if err := rt.Services.Task.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// deleteTasks accepts [1,2] or {"ids":[1,2]}.
func (rt *Router) deleteTasks(c *fiber.Ctx) error {
	var ids []uint64
	if err := sonic.Unmarshal(c.Body(), &ids); err != nil {
		var body struct {
			IDs []uint64 `json:"ids"`
		}
		if err := sonic.Unmarshal(c.Body(), &body); err != nil {
			return http.WithRepErrMsg(c, http.RequestParameterParsingFailed, "body must be a list of task ids")
		}
		ids = body.IDs
	}
	if len(ids) == 0 {
		return http.WithRepErrMsg(c, http.ValidationFailed, "no task ids given")
	}
	n, err := rt.Services.Task.DeleteMany(c.UserContext(), ids)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "deleted": n})
}
