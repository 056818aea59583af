package middleware

import (
	"github.com/go-arcade/ingest/pkg/id"
	"github.com/gofiber/fiber/v2"
)

const (
	RequestIDHeader = "X-Request-Id"
	RequestIDKey    = "request_id"
)

// RequestMiddleware propagates or generates the X-Request-Id header.
func RequestMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestId := c.Get(RequestIDHeader)
		if requestId == "" {
			requestId = id.GetUUID()
			c.Request().Header.Set(RequestIDHeader, requestId)
		}
		c.Set(RequestIDHeader, requestId)
		c.Locals(RequestIDKey, requestId)
		return c.Next()
	}
}
