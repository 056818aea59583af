package http

import (
	"github.com/gofiber/fiber/v2"
)

// ResponseErr is the error body returned by every endpoint.
type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Path    string `json:"path,omitempty"`
}

// WithRepErr writes code with its default message.
func WithRepErr(c *fiber.Ctx, code *Code) error {
	return WithRepErrMsg(c, code, code.Msg)
}

// WithRepErrMsg writes code with a custom message.
func WithRepErrMsg(c *fiber.Ctx, code *Code, errMsg string) error {
	return c.Status(code.Status).JSON(ResponseErr{
		ErrCode: code.Code,
		ErrMsg:  errMsg,
		Path:    c.Path(),
	})
}
