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

package middleware

import (
	"errors"
	"runtime/debug"

	"github.com/go-arcade/ingest/pkg/http"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// ExceptionMiddleware turns a handler panic into a 500 error body.
func ExceptionMiddleware(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("panic in handler",
				"path", c.Path(),
				"request_id", c.Locals(RequestIDKey),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = http.WithRepErr(c, http.InternalError)
		}
	}()
	return c.Next()
}

// ErrorHandler is the fiber ErrorHandler: fiber errors keep their status, the
// rest become InternalError without leaking the cause.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := &http.Code{Code: fe.Code, Status: fe.Code, Msg: fe.Message}
		if fe.Code == fiber.StatusNotFound {
			code = http.NotFound
		}
		return http.WithRepErrMsg(c, code, fe.Message)
	}
	log.Errorw("unhandled error", "path", c.Path(), "error", err)
	return http.WithRepErr(c, http.InternalError)
}
