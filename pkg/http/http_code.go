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

package http

import "github.com/gofiber/fiber/v2"

// Code pairs a business error code with the HTTP status it is served with.
type Code struct {
	Code   int
	Status int
	Msg    string
}

var (
	BadRequest                    = failed(4000, fiber.StatusBadRequest, "Bad request")
	RequestParameterParsingFailed = failed(4001, fiber.StatusBadRequest, "Request parameter parsing failed")
	ValidationFailed              = failed(4002, fiber.StatusBadRequest, "Validation failed")
	NotFound                      = failed(4004, fiber.StatusNotFound, "Not found")
	TaskNotFound                  = failed(4041, fiber.StatusNotFound, "Task not found")
	DataSourceNotFound            = failed(4042, fiber.StatusNotFound, "Data source not found")
	AssetNotFound                 = failed(4043, fiber.StatusNotFound, "Asset not found")
	TableNotFound                 = failed(4044, fiber.StatusNotFound, "Table not found")
	RowNotFound                   = failed(4045, fiber.StatusNotFound, "Row not found")
	TaskAlreadyRunning            = failed(4091, fiber.StatusConflict, "Task is already running")
	InvalidStatusTransition       = failed(4092, fiber.StatusConflict, "Invalid task status transition")

	InternalError      = failed(5000, fiber.StatusInternalServerError, "Internal error, please contact the administrator")
	StorageUnavailable = failed(5030, fiber.StatusServiceUnavailable, "Storage is not configured")
)

// failed 构造函数
func failed(code, status int, msg string) *Code {
	return &Code{Code: code, Status: status, Msg: msg}
}
