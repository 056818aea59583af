package router

import (
	"errors"

	"github.com/go-arcade/ingest/internal/engine/service"
	"github.com/go-arcade/ingest/internal/pkg/storage"
	"github.com/go-arcade/ingest/pkg/http"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto its response code.
func fail(c *fiber.Ctx, err error) error {
	var ve *taskconf.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.WithRepErrMsg(c, http.ValidationFailed, ve.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		return http.WithRepErr(c, http.TaskNotFound)
	case errors.Is(err, service.ErrDataSourceNotFound):
		return http.WithRepErr(c, http.DataSourceNotFound)
	case errors.Is(err, service.ErrAssetNotFound):
		return http.WithRepErrMsg(c, http.AssetNotFound, err.Error())
	case errors.Is(err, service.ErrTableNotFound):
		return http.WithRepErr(c, http.TableNotFound)
	case errors.Is(err, service.ErrRowNotFound):
		return http.WithRepErr(c, http.RowNotFound)
	case errors.Is(err, storage.ErrUnsupportedFile):
		return http.WithRepErrMsg(c, http.ValidationFailed, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.WithRepErrMsg(c, http.StorageUnavailable, err.Error())
	case errors.Is(err, service.ErrAlreadyRunning):
		return http.WithRepErr(c, http.TaskAlreadyRunning)
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrStaleReport),
		errors.Is(err, service.ErrConcurrentUpdate):
		return http.WithRepErrMsg(c, http.InvalidStatusTransition, err.Error())
	}
	log.Errorw("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err)
	return http.WithRepErr(c, http.InternalError)
}
