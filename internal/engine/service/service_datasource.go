package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/internal/pkg/probe"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"gorm.io/datatypes"
)

type DataSourceService struct {
	dsRepo   repo.IDataSourceRepository
	probes   *probe.Registry
	auditSvc *AuditService
}

func NewDataSourceService(dsRepo repo.IDataSourceRepository, probes *probe.Registry, auditSvc *AuditService) *DataSourceService {
	return &DataSourceService{
		dsRepo:   dsRepo,
		probes:   probes,
		auditSvc: auditSvc,
	}
}

// normalizeConnectionInfo accepts an object or a string holding one
func normalizeConnectionInfo(raw []byte) (datatypes.JSON, error) {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON(`{}`), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = []byte(strings.TrimSpace(s))
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("connection_info must be a JSON object: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func (ds *DataSourceService) Create(source *model.DataSource) error {
	source.Name = strings.TrimSpace(source.Name)
	if source.Name == "" {
		return invalid("name is required")
	}
	if !source.Type.IsValid() {
		return invalid(fmt.Sprintf("unsupported data source type %q", source.Type))
	}
	info, err := normalizeConnectionInfo(source.ConnectionInfo)
	if err != nil {
		return invalid(err.Error())
	}
	source.ID = 0
	source.ConnectionInfo = info

	if err := ds.dsRepo.CreateDataSource(source); err != nil {
		return err
	}
	ds.auditSvc.Record(model.UserAdmin, model.ActionCreateDataSource, source.Name, "Type: "+string(source.Type))
	return nil
}

func (ds *DataSourceService) Get(id uint64) (*model.DataSource, error) {
	source, err := ds.dsRepo.GetDataSource(id)
	if repo.IsNotFound(err) {
		return nil, ErrDataSourceNotFound
	}
	return source, err
}

func (ds *DataSourceService) List(filter repo.DataSourceFilter, skip, limit int) ([]*model.DataSource, int64, error) {
	return ds.dsRepo.ListDataSources(filter, skip, limit)
}

// Update rewrites name, description and connection info. The type of a data
// source never changes.
func (ds *DataSourceService) Update(ctx context.Context, id uint64, update *model.DataSource) (*model.DataSource, error) {
	source, err := ds.Get(id)
	if err != nil {
		return nil, err
	}
	if update.Type != "" && update.Type != source.Type {
		return nil, invalid("data source type cannot be changed")
	}
	if name := strings.TrimSpace(update.Name); name != "" {
		source.Name = name
	}
	source.Description = update.Description
	if len(update.ConnectionInfo) > 0 {
		info, err := normalizeConnectionInfo(update.ConnectionInfo)
		if err != nil {
			return nil, invalid(err.Error())
		}
		source.ConnectionInfo = info
	}

	if err := ds.dsRepo.UpdateDataSource(source); err != nil {
		return nil, err
	}
	ds.probes.Invalidate(ctx, cacheKey(id))
	return source, nil
}

func (ds *DataSourceService) Delete(ctx context.Context, id uint64) error {
	source, err := ds.Get(id)
	if err != nil {
		return err
	}
	if err := ds.dsRepo.DeleteDataSource(id); err != nil {
		return err
	}
	ds.probes.Invalidate(ctx, cacheKey(id))
	ds.auditSvc.Record(model.UserAdmin, model.ActionDeleteDataSource, source.Name, "")
	return nil
}

// Metadata lists the tables, or buckets, of a data source.
func (ds *DataSourceService) Metadata(ctx context.Context, id uint64) ([]string, error) {
	source, err := ds.Get(id)
	if err != nil {
		return nil, err
	}
	info, err := probe.ParseConnectionInfo(source.ConnectionInfo)
	if err != nil {
		log.Warnw("unreadable connection info", "datasource", id, "error", err)
		return []string{}, nil
	}
	info.Type = source.Type
	return ds.probes.Metadata(ctx, cacheKey(id), info)
}

func (ds *DataSourceService) TestConnection(ctx context.Context, info probe.ConnectionInfo) probe.Result {
	return ds.probes.Test(ctx, info)
}

// SourceType resolves a data source for the configuration builder.
func (ds *DataSourceService) SourceType(_ context.Context, id uint64) (taskconf.SourceType, error) {
	source, err := ds.Get(id)
	if err == ErrDataSourceNotFound {
		return "", taskconf.ErrSourceNotFound
	}
	if err != nil {
		return "", err
	}
	return source.Type, nil
}

func cacheKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
