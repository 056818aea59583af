package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/internal/pkg/storage"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"gorm.io/gorm"
)

const (
	AssetTable  = "table"
	AssetBucket = "bucket"
	AssetFile   = "file"
)

// Asset is one table or bucket written by a successful sync, or a data file
// under the local data directory.
type Asset struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Path   string `json:"path"`
	Size   string `json:"size"`
	Source string `json:"source"`
	Rows   int64  `json:"rows"`
}

// Stores the system-owned stores synced data lands in.
type Stores struct {
	MySQL *gorm.DB
	// ClickHouse nil when not configured
	ClickHouse *gorm.DB
	// Buckets nil when not configured
	Buckets storage.Buckets
	DataDir string
}

type AssetService struct {
	syncedRepo repo.ISyncedTableRepository
	stores     Stores
	auditSvc   *AuditService
}

func NewAssetService(syncedRepo repo.ISyncedTableRepository, stores Stores, auditSvc *AuditService) *AssetService {
	return &AssetService{syncedRepo: syncedRepo, stores: stores, auditSvc: auditSvc}
}

// List returns local data files first, then the registry.
func (as *AssetService) List() ([]Asset, error) {
	files, err := storage.ListFiles(as.stores.DataDir)
	if err != nil {
		// 数据目录不可读时仍返回登记表
		log.Warnw("failed to scan data directory", "dir", as.stores.DataDir, "error", err)
	}
	tables, err := as.syncedRepo.ListSyncedTables()
	if err != nil {
		return nil, err
	}

	assets := make([]Asset, 0, len(files)+len(tables))
	for _, f := range files {
		assets = append(assets, Asset{
			Name:   f.Name,
			Type:   AssetFile,
			Path:   f.Path,
			Size:   fmt.Sprintf("%.2f KB", float64(f.Size)/1024),
			Source: "Local File",
		})
	}
	for _, t := range tables {
		kind := AssetTable
		if t.SourceType == taskconf.SourceMinIO {
			kind = AssetBucket
		}
		assets = append(assets, Asset{
			ID:     t.ID,
			Name:   t.Name,
			Type:   kind,
			Path:   t.Name,
			Size:   "-",
			Source: string(t.SourceType),
			Rows:   t.RowCount,
		})
	}
	return assets, nil
}

// registered looks the registry up by id first, then by name. A miss
// returns nil without error.
func (as *AssetService) registered(id uint64, name string) (*model.SyncedTable, error) {
	if id > 0 {
		entry, err := as.syncedRepo.GetSyncedTableByID(id)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if name == "" {
		return nil, nil
	}
	entry, err := as.syncedRepo.GetSyncedTable(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return entry, err
}

// parseAssetID numeric path segments address the registry by id
func parseAssetID(nameOrID string) uint64 {
	id, err := strconv.ParseUint(nameOrID, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func isBucket(entry *model.SyncedTable) bool {
	return entry != nil && taskconf.DeriveTargetType(entry.SourceType) == taskconf.TargetSystemMinIO
}

func (as *AssetService) buckets() (storage.Buckets, error) {
	if as.stores.Buckets == nil {
		return nil, fmt.Errorf("%w: minio", ErrStorageUnavailable)
	}
	return as.stores.Buckets, nil
}
