package repo

import (
	"errors"
	"time"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/pkg/database"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"gorm.io/gorm"
)

type ISyncedTableRepository interface {
	// RecordSync overwrite sets row_count to rows, append adds rows to it
	RecordSync(entry *model.SyncedTable, mode taskconf.SyncMode) error
	GetSyncedTable(name string) (*model.SyncedTable, error)
	GetSyncedTableByID(id uint64) (*model.SyncedTable, error)
	ListSyncedTables() ([]*model.SyncedTable, error)
	DeleteSyncedTable(id uint64) error
}

type SyncedTableRepo struct {
	database.IDatabase
}

func NewSyncedTableRepo(db database.IDatabase) ISyncedTableRepository {
	return &SyncedTableRepo{
		IDatabase: db,
	}
}

func (sr *SyncedTableRepo) RecordSync(entry *model.SyncedTable, mode taskconf.SyncMode) error {
	return sr.Database().Transaction(func(tx *gorm.DB) error {
		var existing model.SyncedTable
		err := tx.Table(existing.TableName()).
			Where("table_name = ?", entry.Name).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Table(entry.TableName()).Create(entry).Error
		}
		if err != nil {
			return err
		}

		rowCount := gorm.Expr("row_count + ?", entry.RowCount)
		if mode == taskconf.ModeOverwrite {
			rowCount = gorm.Expr("?", entry.RowCount)
		}
		return tx.Table(existing.TableName()).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"row_count":   rowCount,
				"source_type": entry.SourceType,
				"source_name": entry.SourceName,
				"updated_at":  time.Now(),
			}).Error
	})
}

func (sr *SyncedTableRepo) GetSyncedTable(name string) (*model.SyncedTable, error) {
	var st model.SyncedTable
	err := sr.Database().Table(st.TableName()).
		Where("table_name = ?", name).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (sr *SyncedTableRepo) GetSyncedTableByID(id uint64) (*model.SyncedTable, error) {
	var st model.SyncedTable
	err := sr.Database().Table(st.TableName()).
		Where("id = ?", id).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (sr *SyncedTableRepo) DeleteSyncedTable(id uint64) error {
	var st model.SyncedTable
	return sr.Database().Table(st.TableName()).
		Where("id = ?", id).
		Delete(&model.SyncedTable{}).Error
}

func (sr *SyncedTableRepo) ListSyncedTables() ([]*model.SyncedTable, error) {
	var (
		list []*model.SyncedTable
		st   model.SyncedTable
	)
	err := sr.Database().Table(st.TableName()).Order("id DESC").Find(&list).Error
	return list, err
}
