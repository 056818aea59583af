package model

import "github.com/go-arcade/ingest/pkg/taskconf"

// SyncedTable registry of tables and buckets written by successful syncs
type SyncedTable struct {
	BaseModel
	Name       string              `gorm:"column:table_name;size:128;uniqueIndex" json:"table_name"`
	SourceType taskconf.SourceType `gorm:"column:source_type;size:32" json:"source_type"`
	SourceName string              `gorm:"column:source_name;size:128" json:"source_name"`
	RowCount   int64               `gorm:"column:row_count;default:0" json:"row_count"`
}

func (SyncedTable) TableName() string {
	return "t_synced_table"
}
