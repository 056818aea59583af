package model

import (
	"github.com/go-arcade/ingest/pkg/taskconf"
	"gorm.io/datatypes"
)

// DataSource a named connection to an external store
type DataSource struct {
	BaseModel
	Name           string              `gorm:"column:name;size:128;index" json:"name"`
	Description    string              `gorm:"column:description;size:512" json:"description"`
	Type           taskconf.SourceType `gorm:"column:type;size:32" json:"type"`
	ConnectionInfo datatypes.JSON      `gorm:"column:connection_info" json:"connection_info"`
}

func (DataSource) TableName() string {
	return "t_datasource"
}
