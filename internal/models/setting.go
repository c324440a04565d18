package models

import "time"

// PipelineSetting is a runtime-tunable key/value pair (thresholds, rate-limit
// windows, deny-list terms). Admin-managed; services read through the
// settings snapshot rather than hitting this table per request.
type PipelineSetting struct {
	Key       string    `gorm:"size:100;primaryKey" json:"key"`
	Value     string    `gorm:"size:2000;not null" json:"value"`
	Type      string    `gorm:"size:20;not null;default:'string'" json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PipelineSetting) TableName() string {
	return "pipeline_settings"
}
