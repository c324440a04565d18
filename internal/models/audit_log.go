package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLogEntry is the append-only trail of moderation decisions. Rows are
// write-once: nothing in the pipeline updates or deletes them.
type AuditLogEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action    string         `gorm:"not null;size:50;index" json:"action"`
	PostID    uuid.UUID      `gorm:"type:uuid;index" json:"post_id"`
	ReportID  *uuid.UUID     `gorm:"type:uuid;index" json:"report_id,omitempty"`
	AdminUID  uuid.UUID      `gorm:"type:uuid" json:"admin_uid"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

func (AuditLogEntry) TableName() string {
	return "audit_log"
}
