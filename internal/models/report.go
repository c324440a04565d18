package models

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses. Resolved and dismissed are terminal.
const (
	ReportOpen      = "open"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// Report is a user complaint about a content item. Once a report reaches a
// terminal status it is never mutated again.
type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PostID      uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	ReporterUID uuid.UUID `gorm:"type:uuid;not null;index" json:"reporter_uid"`
	Reason      string    `gorm:"not null;size:500" json:"reason"`
	Status      string    `gorm:"not null;default:'open';size:20;index" json:"status"`
	AutoAction  string    `gorm:"size:50" json:"auto_action,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Terminal reports whether the report reached a final status.
func (r *Report) Terminal() bool {
	return r.Status == ReportResolved || r.Status == ReportDismissed
}
