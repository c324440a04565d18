package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InboxItem is a user-facing notification row. The per-recipient collection
// is capped; pruning removes oldest read items first.
type InboxItem struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientUID uuid.UUID      `gorm:"type:uuid;not null;index" json:"recipient_uid"`
	Type         string         `gorm:"not null;size:50" json:"type"`
	Title        string         `gorm:"size:255" json:"title"`
	Body         string         `gorm:"type:text" json:"body"`
	Data         datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"data"`
	Read         bool           `gorm:"default:false;index" json:"read"`
	CreatedAt    time.Time      `json:"created_at"`
}

// DeviceToken is a push-delivery target. Tokens the gateway reports as
// invalid are deleted.
type DeviceToken struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_device_tokens_uid_token" json:"recipient_uid"`
	Token        string    `gorm:"not null;size:512;uniqueIndex:idx_device_tokens_uid_token" json:"token"`
	Platform     string    `gorm:"size:20" json:"platform"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationPrefs stores per-recipient opt-outs keyed by inbox item type.
// A missing row means everything is enabled.
type NotificationPrefs struct {
	RecipientUID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"recipient_uid"`
	Disabled     datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"disabled"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
