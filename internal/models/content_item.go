package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Content kinds.
const (
	ContentKindPost  = "post"
	ContentKindReply = "reply"
)

// Review statuses for a content item.
const (
	ReviewOpen        = "open"
	ReviewPending     = "pending"
	ReviewApproved    = "approved"
	ReviewResolved    = "resolved"
	ReviewRateLimited = "rate_limited"
)

// ContentItem is a user-submitted post or reply together with its
// moderation verdict. Verdict fields (toxicity_score, toxicity_reason,
// flagged, hidden, review_status) are overwritten by the pipeline, never
// accumulated, so re-processing the same item is safe.
type ContentItem struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorID       *uuid.UUID     `gorm:"type:uuid;index" json:"author_id,omitempty"`
	Kind           string         `gorm:"size:20;not null;default:'post'" json:"kind"`
	ParentID       *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Text           string         `gorm:"type:text;not null" json:"text"`
	ToxicityScore  float64        `gorm:"default:0" json:"toxicity_score"`
	ToxicityReason string         `gorm:"size:255" json:"toxicity_reason,omitempty"`
	Flagged        bool           `gorm:"default:false;index" json:"flagged"`
	Hidden         bool           `gorm:"default:false;index" json:"hidden"`
	ReviewStatus   string         `gorm:"size:20;not null;default:'open'" json:"review_status"`
	LikesCount     int            `gorm:"default:0" json:"likes_count"`
	RepliesCount   int            `gorm:"default:0" json:"replies_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// ContentLike tracks who liked a content item; the counter itself lives on
// the parent row and is only touched via atomic increments.
type ContentLike struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_content_user" json:"content_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_content_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
