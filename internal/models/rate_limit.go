package models

import "time"

// Action classes with independent rate-limit windows.
const (
	ActionPost   = "post"
	ActionReply  = "reply"
	ActionReport = "report"
)

// RateLimitRecord holds the last attempt timestamp per actor and action
// class. It is upserted on every attempt, including suppressed ones, so
// rapid retries keep extending the cooldown instead of slipping through.
type RateLimitRecord struct {
	ActorID      string    `gorm:"size:64;primaryKey" json:"actor_id"`
	ActionClass  string    `gorm:"size:20;primaryKey" json:"action_class"`
	LastActionAt time.Time `gorm:"not null" json:"last_action_at"`
}

func (RateLimitRecord) TableName() string {
	return "rate_limit_records"
}
