package models

import (
	"time"

	"github.com/google/uuid"
)

// Team carries a derived total_minutes aggregate. The total is recomputed
// from member rows, never incremented in place, so concurrent member
// updates cannot leave it drifted for longer than one recompute.
type Team struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"not null;size:100" json:"name"`
	Active       bool      `gorm:"default:true;index" json:"active"`
	TotalMinutes int       `gorm:"default:0" json:"total_minutes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TeamMember holds one participant's accumulated minutes within a team.
type TeamMember struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_members_team_user" json:"team_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_members_team_user" json:"user_id"`
	Minutes   int       `gorm:"default:0" json:"minutes"`
	UpdatedAt time.Time `json:"updated_at"`
}
