package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User backs the DB-based admin role check. Identity issuance (sign-up,
// token minting) happens on the client platform; this service only verifies
// bearer tokens against the shared secret.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
