package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform-level roles. Workspace membership roles are separate (see workspace.go).
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents an account that can sign in. Platform ADMIN bypasses all
// workspace-level checks.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role      string         `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
