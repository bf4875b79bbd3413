package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workspace membership roles. CLIENT members are portal users: they only see
// their own client's data.
const (
	MemberRoleAdmin  = "ADMIN"
	MemberRoleMember = "MEMBER"
	MemberRoleClient = "CLIENT"
)

// Workspace is the tenant boundary grouping clients, projects, and members.
type Workspace struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	CreatedBy uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WorkspaceMember links a user to a workspace with a role.
type WorkspaceMember struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index:idx_members_workspace_user,unique,priority:1" json:"workspace_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_members_workspace_user,unique,priority:2" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        string    `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
