package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a customer entity owned by a workspace. A client may additionally
// be linked to a portal workspace (and portal user) distinct from the
// workspace that created it; invoices for such a client live under the portal
// workspace.
type Client struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkspaceID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"workspace_id"`
	PortalWorkspaceID *uuid.UUID     `gorm:"type:uuid;index" json:"portal_workspace_id"`
	PortalUserID      *uuid.UUID     `gorm:"type:uuid;index" json:"portal_user_id"`
	Name              string         `gorm:"type:varchar(255);not null" json:"name"`
	CompanyName       string         `gorm:"type:varchar(255)" json:"company_name"`
	Email             string         `gorm:"type:varchar(255)" json:"email"`
	Phone             string         `gorm:"type:varchar(50)" json:"phone"`
	Notes             string         `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// InvoiceWorkspaceID returns the workspace invoices for this client belong to:
// the portal workspace if linked, else the owning workspace.
func (c *Client) InvoiceWorkspaceID() uuid.UUID {
	if c.PortalWorkspaceID != nil {
		return *c.PortalWorkspaceID
	}
	return c.WorkspaceID
}
