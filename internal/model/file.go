package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileLink is a shared-file record. Only the link is stored; there is no blob
// storage behind it.
type FileLink struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkspaceID uuid.UUID      `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ClientID    *uuid.UUID     `gorm:"type:uuid;index" json:"client_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	URL         string         `gorm:"type:text;not null" json:"url"`
	UploadedBy  uuid.UUID      `gorm:"type:uuid;not null" json:"uploaded_by"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
