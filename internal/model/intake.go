package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Intake submission status enum constants
const (
	IntakeStatusDraft     = "DRAFT"
	IntakeStatusSubmitted = "SUBMITTED"
	IntakeStatusConverted = "CONVERTED"
)

// IntakeSubmission tracks a prospect working through the public multi-step
// intake form. Step payloads are stored as-is under "step_<n>" keys; on submit
// the contact step is turned into a Client record.
type IntakeSubmission struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkspaceID uuid.UUID         `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ClientID    *uuid.UUID        `gorm:"type:uuid" json:"client_id"`
	Status      string            `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	CurrentStep int               `gorm:"not null;default:0" json:"current_step"`
	Steps       datatypes.JSONMap `gorm:"type:jsonb" json:"steps"`
	SubmittedAt *time.Time        `json:"submitted_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
