package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionCreateInvoice = "CREATE_INVOICE"
	ActionUpdateInvoice = "UPDATE_INVOICE"
	ActionStartCheckout = "START_CHECKOUT"
	ActionSettleInvoice = "SETTLE_INVOICE"
	ActionCreateClient  = "CREATE_CLIENT"
	ActionConvertIntake = "CONVERT_INTAKE"
)

// AuditLog tracks who did what and when for billing-critical changes.
type AuditLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkspaceID uuid.UUID         `gorm:"type:uuid;not null;index" json:"workspace_id"`
	UserID      *uuid.UUID        `gorm:"type:uuid;index" json:"user_id"` // nil for webhook-driven changes
	Action      string            `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID    string            `gorm:"type:varchar(50);index" json:"entity_id"`
	Details     datatypes.JSONMap `gorm:"type:jsonb" json:"details"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}
