package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Invoice status enum constants
const (
	InvoiceStatusDraft         = "DRAFT"
	InvoiceStatusSent          = "SENT"
	InvoiceStatusPartiallyPaid = "PARTIALLY_PAID"
	InvoiceStatusPaid          = "PAID"
	InvoiceStatusVoid          = "VOID"
)

// ValidInvoiceStatus reports whether s is one of the five recognized statuses.
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// Invoice is a billing document for a client. Amounts are integer minor units
// (cents). AmountPaidCents never exceeds AmountCents; it is set to AmountCents
// exactly when the status becomes PAID. Invoices are never deleted.
type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkspaceID   uuid.UUID `gorm:"type:uuid;not null;index;index:idx_invoices_workspace_number,unique,priority:1" json:"workspace_id"`
	ClientID      uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	InvoiceNumber string    `gorm:"type:varchar(50);not null;index:idx_invoices_workspace_number,unique,priority:2" json:"invoice_number"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Description   *string   `gorm:"type:text" json:"description"`
	Currency      string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`

	AmountCents     int64  `gorm:"not null" json:"amount_cents"`
	AmountPaidCents int64  `gorm:"not null;default:0" json:"amount_paid_cents"`
	Status          string `gorm:"type:varchar(20);not null;default:'SENT';index" json:"status"`

	DueDate  *time.Time `json:"due_date"`
	IssuedAt time.Time  `json:"issued_at"`
	PaidAt   *time.Time `json:"paid_at"`

	StripeCheckoutSessionID *string `gorm:"type:varchar(255)" json:"stripe_checkout_session_id"`
	StripePaymentIntentID   *string `gorm:"type:varchar(255)" json:"stripe_payment_intent_id"`

	// Caller-supplied at creation, opaque to the invoice lifecycle.
	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceSummaryRow is one per-status aggregate for a workspace dashboard.
type InvoiceSummaryRow struct {
	Status          string `json:"status"`
	Count           int64  `json:"count"`
	AmountCents     int64  `json:"amount_cents"`
	AmountPaidCents int64  `json:"amount_paid_cents"`
}

// RemainingCents is the unpaid balance, never negative.
func (i *Invoice) RemainingCents() int64 {
	remaining := i.AmountCents - i.AmountPaidCents
	if remaining < 0 {
		return 0
	}
	return remaining
}
