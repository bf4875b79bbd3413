package repository

import (
	"context"

	"clienthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Invoice, error)
	ListByWorkspaceAndClients(ctx context.Context, workspaceID uuid.UUID, clientIDs []uuid.UUID) ([]model.Invoice, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error)
	CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	SummaryByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.InvoiceSummaryRow, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := GetDB(ctx, r.db).
		Where("workspace_id = ?", workspaceID).
		Order("created_at desc").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListByWorkspaceAndClients(ctx context.Context, workspaceID uuid.UUID, clientIDs []uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if len(clientIDs) == 0 {
		return invoices, nil
	}
	err := GetDB(ctx, r.db).
		Where("workspace_id = ? AND client_id IN ?", workspaceID, clientIDs).
		Order("created_at desc").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := GetDB(ctx, r.db).
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Model(&model.Invoice{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *invoiceRepository) SummaryByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.InvoiceSummaryRow, error) {
	var rows []model.InvoiceSummaryRow
	err := GetDB(ctx, r.db).
		Model(&model.Invoice{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(amount_cents), 0) as amount_cents, COALESCE(SUM(amount_paid_cents), 0) as amount_paid_cents").
		Where("workspace_id = ?", workspaceID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}
