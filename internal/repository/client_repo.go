package repository

import (
	"context"

	"clienthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Client, error)
	// ListByPortalWorkspace returns clients whose portal workspace is the given one.
	ListByPortalWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Client, error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Client, error) {
	var clients []model.Client
	err := GetDB(ctx, r.db).
		Where("workspace_id = ?", workspaceID).
		Order("created_at desc").
		Find(&clients).Error
	return clients, err
}

func (r *clientRepository) ListByPortalWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Client, error) {
	var clients []model.Client
	err := GetDB(ctx, r.db).
		Where("portal_workspace_id = ?", workspaceID).
		Find(&clients).Error
	return clients, err
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Client{}, "id = ?", id).Error
}
