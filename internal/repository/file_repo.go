package repository

import (
	"context"

	"clienthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository interface {
	Create(ctx context.Context, file *model.FileLink) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FileLink, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.FileLink, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.FileLink) error {
	return GetDB(ctx, r.db).Create(file).Error
}

func (r *fileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FileLink, error) {
	var file model.FileLink
	if err := GetDB(ctx, r.db).First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.FileLink, error) {
	var files []model.FileLink
	err := GetDB(ctx, r.db).
		Where("workspace_id = ?", workspaceID).
		Order("created_at desc").
		Find(&files).Error
	return files, err
}

func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.FileLink{}, "id = ?", id).Error
}
