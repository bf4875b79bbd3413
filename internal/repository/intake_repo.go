package repository

import (
	"context"

	"clienthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IntakeRepository interface {
	Create(ctx context.Context, submission *model.IntakeSubmission) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.IntakeSubmission, error)
	Update(ctx context.Context, submission *model.IntakeSubmission) error
}

type intakeRepository struct {
	db *gorm.DB
}

func NewIntakeRepository(db *gorm.DB) IntakeRepository {
	return &intakeRepository{db: db}
}

func (r *intakeRepository) Create(ctx context.Context, submission *model.IntakeSubmission) error {
	return GetDB(ctx, r.db).Create(submission).Error
}

func (r *intakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error) {
	var submission model.IntakeSubmission
	if err := GetDB(ctx, r.db).First(&submission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *intakeRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.IntakeSubmission, error) {
	var submissions []model.IntakeSubmission
	err := GetDB(ctx, r.db).
		Where("workspace_id = ?", workspaceID).
		Order("created_at desc").
		Find(&submissions).Error
	return submissions, err
}

func (r *intakeRepository) Update(ctx context.Context, submission *model.IntakeSubmission) error {
	return GetDB(ctx, r.db).Save(submission).Error
}
