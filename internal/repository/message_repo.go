package repository

import (
	"context"

	"clienthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return GetDB(ctx, r.db).Create(message).Error
}

func (r *messageRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Message, error) {
	var messages []model.Message
	err := GetDB(ctx, r.db).
		Preload("Sender").
		Where("workspace_id = ?", workspaceID).
		Order("created_at asc").
		Find(&messages).Error
	return messages, err
}
