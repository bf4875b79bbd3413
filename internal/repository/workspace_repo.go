package repository

import (
	"context"
	"errors"

	"clienthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *model.Workspace) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error)

	AddMember(ctx context.Context, member *model.WorkspaceMember) error
	// FindMember returns (nil, nil) when the user has no membership in the workspace.
	FindMember(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error)
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error)
}

type workspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *model.Workspace) error {
	return GetDB(ctx, r.db).Create(workspace).Error
}

func (r *workspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	var workspace model.Workspace
	if err := GetDB(ctx, r.db).First(&workspace, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

func (r *workspaceRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	err := GetDB(ctx, r.db).
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Order("workspaces.created_at asc").
		Find(&workspaces).Error
	return workspaces, err
}

func (r *workspaceRepository) AddMember(ctx context.Context, member *model.WorkspaceMember) error {
	return GetDB(ctx, r.db).Create(member).Error
}

func (r *workspaceRepository) FindMember(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	var member model.WorkspaceMember
	err := GetDB(ctx, r.db).
		First(&member, "workspace_id = ? AND user_id = ?", workspaceID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *workspaceRepository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	var members []model.WorkspaceMember
	err := GetDB(ctx, r.db).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("created_at asc").
		Find(&members).Error
	return members, err
}
