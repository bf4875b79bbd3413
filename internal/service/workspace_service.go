package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clienthub/internal/model"
	"clienthub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

type WorkspaceService interface {
	Create(ctx context.Context, actor Actor, req CreateWorkspaceRequest) (*model.Workspace, error)
	ListMine(ctx context.Context, actor Actor) ([]model.Workspace, error)
	AddMember(ctx context.Context, actor Actor, workspaceID uuid.UUID, req AddMemberRequest) (*model.WorkspaceMember, error)
	ListMembers(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.WorkspaceMember, error)
}

type workspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	perms         PermissionService
	txManager     repository.TransactionManager
}

func NewWorkspaceService(
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	perms PermissionService,
	txManager repository.TransactionManager,
) WorkspaceService {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		perms:         perms,
		txManager:     txManager,
	}
}

// Create makes a workspace and enrolls the creator as its first ADMIN member,
// atomically.
func (s *workspaceService) Create(ctx context.Context, actor Actor, req CreateWorkspaceRequest) (*model.Workspace, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", model.ErrInvalidInput)
	}

	workspace := &model.Workspace{
		Name:      name,
		CreatedBy: actor.ID,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.workspaceRepo.Create(txCtx, workspace); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		member := &model.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      actor.ID,
			Role:        model.MemberRoleAdmin,
		}
		if err := s.workspaceRepo.AddMember(txCtx, member); err != nil {
			return fmt.Errorf("add creator as member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return workspace, nil
}

func (s *workspaceService) ListMine(ctx context.Context, actor Actor) ([]model.Workspace, error) {
	return s.workspaceRepo.ListForUser(ctx, actor.ID)
}

func (s *workspaceService) AddMember(ctx context.Context, actor Actor, workspaceID uuid.UUID, req AddMemberRequest) (*model.WorkspaceMember, error) {
	if !actor.IsPlatformAdmin() {
		isAdmin, err := s.perms.IsWorkspaceAdmin(ctx, actor, workspaceID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			return nil, fmt.Errorf("%w: adding members requires workspace admin", model.ErrForbidden)
		}
	}

	role := req.Role
	switch role {
	case model.MemberRoleAdmin, model.MemberRoleMember, model.MemberRoleClient:
	case "":
		role = model.MemberRoleMember
	default:
		return nil, fmt.Errorf("%w: invalid member role", model.ErrInvalidInput)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no user with that email", model.ErrNotFound)
		}
		return nil, err
	}

	existing, err := s.workspaceRepo.FindMember(ctx, workspaceID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user is already a member", model.ErrConflict)
	}

	member := &model.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        role,
	}
	if err := s.workspaceRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	return member, nil
}

func (s *workspaceService) ListMembers(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	member, err := s.perms.Membership(ctx, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if member == nil && !actor.IsPlatformAdmin() {
		return nil, fmt.Errorf("%w: not a member of this workspace", model.ErrForbidden)
	}
	return s.workspaceRepo.ListMembers(ctx, workspaceID)
}
