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

type CreateProjectRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	ClientID    string `json:"client_id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

type ProjectService interface {
	Create(ctx context.Context, actor Actor, req CreateProjectRequest) (*model.Project, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Project, error)
	ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.Project, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateProjectRequest) (*model.Project, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type projectService struct {
	projectRepo repository.ProjectRepository
	perms       PermissionService
}

func NewProjectService(projectRepo repository.ProjectRepository, perms PermissionService) ProjectService {
	return &projectService{projectRepo: projectRepo, perms: perms}
}

func (s *projectService) requireMember(ctx context.Context, actor Actor, workspaceID uuid.UUID) error {
	if actor.IsPlatformAdmin() {
		return nil
	}
	member, err := s.perms.Membership(ctx, actor, workspaceID)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("%w: not a member of this workspace", model.ErrForbidden)
	}
	return nil
}

func validProjectStatus(status string) bool {
	switch status {
	case model.ProjectStatusActive, model.ProjectStatusOnHold, model.ProjectStatusCompleted, model.ProjectStatusArchived:
		return true
	}
	return false
}

func (s *projectService) Create(ctx context.Context, actor Actor, req CreateProjectRequest) (*model.Project, error) {
	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid workspace_id", model.ErrInvalidInput)
	}
	if err := s.requireMember(ctx, actor, workspaceID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", model.ErrInvalidInput)
	}

	clientID, err := parseOptionalUUID(req.ClientID)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		WorkspaceID: workspaceID,
		ClientID:    clientID,
		Name:        name,
		Description: req.Description,
		Status:      model.ProjectStatusActive,
		DueDate:     dueDate,
		CreatedBy:   actor.ID,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (s *projectService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project not found", model.ErrNotFound)
		}
		return nil, err
	}
	if err := s.requireMember(ctx, actor, project.WorkspaceID); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.Project, error) {
	if err := s.requireMember(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	return s.projectRepo.ListByWorkspace(ctx, workspaceID)
}

func (s *projectService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateProjectRequest) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project not found", model.ErrNotFound)
		}
		return nil, err
	}
	if err := s.requireMember(ctx, actor, project.WorkspaceID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", model.ErrInvalidInput)
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		if !validProjectStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid status", model.ErrInvalidInput)
		}
		project.Status = *req.Status
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		project.DueDate = dueDate
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: project not found", model.ErrNotFound)
		}
		return err
	}
	if err := s.requireMember(ctx, actor, project.WorkspaceID); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, id)
}
