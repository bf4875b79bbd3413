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

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	AssigneeID  string `json:"assignee_id"`
	DueDate     string `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssigneeID  *string `json:"assignee_id"`
	DueDate     *string `json:"due_date"`
}

type TaskService interface {
	Create(ctx context.Context, actor Actor, projectID uuid.UUID, req CreateTaskRequest) (*model.Task, error)
	ListByProject(ctx context.Context, actor Actor, projectID uuid.UUID) ([]model.Task, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type taskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	perms       PermissionService
}

func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, perms PermissionService) TaskService {
	return &taskService{taskRepo: taskRepo, projectRepo: projectRepo, perms: perms}
}

func validTaskStatus(status string) bool {
	switch status {
	case model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone:
		return true
	}
	return false
}

func (s *taskService) requireMember(ctx context.Context, actor Actor, workspaceID uuid.UUID) error {
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

func (s *taskService) loadProject(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project not found", model.ErrNotFound)
		}
		return nil, err
	}
	return project, nil
}

func (s *taskService) Create(ctx context.Context, actor Actor, projectID uuid.UUID, req CreateTaskRequest) (*model.Task, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, actor, project.WorkspaceID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", model.ErrInvalidInput)
	}

	assigneeID, err := parseOptionalUUID(req.AssigneeID)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		AssigneeID:  assigneeID,
		Title:       title,
		Description: req.Description,
		Status:      model.TaskStatusTodo,
		DueDate:     dueDate,
		CreatedBy:   actor.ID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListByProject(ctx context.Context, actor Actor, projectID uuid.UUID) ([]model.Task, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, actor, project.WorkspaceID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByProject(ctx, projectID)
}

func (s *taskService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateTaskRequest) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task not found", model.ErrNotFound)
		}
		return nil, err
	}
	if err := s.requireMember(ctx, actor, task.WorkspaceID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", model.ErrInvalidInput)
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if !validTaskStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid status", model.ErrInvalidInput)
		}
		task.Status = *req.Status
	}
	if req.AssigneeID != nil {
		assigneeID, err := parseOptionalUUID(*req.AssigneeID)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = assigneeID
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: task not found", model.ErrNotFound)
		}
		return err
	}
	if err := s.requireMember(ctx, actor, task.WorkspaceID); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, id)
}
