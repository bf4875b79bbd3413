package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"clienthub/internal/model"
	"clienthub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateFileLinkRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	ClientID    string `json:"client_id"`
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url" binding:"required"`
}

type FileService interface {
	Create(ctx context.Context, actor Actor, req CreateFileLinkRequest) (*model.FileLink, error)
	ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.FileLink, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type fileService struct {
	fileRepo repository.FileRepository
	perms    PermissionService
}

func NewFileService(fileRepo repository.FileRepository, perms PermissionService) FileService {
	return &fileService{fileRepo: fileRepo, perms: perms}
}

func (s *fileService) requireMember(ctx context.Context, actor Actor, workspaceID uuid.UUID) error {
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

func (s *fileService) Create(ctx context.Context, actor Actor, req CreateFileLinkRequest) (*model.FileLink, error) {
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

	parsed, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: url must be http(s)", model.ErrInvalidInput)
	}

	clientID, err := parseOptionalUUID(req.ClientID)
	if err != nil {
		return nil, err
	}

	file := &model.FileLink{
		WorkspaceID: workspaceID,
		ClientID:    clientID,
		Name:        name,
		URL:         parsed.String(),
		UploadedBy:  actor.ID,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("create file link: %w", err)
	}
	return file, nil
}

func (s *fileService) ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.FileLink, error) {
	if err := s.requireMember(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	return s.fileRepo.ListByWorkspace(ctx, workspaceID)
}

func (s *fileService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: file not found", model.ErrNotFound)
		}
		return err
	}
	if err := s.requireMember(ctx, actor, file.WorkspaceID); err != nil {
		return err
	}
	return s.fileRepo.Delete(ctx, id)
}
