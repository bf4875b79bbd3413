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

type CreateClientRequest struct {
	WorkspaceID       string `json:"workspace_id" binding:"required"`
	Name              string `json:"name" binding:"required"`
	CompanyName       string `json:"company_name"`
	Email             string `json:"email" binding:"omitempty,email"`
	Phone             string `json:"phone"`
	Notes             string `json:"notes"`
	PortalWorkspaceID string `json:"portal_workspace_id"`
	PortalUserID      string `json:"portal_user_id"`
}

type UpdateClientRequest struct {
	Name              *string `json:"name"`
	CompanyName       *string `json:"company_name"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	Notes             *string `json:"notes"`
	PortalWorkspaceID *string `json:"portal_workspace_id"` // empty string unlinks
	PortalUserID      *string `json:"portal_user_id"`
}

type ClientService interface {
	Create(ctx context.Context, actor Actor, req CreateClientRequest) (*model.Client, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Client, error)
	ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.Client, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateClientRequest) (*model.Client, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type clientService struct {
	clientRepo repository.ClientRepository
	perms      PermissionService
	audit      AuditService
}

func NewClientService(clientRepo repository.ClientRepository, perms PermissionService, audit AuditService) ClientService {
	return &clientService{clientRepo: clientRepo, perms: perms, audit: audit}
}

// requireTeamAccess allows platform admins and non-CLIENT members of the workspace.
func (s *clientService) requireTeamAccess(ctx context.Context, actor Actor, workspaceID uuid.UUID) error {
	if actor.IsPlatformAdmin() {
		return nil
	}
	member, err := s.perms.Membership(ctx, actor, workspaceID)
	if err != nil {
		return err
	}
	if member == nil || member.Role == model.MemberRoleClient {
		return fmt.Errorf("%w: requires a team membership", model.ErrForbidden)
	}
	return nil
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id", model.ErrInvalidInput)
	}
	return &id, nil
}

func (s *clientService) Create(ctx context.Context, actor Actor, req CreateClientRequest) (*model.Client, error) {
	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid workspace_id", model.ErrInvalidInput)
	}
	if err := s.requireTeamAccess(ctx, actor, workspaceID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", model.ErrInvalidInput)
	}

	portalWorkspaceID, err := parseOptionalUUID(req.PortalWorkspaceID)
	if err != nil {
		return nil, err
	}
	portalUserID, err := parseOptionalUUID(req.PortalUserID)
	if err != nil {
		return nil, err
	}

	client := &model.Client{
		WorkspaceID:       workspaceID,
		PortalWorkspaceID: portalWorkspaceID,
		PortalUserID:      portalUserID,
		Name:              name,
		CompanyName:       strings.TrimSpace(req.CompanyName),
		Email:             strings.TrimSpace(req.Email),
		Phone:             strings.TrimSpace(req.Phone),
		Notes:             req.Notes,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.audit.Record(ctx, workspaceID, &actor.ID, model.ActionCreateClient, client.ID.String(), map[string]interface{}{
		"name": client.Name,
	})

	return client, nil
}

func (s *clientService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client not found", model.ErrNotFound)
		}
		return nil, err
	}
	if err := s.requireTeamAccess(ctx, actor, client.WorkspaceID); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.Client, error) {
	if err := s.requireTeamAccess(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	return s.clientRepo.ListByWorkspace(ctx, workspaceID)
}

func (s *clientService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateClientRequest) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client not found", model.ErrNotFound)
		}
		return nil, err
	}
	if err := s.requireTeamAccess(ctx, actor, client.WorkspaceID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", model.ErrInvalidInput)
		}
		client.Name = name
	}
	if req.CompanyName != nil {
		client.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.Email != nil {
		client.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.PortalWorkspaceID != nil {
		portalWorkspaceID, err := parseOptionalUUID(*req.PortalWorkspaceID)
		if err != nil {
			return nil, err
		}
		client.PortalWorkspaceID = portalWorkspaceID
	}
	if req.PortalUserID != nil {
		portalUserID, err := parseOptionalUUID(*req.PortalUserID)
		if err != nil {
			return nil, err
		}
		client.PortalUserID = portalUserID
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	return client, nil
}

func (s *clientService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: client not found", model.ErrNotFound)
		}
		return err
	}
	if err := s.requireTeamAccess(ctx, actor, client.WorkspaceID); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, id)
}
