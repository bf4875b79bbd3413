package service

import (
	"context"
	"fmt"
	"log"

	"clienthub/internal/model"
	"clienthub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditService records billing-critical actions. Recording is best-effort:
// a failed audit write never fails the operation it describes.
type AuditService interface {
	Record(ctx context.Context, workspaceID uuid.UUID, userID *uuid.UUID, action, entityID string, details map[string]interface{})
	List(ctx context.Context, actor Actor, workspaceID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
	perms     PermissionService
}

func NewAuditService(auditRepo repository.AuditRepository, perms PermissionService) AuditService {
	return &auditService{auditRepo: auditRepo, perms: perms}
}

func (s *auditService) Record(ctx context.Context, workspaceID uuid.UUID, userID *uuid.UUID, action, entityID string, details map[string]interface{}) {
	entry := &model.AuditLog{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      action,
		EntityID:    entityID,
		Details:     datatypes.JSONMap(details),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s for %s: %v", action, entityID, err)
	}
}

func (s *auditService) List(ctx context.Context, actor Actor, workspaceID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error) {
	if !actor.IsPlatformAdmin() {
		isAdmin, err := s.perms.IsWorkspaceAdmin(ctx, actor, workspaceID)
		if err != nil {
			return nil, 0, err
		}
		if !isAdmin {
			return nil, 0, fmt.Errorf("%w: audit log requires workspace admin", model.ErrForbidden)
		}
	}
	return s.auditRepo.ListByWorkspace(ctx, workspaceID, page, limit)
}
