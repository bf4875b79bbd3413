package service

import (
	"context"
	"strings"

	"clienthub/internal/model"
	"clienthub/internal/repository"

	"github.com/google/uuid"
)

// Actor is the authenticated identity a request runs as, extracted from the
// JWT by the auth middleware.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  string // platform role: ADMIN or USER
}

func (a Actor) IsPlatformAdmin() bool {
	return a.Role == model.RoleAdmin
}

// PermissionService resolves workspace-level authorization. Invoices live
// under a workspace but are owned by a client, and the client may be
// portal-linked to a different workspace than the one that created it, so
// manage checks consult both.
type PermissionService interface {
	// CanManageClientInvoices gates invoice create/update/checkout initiation.
	CanManageClientInvoices(ctx context.Context, actor Actor, client *model.Client) (bool, error)
	// CanAccessInvoice gates invoice reads (and portal-side checkout).
	CanAccessInvoice(ctx context.Context, actor Actor, invoice *model.Invoice, client *model.Client) (bool, error)
	// Membership returns the actor's membership in the workspace, or nil.
	Membership(ctx context.Context, actor Actor, workspaceID uuid.UUID) (*model.WorkspaceMember, error)
	// IsWorkspaceAdmin reports whether the actor is an ADMIN member of the workspace.
	IsWorkspaceAdmin(ctx context.Context, actor Actor, workspaceID uuid.UUID) (bool, error)
}

type permissionService struct {
	workspaceRepo repository.WorkspaceRepository
}

func NewPermissionService(workspaceRepo repository.WorkspaceRepository) PermissionService {
	return &permissionService{workspaceRepo: workspaceRepo}
}

func (s *permissionService) Membership(ctx context.Context, actor Actor, workspaceID uuid.UUID) (*model.WorkspaceMember, error) {
	return s.workspaceRepo.FindMember(ctx, workspaceID, actor.ID)
}

func (s *permissionService) IsWorkspaceAdmin(ctx context.Context, actor Actor, workspaceID uuid.UUID) (bool, error) {
	member, err := s.workspaceRepo.FindMember(ctx, workspaceID, actor.ID)
	if err != nil {
		return false, err
	}
	return member != nil && member.Role == model.MemberRoleAdmin, nil
}

func (s *permissionService) CanManageClientInvoices(ctx context.Context, actor Actor, client *model.Client) (bool, error) {
	if actor.IsPlatformAdmin() {
		return true, nil
	}
	if client == nil {
		return false, nil
	}

	isAdmin, err := s.IsWorkspaceAdmin(ctx, actor, client.WorkspaceID)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}

	if client.PortalWorkspaceID != nil {
		return s.IsWorkspaceAdmin(ctx, actor, *client.PortalWorkspaceID)
	}

	return false, nil
}

func (s *permissionService) CanAccessInvoice(ctx context.Context, actor Actor, invoice *model.Invoice, client *model.Client) (bool, error) {
	if actor.IsPlatformAdmin() {
		return true, nil
	}

	member, err := s.workspaceRepo.FindMember(ctx, invoice.WorkspaceID, actor.ID)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, nil
	}

	if member.Role == model.MemberRoleAdmin {
		return true, nil
	}

	// Portal users only see invoices for their own client record, matched by
	// portal-user link or case-insensitive email as a fallback.
	if member.Role == model.MemberRoleClient {
		if client == nil {
			return false, nil
		}
		if client.PortalUserID != nil && *client.PortalUserID == actor.ID {
			return true, nil
		}
		if client.Email != "" && actor.Email != "" {
			return strings.EqualFold(client.Email, actor.Email), nil
		}
		return false, nil
	}

	return true, nil
}

// MatchesPortalUser reports whether a client record belongs to the given
// portal actor: by explicit portal-user link, else case-insensitive email.
func MatchesPortalUser(client *model.Client, actor Actor) bool {
	if client.PortalUserID != nil && *client.PortalUserID == actor.ID {
		return true
	}
	if client.Email == "" || actor.Email == "" {
		return false
	}
	return strings.EqualFold(client.Email, actor.Email)
}
