package service

import (
	"context"
	"testing"

	"clienthub/internal/model"

	"github.com/google/uuid"
)

type mockWorkspaceRepo struct {
	CreateFunc      func(ctx context.Context, workspace *model.Workspace) error
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	ListForUserFunc func(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error)
	AddMemberFunc   func(ctx context.Context, member *model.WorkspaceMember) error
	FindMemberFunc  func(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error)
	ListMembersFunc func(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error)
}

func (m *mockWorkspaceRepo) Create(ctx context.Context, workspace *model.Workspace) error {
	return m.CreateFunc(ctx, workspace)
}
func (m *mockWorkspaceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockWorkspaceRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	return m.ListForUserFunc(ctx, userID)
}
func (m *mockWorkspaceRepo) AddMember(ctx context.Context, member *model.WorkspaceMember) error {
	return m.AddMemberFunc(ctx, member)
}
func (m *mockWorkspaceRepo) FindMember(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	return m.FindMemberFunc(ctx, workspaceID, userID)
}
func (m *mockWorkspaceRepo) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	return m.ListMembersFunc(ctx, workspaceID)
}

// membershipTable routes FindMember through a static (workspace -> role) map
// for a single user.
func membershipTable(userID uuid.UUID, roles map[uuid.UUID]string) *mockWorkspaceRepo {
	return &mockWorkspaceRepo{
		FindMemberFunc: func(ctx context.Context, workspaceID, uid uuid.UUID) (*model.WorkspaceMember, error) {
			if uid != userID {
				return nil, nil
			}
			role, ok := roles[workspaceID]
			if !ok {
				return nil, nil
			}
			return &model.WorkspaceMember{WorkspaceID: workspaceID, UserID: uid, Role: role}, nil
		},
	}
}

func TestCanManageClientInvoices(t *testing.T) {
	owningWs := uuid.New()
	portalWs := uuid.New()
	userID := uuid.New()

	client := &model.Client{ID: uuid.New(), WorkspaceID: owningWs, PortalWorkspaceID: &portalWs}

	cases := []struct {
		name  string
		actor Actor
		roles map[uuid.UUID]string
		want  bool
	}{
		{
			name:  "platform admin bypasses membership",
			actor: Actor{ID: userID, Role: model.RoleAdmin},
			roles: nil,
			want:  true,
		},
		{
			name:  "owning workspace admin",
			actor: Actor{ID: userID, Role: model.RoleUser},
			roles: map[uuid.UUID]string{owningWs: model.MemberRoleAdmin},
			want:  true,
		},
		{
			name:  "portal workspace admin",
			actor: Actor{ID: userID, Role: model.RoleUser},
			roles: map[uuid.UUID]string{portalWs: model.MemberRoleAdmin},
			want:  true,
		},
		{
			name:  "plain member denied",
			actor: Actor{ID: userID, Role: model.RoleUser},
			roles: map[uuid.UUID]string{owningWs: model.MemberRoleMember},
			want:  false,
		},
		{
			name:  "non-member denied",
			actor: Actor{ID: userID, Role: model.RoleUser},
			roles: nil,
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			perms := NewPermissionService(membershipTable(userID, tc.roles))
			got, err := perms.CanManageClientInvoices(context.Background(), tc.actor, client)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCanAccessInvoicePortalRules(t *testing.T) {
	workspaceID := uuid.New()
	portalUserID := uuid.New()
	invoice := &model.Invoice{ID: uuid.New(), WorkspaceID: workspaceID}

	cases := []struct {
		name   string
		actor  Actor
		role   string
		client *model.Client
		want   bool
	}{
		{
			name:   "workspace admin sees everything",
			actor:  Actor{ID: uuid.New()},
			role:   model.MemberRoleAdmin,
			client: nil,
			want:   true,
		},
		{
			name:   "plain member sees everything",
			actor:  Actor{ID: uuid.New()},
			role:   model.MemberRoleMember,
			client: &model.Client{},
			want:   true,
		},
		{
			name:   "portal user linked by id",
			actor:  Actor{ID: portalUserID},
			role:   model.MemberRoleClient,
			client: &model.Client{PortalUserID: &portalUserID},
			want:   true,
		},
		{
			name:   "portal user matched by email case-insensitively",
			actor:  Actor{ID: uuid.New(), Email: "Billing@Acme.Test"},
			role:   model.MemberRoleClient,
			client: &model.Client{Email: "billing@acme.test"},
			want:   true,
		},
		{
			name:   "portal user with foreign client record",
			actor:  Actor{ID: uuid.New(), Email: "other@acme.test"},
			role:   model.MemberRoleClient,
			client: &model.Client{Email: "billing@acme.test", PortalUserID: &portalUserID},
			want:   false,
		},
		{
			name:   "portal user without client record",
			actor:  Actor{ID: uuid.New()},
			role:   model.MemberRoleClient,
			client: nil,
			want:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			perms := NewPermissionService(membershipTable(tc.actor.ID, map[uuid.UUID]string{workspaceID: tc.role}))
			got, err := perms.CanAccessInvoice(context.Background(), tc.actor, invoice, tc.client)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCanAccessInvoiceNonMemberDenied(t *testing.T) {
	invoice := &model.Invoice{ID: uuid.New(), WorkspaceID: uuid.New()}
	perms := NewPermissionService(membershipTable(uuid.New(), nil))

	got, err := perms.CanAccessInvoice(context.Background(), Actor{ID: uuid.New()}, invoice, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("non-member must not access the invoice")
	}
}

func TestMatchesPortalUser(t *testing.T) {
	userID := uuid.New()

	if !MatchesPortalUser(&model.Client{PortalUserID: &userID}, Actor{ID: userID}) {
		t.Error("expected match by portal user id")
	}
	if !MatchesPortalUser(&model.Client{Email: "A@B.test"}, Actor{ID: uuid.New(), Email: "a@b.test"}) {
		t.Error("expected case-insensitive email match")
	}
	if MatchesPortalUser(&model.Client{}, Actor{ID: uuid.New(), Email: "a@b.test"}) {
		t.Error("client without email or link must not match")
	}
	if MatchesPortalUser(&model.Client{Email: "a@b.test"}, Actor{ID: uuid.New()}) {
		t.Error("actor without email must not match")
	}
}
