package service

import (
	"context"
	"errors"
	"testing"

	"clienthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type mockIntakeRepo struct {
	CreateFunc          func(ctx context.Context, submission *model.IntakeSubmission) error
	FindByIDFunc        func(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error)
	ListByWorkspaceFunc func(ctx context.Context, workspaceID uuid.UUID) ([]model.IntakeSubmission, error)
	UpdateFunc          func(ctx context.Context, submission *model.IntakeSubmission) error
}

func (m *mockIntakeRepo) Create(ctx context.Context, submission *model.IntakeSubmission) error {
	return m.CreateFunc(ctx, submission)
}
func (m *mockIntakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockIntakeRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.IntakeSubmission, error) {
	return m.ListByWorkspaceFunc(ctx, workspaceID)
}
func (m *mockIntakeRepo) Update(ctx context.Context, submission *model.IntakeSubmission) error {
	return m.UpdateFunc(ctx, submission)
}

// passthroughTx runs the callback without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func TestSaveStepRejectsOutOfRange(t *testing.T) {
	svc := NewIntakeService(&mockIntakeRepo{}, &mockClientRepo{}, allowAllPerms(), &mockAudit{}, passthroughTx{})

	for _, step := range []int{-1, 4, 99} {
		_, err := svc.SaveStep(context.Background(), uuid.New(), step, IntakeStepRequest{Data: map[string]interface{}{}})
		if !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("step %d: expected ErrInvalidInput, got %v", step, err)
		}
	}
}

func TestSaveStepStoresDataAndAdvances(t *testing.T) {
	submission := &model.IntakeSubmission{
		ID:          uuid.New(),
		WorkspaceID: uuid.New(),
		Status:      model.IntakeStatusDraft,
		Steps:       datatypes.JSONMap{},
	}
	intakeRepo := &mockIntakeRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error) {
			return submission, nil
		},
		UpdateFunc: func(ctx context.Context, s *model.IntakeSubmission) error {
			return nil
		},
	}
	svc := NewIntakeService(intakeRepo, &mockClientRepo{}, allowAllPerms(), &mockAudit{}, passthroughTx{})

	got, err := svc.SaveStep(context.Background(), submission.ID, 2, IntakeStepRequest{
		Data: map[string]interface{}{"budget": "10k"},
	})
	if err != nil {
		t.Fatalf("SaveStep returned error: %v", err)
	}
	if got.CurrentStep != 2 {
		t.Errorf("expected current step 2, got %d", got.CurrentStep)
	}
	step, ok := got.Steps["step_2"].(map[string]interface{})
	if !ok || step["budget"] != "10k" {
		t.Error("expected step data to be stored under step_2")
	}
}

func TestSaveStepRejectsFinalizedSubmission(t *testing.T) {
	submission := &model.IntakeSubmission{
		ID:     uuid.New(),
		Status: model.IntakeStatusConverted,
	}
	intakeRepo := &mockIntakeRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error) {
			return submission, nil
		},
	}
	svc := NewIntakeService(intakeRepo, &mockClientRepo{}, allowAllPerms(), &mockAudit{}, passthroughTx{})

	_, err := svc.SaveStep(context.Background(), submission.ID, 0, IntakeStepRequest{Data: map[string]interface{}{}})
	if !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestSubmitConvertsContactStepIntoClient(t *testing.T) {
	workspaceID := uuid.New()
	submission := &model.IntakeSubmission{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Status:      model.IntakeStatusDraft,
		Steps: datatypes.JSONMap{
			"step_0": map[string]interface{}{"name": "Jane Prospect", "email": "jane@prospect.test"},
			"step_1": map[string]interface{}{"company": "Prospect LLC"},
		},
	}

	var createdClient *model.Client
	clientRepo := &mockClientRepo{
		CreateFunc: func(ctx context.Context, client *model.Client) error {
			client.ID = uuid.New()
			createdClient = client
			return nil
		},
	}
	intakeRepo := &mockIntakeRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error) {
			return submission, nil
		},
		UpdateFunc: func(ctx context.Context, s *model.IntakeSubmission) error {
			return nil
		},
	}
	svc := NewIntakeService(intakeRepo, clientRepo, allowAllPerms(), &mockAudit{}, passthroughTx{})

	got, err := svc.Submit(context.Background(), submission.ID)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if createdClient == nil {
		t.Fatal("expected a client to be created")
	}
	if createdClient.WorkspaceID != workspaceID {
		t.Errorf("client created in wrong workspace %s", createdClient.WorkspaceID)
	}
	if createdClient.Name != "Jane Prospect" || createdClient.Email != "jane@prospect.test" {
		t.Errorf("unexpected client contact %q / %q", createdClient.Name, createdClient.Email)
	}
	if createdClient.CompanyName != "Prospect LLC" {
		t.Errorf("expected company from later step, got %q", createdClient.CompanyName)
	}
	if got.Status != model.IntakeStatusConverted {
		t.Errorf("expected CONVERTED, got %s", got.Status)
	}
	if got.ClientID == nil || *got.ClientID != createdClient.ID {
		t.Error("expected submission to link the new client")
	}
	if got.SubmittedAt == nil {
		t.Error("expected submitted_at to be set")
	}
}

func TestSubmitRequiresContactName(t *testing.T) {
	submission := &model.IntakeSubmission{
		ID:     uuid.New(),
		Status: model.IntakeStatusDraft,
		Steps:  datatypes.JSONMap{"step_0": map[string]interface{}{"email": "no-name@x.test"}},
	}
	intakeRepo := &mockIntakeRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error) {
			return submission, nil
		},
	}
	svc := NewIntakeService(intakeRepo, &mockClientRepo{}, allowAllPerms(), &mockAudit{}, passthroughTx{})

	_, err := svc.Submit(context.Background(), submission.ID)
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
