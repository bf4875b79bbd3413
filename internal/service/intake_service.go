package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clienthub/internal/model"
	"clienthub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// The public intake form walks a prospect through these steps; step 0 must
// contain contact details before the submission can be converted.
const intakeMaxSteps = 4

type StartIntakeRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
}

type IntakeStepRequest struct {
	Data map[string]interface{} `json:"data" binding:"required"`
}

type IntakeService interface {
	Start(ctx context.Context, req StartIntakeRequest) (*model.IntakeSubmission, error)
	SaveStep(ctx context.Context, id uuid.UUID, step int, req IntakeStepRequest) (*model.IntakeSubmission, error)
	// Submit finalizes the submission and converts it into a Client.
	Submit(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error)
	ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.IntakeSubmission, error)
}

type intakeService struct {
	intakeRepo repository.IntakeRepository
	clientRepo repository.ClientRepository
	perms      PermissionService
	audit      AuditService
	txManager  repository.TransactionManager
}

func NewIntakeService(
	intakeRepo repository.IntakeRepository,
	clientRepo repository.ClientRepository,
	perms PermissionService,
	audit AuditService,
	txManager repository.TransactionManager,
) IntakeService {
	return &intakeService{
		intakeRepo: intakeRepo,
		clientRepo: clientRepo,
		perms:      perms,
		audit:      audit,
		txManager:  txManager,
	}
}

func (s *intakeService) Start(ctx context.Context, req StartIntakeRequest) (*model.IntakeSubmission, error) {
	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid workspace_id", model.ErrInvalidInput)
	}

	submission := &model.IntakeSubmission{
		WorkspaceID: workspaceID,
		Status:      model.IntakeStatusDraft,
		Steps:       datatypes.JSONMap{},
	}
	if err := s.intakeRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("start intake: %w", err)
	}
	return submission, nil
}

func (s *intakeService) SaveStep(ctx context.Context, id uuid.UUID, step int, req IntakeStepRequest) (*model.IntakeSubmission, error) {
	if step < 0 || step >= intakeMaxSteps {
		return nil, fmt.Errorf("%w: step out of range", model.ErrInvalidInput)
	}

	submission, err := s.intakeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: submission not found", model.ErrNotFound)
		}
		return nil, err
	}
	if submission.Status != model.IntakeStatusDraft {
		return nil, fmt.Errorf("%w: submission is already %s", model.ErrInvalidState, strings.ToLower(submission.Status))
	}

	if submission.Steps == nil {
		submission.Steps = datatypes.JSONMap{}
	}
	submission.Steps[fmt.Sprintf("step_%d", step)] = req.Data
	if step >= submission.CurrentStep {
		submission.CurrentStep = step
	}

	if err := s.intakeRepo.Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("save intake step: %w", err)
	}
	return submission, nil
}

func (s *intakeService) Submit(ctx context.Context, id uuid.UUID) (*model.IntakeSubmission, error) {
	submission, err := s.intakeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: submission not found", model.ErrNotFound)
		}
		return nil, err
	}
	if submission.Status != model.IntakeStatusDraft {
		return nil, fmt.Errorf("%w: submission is already %s", model.ErrInvalidState, strings.ToLower(submission.Status))
	}

	name, email := contactFromSteps(submission.Steps)
	if name == "" {
		return nil, fmt.Errorf("%w: contact step must include a name", model.ErrInvalidInput)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client := &model.Client{
			WorkspaceID: submission.WorkspaceID,
			Name:        name,
			Email:       email,
		}
		if companyName, ok := stepString(submission.Steps, "company"); ok {
			client.CompanyName = companyName
		}
		if err := s.clientRepo.Create(txCtx, client); err != nil {
			return fmt.Errorf("create client from intake: %w", err)
		}

		now := time.Now()
		submission.ClientID = &client.ID
		submission.Status = model.IntakeStatusConverted
		submission.SubmittedAt = &now
		if err := s.intakeRepo.Update(txCtx, submission); err != nil {
			return fmt.Errorf("finalize intake: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, submission.WorkspaceID, nil, model.ActionConvertIntake, submission.ID.String(), map[string]interface{}{
		"client_id": submission.ClientID.String(),
	})

	return submission, nil
}

func (s *intakeService) ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.IntakeSubmission, error) {
	if !actor.IsPlatformAdmin() {
		member, err := s.perms.Membership(ctx, actor, workspaceID)
		if err != nil {
			return nil, err
		}
		if member == nil || member.Role == model.MemberRoleClient {
			return nil, fmt.Errorf("%w: requires a team membership", model.ErrForbidden)
		}
	}
	return s.intakeRepo.ListByWorkspace(ctx, workspaceID)
}

// contactFromSteps pulls the prospect's name and email from the contact step.
func contactFromSteps(steps datatypes.JSONMap) (name, email string) {
	step, ok := steps["step_0"].(map[string]interface{})
	if !ok {
		return "", ""
	}
	if v, ok := step["name"].(string); ok {
		name = strings.TrimSpace(v)
	}
	if v, ok := step["email"].(string); ok {
		email = strings.TrimSpace(v)
	}
	return name, email
}

func stepString(steps datatypes.JSONMap, key string) (string, bool) {
	for _, stepValue := range steps {
		step, ok := stepValue.(map[string]interface{})
		if !ok {
			continue
		}
		if v, ok := step[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
