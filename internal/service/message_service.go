package service

import (
	"context"
	"fmt"
	"strings"

	"clienthub/internal/model"
	"clienthub/internal/repository"

	"github.com/google/uuid"
)

// Broadcaster pushes a payload to connected websocket clients. Satisfied by
// the websocket hub.
type Broadcaster interface {
	BroadcastJSON(eventType string, payload interface{})
}

type PostMessageRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

type MessageService interface {
	ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.Message, error)
	Post(ctx context.Context, actor Actor, req PostMessageRequest) (*model.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	perms       PermissionService
	hub         Broadcaster
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	perms PermissionService,
	hub Broadcaster,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		perms:       perms,
		hub:         hub,
	}
}

// Any member of the workspace (including portal clients) may read and post to
// the thread.
func (s *messageService) requireMember(ctx context.Context, actor Actor, workspaceID uuid.UUID) error {
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

func (s *messageService) ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.Message, error) {
	if err := s.requireMember(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByWorkspace(ctx, workspaceID)
}

func (s *messageService) Post(ctx context.Context, actor Actor, req PostMessageRequest) (*model.Message, error) {
	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid workspace_id", model.ErrInvalidInput)
	}
	if err := s.requireMember(ctx, actor, workspaceID); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: body cannot be empty", model.ErrInvalidInput)
	}

	message := &model.Message{
		WorkspaceID: workspaceID,
		SenderID:    actor.ID,
		Body:        body,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if sender, err := s.userRepo.FindByID(ctx, actor.ID); err == nil {
		message.Sender = sender
	}

	if s.hub != nil {
		s.hub.BroadcastJSON("message.created", message)
	}

	return message, nil
}
