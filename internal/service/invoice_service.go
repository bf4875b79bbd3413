package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"clienthub/internal/model"
	"clienthub/internal/payment"
	"clienthub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var currencyPattern = regexp.MustCompile(`^[a-z]{3}$`)

// --- DTOs ---

// CreateInvoiceRequest carries amounts in major currency units ("25.00");
// they are converted to integer cents internally.
type CreateInvoiceRequest struct {
	ClientID      string                 `json:"client_id" binding:"required"`
	Title         string                 `json:"title" binding:"required"`
	Description   string                 `json:"description"`
	Currency      string                 `json:"currency"`
	Amount        json.Number            `json:"amount" binding:"required"`
	DueDate       string                 `json:"due_date"`
	InvoiceNumber string                 `json:"invoice_number"`
	Status        string                 `json:"status"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// UpdateInvoiceRequest applies a partial update; nil fields are untouched.
type UpdateInvoiceRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Currency    *string      `json:"currency"`
	DueDate     *string      `json:"due_date"` // empty string clears the due date
	Status      *string      `json:"status"`
	Amount      *json.Number `json:"amount"`
}

// --- Interface ---

type InvoiceService interface {
	ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.Invoice, error)
	ListByClient(ctx context.Context, actor Actor, clientID uuid.UUID) ([]model.Invoice, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Invoice, error)
	Create(ctx context.Context, actor Actor, req CreateInvoiceRequest) (*model.Invoice, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateInvoiceRequest) (*model.Invoice, error)
	InitiateCheckout(ctx context.Context, actor Actor, id uuid.UUID) (*payment.CheckoutSession, error)
	// HandleCheckoutCompleted settles an invoice from a verified webhook event.
	// Unmatched or ineligible events are silent no-ops; only real processing
	// failures return an error (so the provider retries delivery).
	HandleCheckoutCompleted(ctx context.Context, event *payment.CompletedCheckout) error
	Summary(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.InvoiceSummaryRow, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	perms       PermissionService
	provider    payment.Provider
	audit       AuditService
	appBaseURL  string
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	perms PermissionService,
	provider payment.Provider,
	audit AuditService,
	appBaseURL string,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		perms:       perms,
		provider:    provider,
		audit:       audit,
		appBaseURL:  appBaseURL,
	}
}

// --- Helpers ---

// parseAmountCents converts a major-unit amount to integer cents, rejecting
// non-positive values.
func parseAmountCents(raw json.Number) (int64, error) {
	amount, err := decimal.NewFromString(raw.String())
	if err != nil || !amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be greater than 0", model.ErrInvalidInput)
	}
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents <= 0 {
		return 0, fmt.Errorf("%w: amount must be greater than 0", model.ErrInvalidInput)
	}
	return cents, nil
}

func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: due_date is invalid", model.ErrInvalidInput)
}

func normalizeCurrency(value string) string {
	if value == "" {
		return "USD"
	}
	return strings.ToUpper(strings.TrimSpace(value))
}

// nextInvoiceNumber derives a sequential number by counting existing invoices
// in the workspace. Two concurrent creates can compute the same number; the
// unique index on (workspace_id, invoice_number) turns the loser into a
// conflict rather than a silent duplicate.
func (s *invoiceService) nextInvoiceNumber(ctx context.Context, workspaceID uuid.UUID) (string, error) {
	count, err := s.invoiceRepo.CountByWorkspace(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	year := time.Now().UTC().Year()
	return fmt.Sprintf("INV-%d-%04d", year, count+1), nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value")
}

// --- Implementation ---

func (s *invoiceService) ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.Invoice, error) {
	member, err := s.perms.Membership(ctx, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if member == nil && !actor.IsPlatformAdmin() {
		return nil, fmt.Errorf("%w: not a member of this workspace", model.ErrForbidden)
	}

	// Portal users only see invoices for client records that resolve to them.
	if member != nil && member.Role == model.MemberRoleClient {
		portalClients, err := s.clientRepo.ListByPortalWorkspace(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		var ownIDs []uuid.UUID
		for i := range portalClients {
			if MatchesPortalUser(&portalClients[i], actor) {
				ownIDs = append(ownIDs, portalClients[i].ID)
			}
		}
		if len(ownIDs) == 0 {
			return []model.Invoice{}, nil
		}
		return s.invoiceRepo.ListByWorkspaceAndClients(ctx, workspaceID, ownIDs)
	}

	return s.invoiceRepo.ListByWorkspace(ctx, workspaceID)
}

func (s *invoiceService) ListByClient(ctx context.Context, actor Actor, clientID uuid.UUID) ([]model.Invoice, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client not found", model.ErrNotFound)
		}
		return nil, err
	}

	canManage, err := s.perms.CanManageClientInvoices(ctx, actor, client)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, fmt.Errorf("%w: cannot manage this client's invoices", model.ErrForbidden)
	}

	return s.invoiceRepo.ListByClient(ctx, clientID)
}

func (s *invoiceService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice not found", model.ErrNotFound)
		}
		return nil, err
	}

	client, err := s.findClient(ctx, invoice.ClientID)
	if err != nil {
		return nil, err
	}

	hasAccess, err := s.perms.CanAccessInvoice(ctx, actor, invoice, client)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: no access to this invoice", model.ErrForbidden)
	}

	return invoice, nil
}

func (s *invoiceService) Create(ctx context.Context, actor Actor, req CreateInvoiceRequest) (*model.Invoice, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client_id", model.ErrInvalidInput)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client not found", model.ErrNotFound)
		}
		return nil, err
	}

	canManage, err := s.perms.CanManageClientInvoices(ctx, actor, client)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, fmt.Errorf("%w: cannot manage this client's invoices", model.ErrForbidden)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", model.ErrInvalidInput)
	}

	amountCents, err := parseAmountCents(req.Amount)
	if err != nil {
		return nil, err
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	// Unknown statuses fall back to SENT rather than erroring.
	status := req.Status
	if !model.ValidInvoiceStatus(status) {
		status = model.InvoiceStatusSent
	}

	workspaceID := client.InvoiceWorkspaceID()

	invoiceNumber := strings.TrimSpace(req.InvoiceNumber)
	if invoiceNumber == "" {
		invoiceNumber, err = s.nextInvoiceNumber(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
	}

	var description *string
	if trimmed := strings.TrimSpace(req.Description); trimmed != "" {
		description = &trimmed
	}

	now := time.Now()
	invoice := &model.Invoice{
		WorkspaceID:     workspaceID,
		ClientID:        client.ID,
		CreatedBy:       actor.ID,
		InvoiceNumber:   invoiceNumber,
		Title:           title,
		Description:     description,
		Currency:        normalizeCurrency(req.Currency),
		AmountCents:     amountCents,
		AmountPaidCents: 0,
		Status:          status,
		DueDate:         dueDate,
		IssuedAt:        now,
		Metadata:        datatypes.JSONMap(req.Metadata),
		UpdatedAt:       now,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: invoice number already exists", model.ErrConflict)
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.audit.Record(ctx, invoice.WorkspaceID, &actor.ID, model.ActionCreateInvoice, invoice.ID.String(), map[string]interface{}{
		"invoice_number": invoice.InvoiceNumber,
		"amount_cents":   invoice.AmountCents,
		"currency":       invoice.Currency,
	})

	return invoice, nil
}

func (s *invoiceService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateInvoiceRequest) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice not found", model.ErrNotFound)
		}
		return nil, err
	}

	client, err := s.findClient(ctx, invoice.ClientID)
	if err != nil {
		return nil, err
	}

	canManage, err := s.perms.CanManageClientInvoices(ctx, actor, client)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, fmt.Errorf("%w: cannot manage this client's invoices", model.ErrForbidden)
	}

	now := time.Now()
	changed := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", model.ErrInvalidInput)
		}
		invoice.Title = title
		changed["title"] = title
	}

	if req.Description != nil {
		if trimmed := strings.TrimSpace(*req.Description); trimmed != "" {
			invoice.Description = &trimmed
		} else {
			invoice.Description = nil
		}
	}

	if req.Currency != nil {
		invoice.Currency = normalizeCurrency(*req.Currency)
		changed["currency"] = invoice.Currency
	}

	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		invoice.DueDate = dueDate
	}

	// Amount is frozen once the invoice is PAID. Checked against the stored
	// status, before any status change in this same request takes effect.
	if req.Amount != nil {
		if invoice.Status == model.InvoiceStatusPaid {
			return nil, fmt.Errorf("%w: cannot change amount on a paid invoice", model.ErrInvalidState)
		}
		amountCents, err := parseAmountCents(*req.Amount)
		if err != nil {
			return nil, err
		}
		invoice.AmountCents = amountCents
		changed["amount_cents"] = amountCents
	}

	// Manual status edits are deliberately unconstrained: any status may move
	// to any other. Only the webhook settlement path enforces terminal states.
	if req.Status != nil {
		if !model.ValidInvoiceStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid status", model.ErrInvalidInput)
		}
		invoice.Status = *req.Status
		changed["status"] = invoice.Status
		switch *req.Status {
		case model.InvoiceStatusPaid:
			invoice.AmountPaidCents = invoice.AmountCents
			invoice.PaidAt = &now
		case model.InvoiceStatusVoid:
			invoice.PaidAt = nil
		}
	}

	invoice.UpdatedAt = now
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	s.audit.Record(ctx, invoice.WorkspaceID, &actor.ID, model.ActionUpdateInvoice, invoice.ID.String(), changed)

	return invoice, nil
}

func (s *invoiceService) InitiateCheckout(ctx context.Context, actor Actor, id uuid.UUID) (*payment.CheckoutSession, error) {
	if !s.provider.Configured() {
		return nil, fmt.Errorf("%w: payment provider is not configured", model.ErrUnavailable)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice not found", model.ErrNotFound)
		}
		return nil, err
	}

	client, err := s.findClient(ctx, invoice.ClientID)
	if err != nil {
		return nil, err
	}

	hasAccess, err := s.perms.CanAccessInvoice(ctx, actor, invoice, client)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: no access to this invoice", model.ErrForbidden)
	}

	if invoice.Status == model.InvoiceStatusPaid || invoice.Status == model.InvoiceStatusVoid {
		return nil, fmt.Errorf("%w: invoice is %s", model.ErrInvalidState, strings.ToLower(invoice.Status))
	}

	remaining := invoice.RemainingCents()
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: invoice has no remaining balance", model.ErrInvalidState)
	}

	currency := strings.ToLower(strings.TrimSpace(invoice.Currency))
	if !currencyPattern.MatchString(currency) {
		return nil, fmt.Errorf("%w: invoice currency is invalid", model.ErrInvalidInput)
	}

	customerEmail := client.Email
	if customerEmail == "" {
		customerEmail = actor.Email
	}

	var description string
	if invoice.Description != nil {
		description = *invoice.Description
	}

	session, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutSessionParams{
		AmountCents:        remaining,
		Currency:           currency,
		ProductName:        invoice.Title,
		ProductDescription: description,
		CustomerEmail:      customerEmail,
		ClientReferenceID:  invoice.ID.String(),
		SuccessURL:         s.appBaseURL + "/client-invoices?checkout=success",
		CancelURL:          s.appBaseURL + "/client-invoices?checkout=cancel",
		Metadata: map[string]string{
			"invoiceId":   invoice.ID.String(),
			"workspaceId": invoice.WorkspaceID.String(),
			"clientId":    invoice.ClientID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initiate checkout: %w", err)
	}

	// First checkout attempt implicitly "sends" a draft invoice.
	invoice.StripeCheckoutSessionID = &session.ID
	if invoice.Status == model.InvoiceStatusDraft {
		invoice.Status = model.InvoiceStatusSent
	}
	invoice.UpdatedAt = time.Now()
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("record checkout session: %w", err)
	}

	s.audit.Record(ctx, invoice.WorkspaceID, &actor.ID, model.ActionStartCheckout, invoice.ID.String(), map[string]interface{}{
		"session_id":      session.ID,
		"remaining_cents": remaining,
	})

	return session, nil
}

func (s *invoiceService) HandleCheckoutCompleted(ctx context.Context, event *payment.CompletedCheckout) error {
	if event == nil || event.InvoiceID == "" {
		return nil
	}

	// Unrelated or stale correlation ids must not fail the webhook channel.
	invoiceID, err := uuid.Parse(event.InvoiceID)
	if err != nil {
		return nil
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load invoice for settlement: %w", err)
	}

	// Settlement predicate; everything must hold or the event is ignored.
	// Re-checking the stored state here is what makes replays idempotent.
	remaining := invoice.RemainingCents()
	sessionMatches := invoice.StripeCheckoutSessionID == nil || *invoice.StripeCheckoutSessionID == event.SessionID
	if invoice.Status == model.InvoiceStatusPaid ||
		invoice.Status == model.InvoiceStatusVoid ||
		remaining <= 0 ||
		!event.Paid ||
		!strings.EqualFold(event.Currency, invoice.Currency) ||
		event.AmountTotal != remaining ||
		!sessionMatches {
		return nil
	}

	now := time.Now()
	invoice.Status = model.InvoiceStatusPaid
	invoice.AmountPaidCents = invoice.AmountCents
	invoice.PaidAt = &now
	if event.SessionID != "" {
		invoice.StripeCheckoutSessionID = &event.SessionID
	}
	if event.PaymentIntentID != "" {
		invoice.StripePaymentIntentID = &event.PaymentIntentID
	}
	invoice.UpdatedAt = now

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return fmt.Errorf("settle invoice: %w", err)
	}

	s.audit.Record(ctx, invoice.WorkspaceID, nil, model.ActionSettleInvoice, invoice.ID.String(), map[string]interface{}{
		"session_id":        event.SessionID,
		"payment_intent_id": event.PaymentIntentID,
		"amount_cents":      event.AmountTotal,
	})

	return nil
}

func (s *invoiceService) Summary(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]model.InvoiceSummaryRow, error) {
	member, err := s.perms.Membership(ctx, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPlatformAdmin() && (member == nil || member.Role == model.MemberRoleClient) {
		return nil, fmt.Errorf("%w: summary requires a team membership", model.ErrForbidden)
	}
	return s.invoiceRepo.SummaryByWorkspace(ctx, workspaceID)
}

func (s *invoiceService) findClient(ctx context.Context, clientID uuid.UUID) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}
