package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"clienthub/internal/model"
	"clienthub/internal/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Mocks ---

type mockInvoiceRepo struct {
	CreateFunc             func(ctx context.Context, invoice *model.Invoice) error
	FindByIDFunc           func(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListByWorkspaceFunc    func(ctx context.Context, workspaceID uuid.UUID) ([]model.Invoice, error)
	ListByWsClientsFunc    func(ctx context.Context, workspaceID uuid.UUID, clientIDs []uuid.UUID) ([]model.Invoice, error)
	ListByClientFunc       func(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error)
	CountByWorkspaceFunc   func(ctx context.Context, workspaceID uuid.UUID) (int64, error)
	UpdateFunc             func(ctx context.Context, invoice *model.Invoice) error
	SummaryByWorkspaceFunc func(ctx context.Context, workspaceID uuid.UUID) ([]model.InvoiceSummaryRow, error)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	return m.CreateFunc(ctx, invoice)
}
func (m *mockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockInvoiceRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Invoice, error) {
	return m.ListByWorkspaceFunc(ctx, workspaceID)
}
func (m *mockInvoiceRepo) ListByWorkspaceAndClients(ctx context.Context, workspaceID uuid.UUID, clientIDs []uuid.UUID) ([]model.Invoice, error) {
	return m.ListByWsClientsFunc(ctx, workspaceID, clientIDs)
}
func (m *mockInvoiceRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error) {
	return m.ListByClientFunc(ctx, clientID)
}
func (m *mockInvoiceRepo) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	return m.CountByWorkspaceFunc(ctx, workspaceID)
}
func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	return m.UpdateFunc(ctx, invoice)
}
func (m *mockInvoiceRepo) SummaryByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.InvoiceSummaryRow, error) {
	return m.SummaryByWorkspaceFunc(ctx, workspaceID)
}

type mockClientRepo struct {
	CreateFunc                func(ctx context.Context, client *model.Client) error
	FindByIDFunc              func(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListByWorkspaceFunc       func(ctx context.Context, workspaceID uuid.UUID) ([]model.Client, error)
	ListByPortalWorkspaceFunc func(ctx context.Context, workspaceID uuid.UUID) ([]model.Client, error)
	UpdateFunc                func(ctx context.Context, client *model.Client) error
	DeleteFunc                func(ctx context.Context, id uuid.UUID) error
}

func (m *mockClientRepo) Create(ctx context.Context, client *model.Client) error {
	return m.CreateFunc(ctx, client)
}
func (m *mockClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockClientRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Client, error) {
	return m.ListByWorkspaceFunc(ctx, workspaceID)
}
func (m *mockClientRepo) ListByPortalWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Client, error) {
	return m.ListByPortalWorkspaceFunc(ctx, workspaceID)
}
func (m *mockClientRepo) Update(ctx context.Context, client *model.Client) error {
	return m.UpdateFunc(ctx, client)
}
func (m *mockClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}

type mockPermissions struct {
	CanManageClientInvoicesFunc func(ctx context.Context, actor Actor, client *model.Client) (bool, error)
	CanAccessInvoiceFunc        func(ctx context.Context, actor Actor, invoice *model.Invoice, client *model.Client) (bool, error)
	MembershipFunc              func(ctx context.Context, actor Actor, workspaceID uuid.UUID) (*model.WorkspaceMember, error)
	IsWorkspaceAdminFunc        func(ctx context.Context, actor Actor, workspaceID uuid.UUID) (bool, error)
}

func (m *mockPermissions) CanManageClientInvoices(ctx context.Context, actor Actor, client *model.Client) (bool, error) {
	return m.CanManageClientInvoicesFunc(ctx, actor, client)
}
func (m *mockPermissions) CanAccessInvoice(ctx context.Context, actor Actor, invoice *model.Invoice, client *model.Client) (bool, error) {
	return m.CanAccessInvoiceFunc(ctx, actor, invoice, client)
}
func (m *mockPermissions) Membership(ctx context.Context, actor Actor, workspaceID uuid.UUID) (*model.WorkspaceMember, error) {
	return m.MembershipFunc(ctx, actor, workspaceID)
}
func (m *mockPermissions) IsWorkspaceAdmin(ctx context.Context, actor Actor, workspaceID uuid.UUID) (bool, error) {
	return m.IsWorkspaceAdminFunc(ctx, actor, workspaceID)
}

type mockProvider struct {
	ConfiguredFunc            func() bool
	WebhookConfiguredFunc     func() bool
	CreateCheckoutSessionFunc func(ctx context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error)
	ParseWebhookEventFunc     func(payload []byte, signature string) (*payment.WebhookEvent, error)
}

func (m *mockProvider) Configured() bool        { return m.ConfiguredFunc() }
func (m *mockProvider) WebhookConfigured() bool { return m.WebhookConfiguredFunc() }
func (m *mockProvider) CreateCheckoutSession(ctx context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error) {
	return m.CreateCheckoutSessionFunc(ctx, params)
}
func (m *mockProvider) ParseWebhookEvent(payload []byte, signature string) (*payment.WebhookEvent, error) {
	return m.ParseWebhookEventFunc(payload, signature)
}

type mockAudit struct {
	RecordFunc func(ctx context.Context, workspaceID uuid.UUID, userID *uuid.UUID, action, entityID string, details map[string]interface{})
}

func (m *mockAudit) Record(ctx context.Context, workspaceID uuid.UUID, userID *uuid.UUID, action, entityID string, details map[string]interface{}) {
	if m.RecordFunc != nil {
		m.RecordFunc(ctx, workspaceID, userID, action, entityID, details)
	}
}
func (m *mockAudit) List(ctx context.Context, actor Actor, workspaceID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}

// --- Helpers ---

func allowAllPerms() *mockPermissions {
	return &mockPermissions{
		CanManageClientInvoicesFunc: func(ctx context.Context, actor Actor, client *model.Client) (bool, error) {
			return true, nil
		},
		CanAccessInvoiceFunc: func(ctx context.Context, actor Actor, invoice *model.Invoice, client *model.Client) (bool, error) {
			return true, nil
		},
		MembershipFunc: func(ctx context.Context, actor Actor, workspaceID uuid.UUID) (*model.WorkspaceMember, error) {
			return &model.WorkspaceMember{Role: model.MemberRoleAdmin}, nil
		},
		IsWorkspaceAdminFunc: func(ctx context.Context, actor Actor, workspaceID uuid.UUID) (bool, error) {
			return true, nil
		},
	}
}

func testClient(workspaceID uuid.UUID) *model.Client {
	return &model.Client{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        "Acme Corp",
		Email:       "billing@acme.test",
	}
}

// --- Create ---

func TestCreateInvoiceConvertsAmountToCents(t *testing.T) {
	workspaceID := uuid.New()
	client := testClient(workspaceID)

	var created *model.Invoice
	invoiceRepo := &mockInvoiceRepo{
		CountByWorkspaceFunc: func(ctx context.Context, wsID uuid.UUID) (int64, error) {
			return 4, nil
		},
		CreateFunc: func(ctx context.Context, invoice *model.Invoice) error {
			created = invoice
			return nil
		},
	}
	clientRepo := &mockClientRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Client, error) {
			return client, nil
		},
	}

	svc := NewInvoiceService(invoiceRepo, clientRepo, allowAllPerms(), &mockProvider{}, &mockAudit{}, "http://localhost:5173")

	invoice, err := svc.Create(context.Background(), Actor{ID: uuid.New()}, CreateInvoiceRequest{
		ClientID: client.ID.String(),
		Title:    "Website redesign",
		Amount:   json.Number("25.00"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if invoice.AmountCents != 2500 {
		t.Errorf("expected 2500 cents, got %d", invoice.AmountCents)
	}
	if invoice.Currency != "USD" {
		t.Errorf("expected default currency USD, got %s", invoice.Currency)
	}
	if invoice.Status != model.InvoiceStatusSent {
		t.Errorf("expected default status SENT, got %s", invoice.Status)
	}

	wantNumber := fmt.Sprintf("INV-%d-0005", time.Now().UTC().Year())
	if created.InvoiceNumber != wantNumber {
		t.Errorf("expected invoice number %s, got %s", wantNumber, created.InvoiceNumber)
	}
}

func TestCreateInvoiceRejectsNonPositiveAmount(t *testing.T) {
	workspaceID := uuid.New()
	client := testClient(workspaceID)
	clientRepo := &mockClientRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Client, error) {
			return client, nil
		},
	}

	svc := NewInvoiceService(&mockInvoiceRepo{}, clientRepo, allowAllPerms(), &mockProvider{}, &mockAudit{}, "")

	for _, amount := range []string{"0", "-10.00", "abc"} {
		_, err := svc.Create(context.Background(), Actor{ID: uuid.New()}, CreateInvoiceRequest{
			ClientID: client.ID.String(),
			Title:    "Bad amount",
			Amount:   json.Number(amount),
		})
		if !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("amount %q: expected ErrInvalidInput, got %v", amount, err)
		}
	}
}

func TestCreateInvoiceDuplicateNumberIsConflict(t *testing.T) {
	workspaceID := uuid.New()
	client := testClient(workspaceID)
	invoiceRepo := &mockInvoiceRepo{
		CreateFunc: func(ctx context.Context, invoice *model.Invoice) error {
			return gorm.ErrDuplicatedKey
		},
	}
	clientRepo := &mockClientRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Client, error) {
			return client, nil
		},
	}

	svc := NewInvoiceService(invoiceRepo, clientRepo, allowAllPerms(), &mockProvider{}, &mockAudit{}, "")

	_, err := svc.Create(context.Background(), Actor{ID: uuid.New()}, CreateInvoiceRequest{
		ClientID:      client.ID.String(),
		Title:         "Duplicate",
		Amount:        json.Number("10"),
		InvoiceNumber: "INV-2026-0001",
	})
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCreateInvoiceUsesPortalWorkspace(t *testing.T) {
	owningWs := uuid.New()
	portalWs := uuid.New()
	client := testClient(owningWs)
	client.PortalWorkspaceID = &portalWs

	var created *model.Invoice
	invoiceRepo := &mockInvoiceRepo{
		CountByWorkspaceFunc: func(ctx context.Context, wsID uuid.UUID) (int64, error) {
			if wsID != portalWs {
				t.Errorf("numbering should count the portal workspace, got %s", wsID)
			}
			return 0, nil
		},
		CreateFunc: func(ctx context.Context, invoice *model.Invoice) error {
			created = invoice
			return nil
		},
	}
	clientRepo := &mockClientRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Client, error) {
			return client, nil
		},
	}

	svc := NewInvoiceService(invoiceRepo, clientRepo, allowAllPerms(), &mockProvider{}, &mockAudit{}, "")

	_, err := svc.Create(context.Background(), Actor{ID: uuid.New()}, CreateInvoiceRequest{
		ClientID: client.ID.String(),
		Title:    "Portal invoice",
		Amount:   json.Number("99.99"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.WorkspaceID != portalWs {
		t.Errorf("expected invoice under portal workspace %s, got %s", portalWs, created.WorkspaceID)
	}
}

// --- Update ---

func TestUpdateInvoiceAmountFrozenOncePaid(t *testing.T) {
	workspaceID := uuid.New()
	client := testClient(workspaceID)
	paid := &model.Invoice{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		ClientID:        client.ID,
		Status:          model.InvoiceStatusPaid,
		AmountCents:     5000,
		AmountPaidCents: 5000,
	}

	updateCalled := false
	invoiceRepo := &mockInvoiceRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
			return paid, nil
		},
		UpdateFunc: func(ctx context.Context, invoice *model.Invoice) error {
			updateCalled = true
			return nil
		},
	}
	clientRepo := &mockClientRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Client, error) {
			return client, nil
		},
	}

	svc := NewInvoiceService(invoiceRepo, clientRepo, allowAllPerms(), &mockProvider{}, &mockAudit{}, "")

	amount := json.Number("75.00")
	_, err := svc.Update(context.Background(), Actor{ID: uuid.New()}, paid.ID, UpdateInvoiceRequest{Amount: &amount})
	if !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if updateCalled {
		t.Error("repository Update should not be called when the amount is frozen")
	}
}

func TestUpdateInvoiceStatusPaidSettlesBalance(t *testing.T) {
	workspaceID := uuid.New()
	client := testClient(workspaceID)
	invoice := &model.Invoice{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		ClientID:    client.ID,
		Status:      model.InvoiceStatusSent,
		AmountCents: 3000,
	}

	invoiceRepo := &mockInvoiceRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
			return invoice, nil
		},
		UpdateFunc: func(ctx context.Context, inv *model.Invoice) error {
			return nil
		},
	}
	clientRepo := &mockClientRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Client, error) {
			return client, nil
		},
	}

	svc := NewInvoiceService(invoiceRepo, clientRepo, allowAllPerms(), &mockProvider{}, &mockAudit{}, "")

	status := model.InvoiceStatusPaid
	updated, err := svc.Update(context.Background(), Actor{ID: uuid.New()}, invoice.ID, UpdateInvoiceRequest{Status: &status})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.AmountPaidCents != 3000 {
		t.Errorf("expected amount paid 3000, got %d", updated.AmountPaidCents)
	}
	if updated.PaidAt == nil {
		t.Error("expected paid_at to be set")
	}
}

// --- Checkout ---

func TestInitiateCheckoutUnavailableWithoutProvider(t *testing.T) {
	provider := &mockProvider{
		ConfiguredFunc: func() bool { return false },
	}
	svc := NewInvoiceService(&mockInvoiceRepo{}, &mockClientRepo{}, allowAllPerms(), provider, &mockAudit{}, "")

	_, err := svc.InitiateCheckout(context.Background(), Actor{ID: uuid.New()}, uuid.New())
	if !errors.Is(err, model.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestInitiateCheckoutRejectsTerminalStates(t *testing.T) {
	workspaceID := uuid.New()
	client := testClient(workspaceID)

	sessionCalled := false
	provider := &mockProvider{
		ConfiguredFunc: func() bool { return true },
		CreateCheckoutSessionFunc: func(ctx context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error) {
			sessionCalled = true
			return &payment.CheckoutSession{ID: "cs_1", URL: "https://checkout.test"}, nil
		},
	}

	for _, status := range []string{model.InvoiceStatusPaid, model.InvoiceStatusVoid} {
		invoice := &model.Invoice{
			ID:          uuid.New(),
			WorkspaceID: workspaceID,
			ClientID:    client.ID,
			Status:      status,
			AmountCents: 1000,
			Currency:    "USD",
		}
		invoiceRepo := &mockInvoiceRepo{
			FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
				return invoice, nil
			},
		}
		clientRepo := &mockClientRepo{
			FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Client, error) {
				return client, nil
			},
		}
		svc := NewInvoiceService(invoiceRepo, clientRepo, allowAllPerms(), provider, &mockAudit{}, "")

		_, err := svc.InitiateCheckout(context.Background(), Actor{ID: uuid.New()}, invoice.ID)
		if !errors.Is(err, model.ErrInvalidState) {
			t.Errorf("status %s: expected ErrInvalidState, got %v", status, err)
		}
	}
	if sessionCalled {
		t.Error("provider should not be called for terminal invoices")
	}
}

func TestInitiateCheckoutSendsDraftAndRecordsSession(t *testing.T) {
	workspaceID := uuid.New()
	client := testClient(workspaceID)
	invoice := &model.Invoice{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		ClientID:    client.ID,
		Status:      model.InvoiceStatusDraft,
		Title:       "Retainer",
		AmountCents: 2500,
		Currency:    "USD",
	}

	var gotParams payment.CheckoutSessionParams
	provider := &mockProvider{
		ConfiguredFunc: func() bool { return true },
		CreateCheckoutSessionFunc: func(ctx context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error) {
			gotParams = params
			return &payment.CheckoutSession{ID: "cs_123", URL: "https://checkout.test/cs_123"}, nil
		},
	}

	invoiceRepo := &mockInvoiceRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
			return invoice, nil
		},
		UpdateFunc: func(ctx context.Context, inv *model.Invoice) error {
			return nil
		},
	}
	clientRepo := &mockClientRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Client, error) {
			return client, nil
		},
	}

	svc := NewInvoiceService(invoiceRepo, clientRepo, allowAllPerms(), provider, &mockAudit{}, "http://localhost:5173")

	session, err := svc.InitiateCheckout(context.Background(), Actor{ID: uuid.New(), Email: "staff@acme.test"}, invoice.ID)
	if err != nil {
		t.Fatalf("InitiateCheckout returned error: %v", err)
	}
	if session.ID != "cs_123" {
		t.Errorf("expected session cs_123, got %s", session.ID)
	}
	if invoice.Status != model.InvoiceStatusSent {
		t.Errorf("expected draft to transition to SENT, got %s", invoice.Status)
	}
	if invoice.StripeCheckoutSessionID == nil || *invoice.StripeCheckoutSessionID != "cs_123" {
		t.Error("expected checkout session id to be recorded on the invoice")
	}
	if gotParams.AmountCents != 2500 {
		t.Errorf("expected checkout for 2500 cents, got %d", gotParams.AmountCents)
	}
	if gotParams.Currency != "usd" {
		t.Errorf("expected lowercase currency, got %q", gotParams.Currency)
	}
	if gotParams.CustomerEmail != client.Email {
		t.Errorf("expected client email %s, got %s", client.Email, gotParams.CustomerEmail)
	}
	if gotParams.SuccessURL != "http://localhost:5173/client-invoices?checkout=success" {
		t.Errorf("unexpected success URL %s", gotParams.SuccessURL)
	}
	if gotParams.Metadata["invoiceId"] != invoice.ID.String() {
		t.Error("expected invoice id in session metadata")
	}
}

// --- Settlement ---

func settlementFixture(t *testing.T, invoice *model.Invoice) (InvoiceService, *bool) {
	t.Helper()
	updated := false
	invoiceRepo := &mockInvoiceRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
			if invoice == nil {
				return nil, gorm.ErrRecordNotFound
			}
			return invoice, nil
		},
		UpdateFunc: func(ctx context.Context, inv *model.Invoice) error {
			updated = true
			return nil
		},
	}
	svc := NewInvoiceService(invoiceRepo, &mockClientRepo{}, allowAllPerms(), &mockProvider{}, &mockAudit{}, "")
	return svc, &updated
}

func TestHandleCheckoutCompletedSettlesInvoice(t *testing.T) {
	sessionID := "cs_settle"
	invoice := &model.Invoice{
		ID:                      uuid.New(),
		WorkspaceID:             uuid.New(),
		Status:                  model.InvoiceStatusSent,
		AmountCents:             2500,
		Currency:                "USD",
		StripeCheckoutSessionID: &sessionID,
	}
	svc, updated := settlementFixture(t, invoice)

	err := svc.HandleCheckoutCompleted(context.Background(), &payment.CompletedCheckout{
		SessionID:       sessionID,
		PaymentIntentID: "pi_1",
		InvoiceID:       invoice.ID.String(),
		AmountTotal:     2500,
		Currency:        "usd",
		Paid:            true,
	})
	if err != nil {
		t.Fatalf("HandleCheckoutCompleted returned error: %v", err)
	}
	if !*updated {
		t.Fatal("expected invoice to be updated")
	}
	if invoice.Status != model.InvoiceStatusPaid {
		t.Errorf("expected PAID, got %s", invoice.Status)
	}
	if invoice.AmountPaidCents != 2500 {
		t.Errorf("expected amount paid 2500, got %d", invoice.AmountPaidCents)
	}
	if invoice.PaidAt == nil {
		t.Error("expected paid_at to be set")
	}
	if invoice.StripePaymentIntentID == nil || *invoice.StripePaymentIntentID != "pi_1" {
		t.Error("expected payment intent id to be recorded")
	}
}

func TestHandleCheckoutCompletedIsIdempotent(t *testing.T) {
	invoice := &model.Invoice{
		ID:              uuid.New(),
		Status:          model.InvoiceStatusPaid,
		AmountCents:     2500,
		AmountPaidCents: 2500,
		Currency:        "USD",
	}
	svc, updated := settlementFixture(t, invoice)

	err := svc.HandleCheckoutCompleted(context.Background(), &payment.CompletedCheckout{
		SessionID:   "cs_replay",
		InvoiceID:   invoice.ID.String(),
		AmountTotal: 2500,
		Currency:    "usd",
		Paid:        true,
	})
	if err != nil {
		t.Fatalf("replay should be a no-op, got error: %v", err)
	}
	if *updated {
		t.Error("replayed event must not touch the invoice")
	}
}

func TestHandleCheckoutCompletedIgnoresMismatches(t *testing.T) {
	storedSession := "cs_original"
	base := func() *model.Invoice {
		return &model.Invoice{
			ID:                      uuid.New(),
			Status:                  model.InvoiceStatusSent,
			AmountCents:             2500,
			Currency:                "USD",
			StripeCheckoutSessionID: &storedSession,
		}
	}

	cases := []struct {
		name  string
		event func(inv *model.Invoice) *payment.CompletedCheckout
	}{
		{
			name: "amount mismatch",
			event: func(inv *model.Invoice) *payment.CompletedCheckout {
				return &payment.CompletedCheckout{SessionID: storedSession, InvoiceID: inv.ID.String(), AmountTotal: 100, Currency: "usd", Paid: true}
			},
		},
		{
			name: "currency mismatch",
			event: func(inv *model.Invoice) *payment.CompletedCheckout {
				return &payment.CompletedCheckout{SessionID: storedSession, InvoiceID: inv.ID.String(), AmountTotal: 2500, Currency: "eur", Paid: true}
			},
		},
		{
			name: "unpaid session",
			event: func(inv *model.Invoice) *payment.CompletedCheckout {
				return &payment.CompletedCheckout{SessionID: storedSession, InvoiceID: inv.ID.String(), AmountTotal: 2500, Currency: "usd", Paid: false}
			},
		},
		{
			name: "session mismatch",
			event: func(inv *model.Invoice) *payment.CompletedCheckout {
				return &payment.CompletedCheckout{SessionID: "cs_other", InvoiceID: inv.ID.String(), AmountTotal: 2500, Currency: "usd", Paid: true}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invoice := base()
			svc, updated := settlementFixture(t, invoice)
			if err := svc.HandleCheckoutCompleted(context.Background(), tc.event(invoice)); err != nil {
				t.Fatalf("mismatched event should be a no-op, got error: %v", err)
			}
			if *updated {
				t.Error("mismatched event must not touch the invoice")
			}
			if invoice.Status != model.InvoiceStatusSent {
				t.Errorf("status changed to %s", invoice.Status)
			}
		})
	}
}

func TestHandleCheckoutCompletedUnknownInvoiceIsNoop(t *testing.T) {
	svc, updated := settlementFixture(t, nil)

	for _, invoiceID := range []string{"not-a-uuid", uuid.NewString(), ""} {
		err := svc.HandleCheckoutCompleted(context.Background(), &payment.CompletedCheckout{
			SessionID:   "cs_x",
			InvoiceID:   invoiceID,
			AmountTotal: 100,
			Currency:    "usd",
			Paid:        true,
		})
		if err != nil {
			t.Errorf("invoice id %q: expected no-op, got error: %v", invoiceID, err)
		}
	}
	if *updated {
		t.Error("unknown invoice must not trigger an update")
	}
}

func TestHandleCheckoutCompletedStoreFailurePropagates(t *testing.T) {
	invoice := &model.Invoice{
		ID:          uuid.New(),
		Status:      model.InvoiceStatusSent,
		AmountCents: 2500,
		Currency:    "USD",
	}
	invoiceRepo := &mockInvoiceRepo{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
			return invoice, nil
		},
		UpdateFunc: func(ctx context.Context, inv *model.Invoice) error {
			return errors.New("connection reset")
		},
	}
	svc := NewInvoiceService(invoiceRepo, &mockClientRepo{}, allowAllPerms(), &mockProvider{}, &mockAudit{}, "")

	err := svc.HandleCheckoutCompleted(context.Background(), &payment.CompletedCheckout{
		SessionID:   "cs_fail",
		InvoiceID:   invoice.ID.String(),
		AmountTotal: 2500,
		Currency:    "usd",
		Paid:        true,
	})
	if err == nil {
		t.Fatal("store failure must propagate so the provider retries")
	}
}
