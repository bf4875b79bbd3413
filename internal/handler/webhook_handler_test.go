package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clienthub/internal/model"
	"clienthub/internal/payment"
	"clienthub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

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

type mockInvoiceService struct {
	HandleCheckoutCompletedFunc func(ctx context.Context, event *payment.CompletedCheckout) error
}

func (m *mockInvoiceService) ListByWorkspace(ctx context.Context, actor service.Actor, workspaceID uuid.UUID) ([]model.Invoice, error) {
	return nil, nil
}
func (m *mockInvoiceService) ListByClient(ctx context.Context, actor service.Actor, clientID uuid.UUID) ([]model.Invoice, error) {
	return nil, nil
}
func (m *mockInvoiceService) Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*model.Invoice, error) {
	return nil, nil
}
func (m *mockInvoiceService) Create(ctx context.Context, actor service.Actor, req service.CreateInvoiceRequest) (*model.Invoice, error) {
	return nil, nil
}
func (m *mockInvoiceService) Update(ctx context.Context, actor service.Actor, id uuid.UUID, req service.UpdateInvoiceRequest) (*model.Invoice, error) {
	return nil, nil
}
func (m *mockInvoiceService) InitiateCheckout(ctx context.Context, actor service.Actor, id uuid.UUID) (*payment.CheckoutSession, error) {
	return nil, nil
}
func (m *mockInvoiceService) HandleCheckoutCompleted(ctx context.Context, event *payment.CompletedCheckout) error {
	return m.HandleCheckoutCompletedFunc(ctx, event)
}
func (m *mockInvoiceService) Summary(ctx context.Context, actor service.Actor, workspaceID uuid.UUID) ([]model.InvoiceSummaryRow, error) {
	return nil, nil
}

func webhookRouter(provider payment.Provider, svc service.InvoiceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewWebhookHandler(provider, svc).RegisterRoutes(router.Group(""))
	return router
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookUnavailableWhenNotConfigured(t *testing.T) {
	provider := &mockProvider{
		WebhookConfiguredFunc: func() bool { return false },
	}
	router := webhookRouter(provider, &mockInvoiceService{})

	w := postWebhook(router, []byte("{}"), "sig")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	provider := &mockProvider{
		WebhookConfiguredFunc: func() bool { return true },
	}
	router := webhookRouter(provider, &mockInvoiceService{})

	w := postWebhook(router, []byte("{}"), "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	provider := &mockProvider{
		WebhookConfiguredFunc: func() bool { return true },
		ParseWebhookEventFunc: func(payload []byte, signature string) (*payment.WebhookEvent, error) {
			return nil, errors.New("signature verification failed")
		},
	}
	settled := false
	svc := &mockInvoiceService{
		HandleCheckoutCompletedFunc: func(ctx context.Context, event *payment.CompletedCheckout) error {
			settled = true
			return nil
		},
	}
	router := webhookRouter(provider, svc)

	w := postWebhook(router, []byte("{}"), "bad-sig")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if settled {
		t.Error("rejected payload must not reach settlement")
	}
}

func TestWebhookIgnoresUnrelatedEvents(t *testing.T) {
	provider := &mockProvider{
		WebhookConfiguredFunc: func() bool { return true },
		ParseWebhookEventFunc: func(payload []byte, signature string) (*payment.WebhookEvent, error) {
			return &payment.WebhookEvent{Type: "invoice.created"}, nil
		},
	}
	settled := false
	svc := &mockInvoiceService{
		HandleCheckoutCompletedFunc: func(ctx context.Context, event *payment.CompletedCheckout) error {
			settled = true
			return nil
		},
	}
	router := webhookRouter(provider, svc)

	w := postWebhook(router, []byte("{}"), "sig")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if settled {
		t.Error("non-checkout events must not trigger settlement")
	}
}

func TestWebhookSettlesCompletedCheckout(t *testing.T) {
	event := &payment.CompletedCheckout{
		SessionID:   "cs_1",
		InvoiceID:   uuid.NewString(),
		AmountTotal: 2500,
		Currency:    "usd",
		Paid:        true,
	}
	provider := &mockProvider{
		WebhookConfiguredFunc: func() bool { return true },
		ParseWebhookEventFunc: func(payload []byte, signature string) (*payment.WebhookEvent, error) {
			return &payment.WebhookEvent{Type: "checkout.session.completed", Checkout: event}, nil
		},
	}
	var got *payment.CompletedCheckout
	svc := &mockInvoiceService{
		HandleCheckoutCompletedFunc: func(ctx context.Context, ev *payment.CompletedCheckout) error {
			got = ev
			return nil
		},
	}
	router := webhookRouter(provider, svc)

	w := postWebhook(router, []byte("{}"), "sig")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if got != event {
		t.Error("expected the parsed checkout event to reach the service")
	}
}

func TestWebhookProcessingFailureReturns500(t *testing.T) {
	provider := &mockProvider{
		WebhookConfiguredFunc: func() bool { return true },
		ParseWebhookEventFunc: func(payload []byte, signature string) (*payment.WebhookEvent, error) {
			return &payment.WebhookEvent{
				Type:     "checkout.session.completed",
				Checkout: &payment.CompletedCheckout{InvoiceID: uuid.NewString()},
			}, nil
		},
	}
	svc := &mockInvoiceService{
		HandleCheckoutCompletedFunc: func(ctx context.Context, event *payment.CompletedCheckout) error {
			return errors.New("database unavailable")
		},
	}
	router := webhookRouter(provider, svc)

	w := postWebhook(router, []byte("{}"), "sig")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
