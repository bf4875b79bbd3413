package payment

import "context"

// CheckoutSessionParams describes one hosted checkout for the remaining
// balance of an invoice.
type CheckoutSessionParams struct {
	AmountCents        int64
	Currency           string // 3-letter lowercase
	ProductName        string
	ProductDescription string
	CustomerEmail      string
	ClientReferenceID  string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// CheckoutSession is the provider-side session handle returned to the caller,
// who redirects the end user's browser to URL.
type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// CompletedCheckout is the normalized payload of a completed-checkout webhook
// event. InvoiceID comes from the session metadata, falling back to the
// client_reference_id.
type CompletedCheckout struct {
	SessionID       string
	PaymentIntentID string
	InvoiceID       string
	AmountTotal     int64
	Currency        string
	Paid            bool
}

// WebhookEvent is a signature-verified provider callback. Checkout is non-nil
// only for completed-checkout events; all other event types pass through as
// no-ops.
type WebhookEvent struct {
	Type     string
	Checkout *CompletedCheckout
}

// Provider abstracts the hosted payment provider. Constructed once at startup
// and injected into the services that need it.
type Provider interface {
	Configured() bool
	WebhookConfigured() bool
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
	// ParseWebhookEvent verifies the signature and decodes the event. An error
	// means the payload must be rejected without touching any state.
	ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}
