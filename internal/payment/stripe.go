package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider against the Stripe API with an injected
// client instance (no package-global key).
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	p := &StripeProvider{webhookSecret: webhookSecret}
	if secretKey != "" {
		p.api = &client.API{}
		p.api.Init(secretKey, nil)
	}
	return p
}

func (p *StripeProvider) Configured() bool {
	return p.api != nil
}

func (p *StripeProvider) WebhookConfigured() bool {
	return p.api != nil && p.webhookSecret != ""
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutSessionParams) (*CheckoutSession, error) {
	if p.api == nil {
		return nil, fmt.Errorf("stripe is not configured")
	}

	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(in.ProductName),
	}
	if in.ProductDescription != "" {
		productData.Description = stripe.String(in.ProductDescription)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(in.ClientReferenceID),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(in.Currency),
					ProductData: productData,
					UnitAmount:  stripe.Int64(in.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	// IgnoreAPIVersionMismatch: the CLI and dashboard may deliver events pinned
	// to a different API version than the SDK; signature verification is
	// unaffected.
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	out := &WebhookEvent{Type: string(event.Type)}
	if event.Type != "checkout.session.completed" {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	invoiceID := sess.Metadata["invoiceId"]
	if invoiceID == "" {
		invoiceID = sess.ClientReferenceID
	}

	var paymentIntentID string
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	out.Checkout = &CompletedCheckout{
		SessionID:       sess.ID,
		PaymentIntentID: paymentIntentID,
		InvoiceID:       invoiceID,
		AmountTotal:     sess.AmountTotal,
		Currency:        string(sess.Currency),
		Paid:            sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}

	return out, nil
}
