package handler

import (
	"io"
	"log"
	"net/http"

	"clienthub/internal/payment"
	"clienthub/internal/service"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	provider       payment.Provider
	invoiceService service.InvoiceService
}

func NewWebhookHandler(provider payment.Provider, invoiceService service.InvoiceService) *WebhookHandler {
	return &WebhookHandler{provider: provider, invoiceService: invoiceService}
}

func (h *WebhookHandler) RegisterRoutes(router *gin.RouterGroup) {
	// No auth middleware: the signature check is the authentication.
	router.POST("/api/stripe/webhook", h.HandleStripeWebhook)
}

// HandleStripeWebhook settles invoices from completed-checkout events
// @Summary      Stripe webhook
// @Description  Verifies the event signature and settles the matching invoice at most once
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/stripe/webhook [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	if !h.provider.WebhookConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Stripe webhook is not configured"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unable to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing stripe-signature header"})
		return
	}

	// A bad signature is rejected outright and never retried with the same
	// payload; no state is touched.
	event, err := h.provider.ParseWebhookEvent(payload, signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Webhook Error: " + err.Error()})
		return
	}

	if event.Checkout != nil {
		if err := h.invoiceService.HandleCheckoutCompleted(c.Request.Context(), event.Checkout); err != nil {
			// Report a processing failure so the provider's delivery layer retries.
			log.Printf("stripe webhook handler failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Webhook processing failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
