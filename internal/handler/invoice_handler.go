package handler

import (
	"net/http"

	"clienthub/internal/middleware"
	"clienthub/internal/service"
	"clienthub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices", middleware.RequireAuth())
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/summary", h.GetSummary)
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("", h.CreateInvoice)
		invoices.PATCH("/:id", h.UpdateInvoice)
		invoices.POST("/:id/checkout-session", h.CreateCheckoutSession)
	}
}

// ListInvoices returns invoices filtered by workspace or client
// @Summary      List invoices
// @Description  Lists invoices by workspace_id or client_id, scoped to what the caller may see
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        workspace_id  query     string  false  "Workspace ID"
// @Param        client_id     query     string  false  "Client ID"
// @Success      200           {object}  response.Response{data=[]model.Invoice}
// @Failure      400           {object}  response.Response
// @Failure      403           {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	actor := currentActor(c)

	if rawClientID := c.Query("client_id"); rawClientID != "" {
		clientID, err := uuid.Parse(rawClientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid client_id"))
			return
		}
		invoices, err := h.invoiceService.ListByClient(c.Request.Context(), actor, clientID)
		if err != nil {
			code := statusForError(err)
			c.JSON(code, response.Error(code, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
		return
	}

	workspaceID, ok := queryUUID(c, "workspace_id")
	if !ok {
		return
	}
	invoices, err := h.invoiceService.ListByWorkspace(c.Request.Context(), actor, workspaceID)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
}

// GetInvoice returns a single invoice by id
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Get(c.Request.Context(), currentActor(c), id)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// CreateInvoice creates an invoice for a client
// @Summary      Create invoice
// @Description  Creates an invoice; amount is in major currency units and converted to cents
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// UpdateInvoice applies a partial update to an invoice
// @Summary      Update invoice
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Partial Invoice Payload"
// @Success      200      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id} [patch]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), currentActor(c), id, req)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// CreateCheckoutSession opens a hosted checkout for the remaining balance
// @Summary      Initiate checkout
// @Description  Opens a hosted payment session for the invoice's remaining balance and returns the redirect URL
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=payment.CheckoutSession}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /api/invoices/{id}/checkout-session [post]
func (h *InvoiceHandler) CreateCheckoutSession(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	session, err := h.invoiceService.InitiateCheckout(c.Request.Context(), currentActor(c), id)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, session))
}

// GetSummary returns per-status invoice aggregates for a workspace
// @Summary      Invoice summary
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        workspace_id  query     string  true  "Workspace ID"
// @Success      200           {object}  response.Response{data=[]model.InvoiceSummaryRow}
// @Failure      403           {object}  response.Response
// @Router       /api/invoices/summary [get]
func (h *InvoiceHandler) GetSummary(c *gin.Context) {
	workspaceID, ok := queryUUID(c, "workspace_id")
	if !ok {
		return
	}
	rows, err := h.invoiceService.Summary(c.Request.Context(), currentActor(c), workspaceID)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}
