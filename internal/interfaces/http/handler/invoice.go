package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// GenerateInvoiceRequest represents a request to generate an invoice
// @Description Request body for generating an invoice from a processed reading
type GenerateInvoiceRequest struct {
	ReadingID string    `json:"reading_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	IssueDate time.Time `json:"issue_date" example:"2026-08-01T00:00:00Z"`
}

// VoidInvoiceRequest represents a request to void an invoice
// @Description Request body for voiding a pending invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"duplicate billing period"`
}

// Generate godoc
// @ID           generateInvoice
// @Summary      Generate an invoice from a reading
// @Description  Price a processed reading with the zone tariff and issue a numbered invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body GenerateInvoiceRequest true "Invoice generation request"
// @Success      201 {object} dto.Response{data=InvoiceResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/invoices [post]
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	readingID, err := uuid.Parse(req.ReadingID)
	if err != nil {
		h.BadRequest(c, "invalid reading ID")
		return
	}

	invoice, err := h.invoiceService.GenerateInvoice(c.Request.Context(), billingapp.GenerateInvoiceRequest{
		ReadingID: readingID,
		IssueDate: req.IssueDate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toInvoiceResponse(invoice))
}

// GetByID godoc
// @ID           getInvoiceById
// @Summary      Get invoice by ID
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=InvoiceResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// ListByClient godoc
// @ID           listClientInvoices
// @Summary      List invoices for a client
// @Tags         invoices
// @Produce      json
// @Param        clientId path string true "Client ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]InvoiceResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/clients/{clientId}/invoices [get]
func (h *InvoiceHandler) ListByClient(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ApplyDefaults()

	invoices, err := h.invoiceService.ListInvoicesByClient(c.Request.Context(), clientID, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponses(invoices))
}

// Void godoc
// @ID           voidInvoice
// @Summary      Void a pending invoice
// @Description  Annul a pending invoice; certified invoices must be annulled through a credit note instead
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body VoidInvoiceRequest true "Void request"
// @Success      200 {object} dto.Response{data=InvoiceResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid invoice ID")
		return
	}

	var req VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.VoidInvoice(c.Request.Context(), invoiceID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// AssessMora godoc
// @ID           assessInvoiceMora
// @Summary      Assess late fee on an invoice
// @Description  Compute the late fee accrued by an invoice as of a given date, defaulting to now
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        as_of query string false "Assessment date (RFC 3339)" format(date-time)
// @Success      200 {object} dto.Response{data=billing.MoraAssessment}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/invoices/{id}/mora [get]
func (h *InvoiceHandler) AssessMora(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid invoice ID")
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be an RFC 3339 timestamp")
			return
		}
		asOf = parsed
	}

	assessment, err := h.invoiceService.AssessMora(c.Request.Context(), invoiceID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, assessment)
}
