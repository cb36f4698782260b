package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
)

// NoteHandler handles credit and debit note API endpoints
type NoteHandler struct {
	BaseHandler
	noteService *billingapp.NoteService
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(noteService *billingapp.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

// IssueNoteRequest represents a request to issue a credit or debit note
// @Description Request body for issuing a note against a certified invoice
type IssueNoteRequest struct {
	Kind              string    `json:"kind" binding:"required,oneof=nota-credito nota-debito" example:"nota-credito"`
	OriginalInvoiceID string    `json:"original_invoice_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440003"`
	Amount            float64   `json:"amount" binding:"required,gt=0" example:"65.63"`
	Reason            string    `json:"reason" binding:"required,min=1,max=500" example:"billing adjustment"`
	IssueDate         time.Time `json:"issue_date" example:"2026-08-15T00:00:00Z"`
}

// AnnulInvoiceRequest represents a request to annul a certified invoice
// @Description Request body for annulling a certified invoice via a covering credit note
type AnnulInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"service never delivered"`
}

// Issue godoc
// @ID           issueNote
// @Summary      Issue a credit or debit note
// @Description  Issue a note referencing a certified invoice; certified documents are never edited in place
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        request body IssueNoteRequest true "Note issuance request"
// @Success      201 {object} dto.Response{data=InvoiceResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/notes [post]
func (h *NoteHandler) Issue(c *gin.Context) {
	var req IssueNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoiceID, err := uuid.Parse(req.OriginalInvoiceID)
	if err != nil {
		h.BadRequest(c, "invalid original invoice ID")
		return
	}

	note, err := h.noteService.IssueNote(c.Request.Context(), billingapp.IssueNoteRequest{
		Kind:              billing.DocumentKind(req.Kind),
		OriginalInvoiceID: invoiceID,
		Amount:            decimal.NewFromFloat(req.Amount),
		Reason:            req.Reason,
		IssueDate:         req.IssueDate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toInvoiceResponse(note))
}

// AnnulCertified godoc
// @ID           annulCertifiedInvoice
// @Summary      Annul a certified invoice
// @Description  Issue a credit note covering the full amount of a certified invoice and mark it annulled
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body AnnulInvoiceRequest true "Annulment request"
// @Success      200 {object} dto.Response{data=InvoiceResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/invoices/{id}/annul [post]
func (h *NoteHandler) AnnulCertified(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid invoice ID")
		return
	}

	var req AnnulInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.noteService.AnnulCertifiedInvoice(c.Request.Context(), invoiceID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}
