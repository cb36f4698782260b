package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/auth"
)

// MaintenanceHandler handles administrative deletion API endpoints
type MaintenanceHandler struct {
	BaseHandler
	maintenanceService *billingapp.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(maintenanceService *billingapp.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
	}
}

// DeleteInvoicesRequest represents a request to cascade-delete invoices
// @Description Request body for deleting a client's invoices with full reference cleanup
type DeleteInvoicesRequest struct {
	ClientID          string   `json:"client_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	InvoiceIDs        []string `json:"invoice_ids" binding:"required,min=1,dive,uuid"`
	CertifiedOverride bool     `json:"certified_override" example:"false"`
}

// DeleteInvoices godoc
// @ID           deleteInvoices
// @Summary      Delete invoices with cascade cleanup
// @Description  Delete a batch of a client's invoices, detaching readings, pruning reconnection records and clearing consolidation references. Certified invoices are refused unless the override flag is set, which requires the invoices:purge permission.
// @Tags         maintenance
// @Accept       json
// @Produce      json
// @Param        request body DeleteInvoicesRequest true "Deletion request"
// @Success      200 {object} dto.Response{data=billingapp.DeletionReport}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /maintenance/invoices/delete [post]
func (h *MaintenanceHandler) DeleteInvoices(c *gin.Context) {
	var req DeleteInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	if req.CertifiedOverride && !operatorHasPermission(c, auth.PermissionInvoicesPurge) {
		h.Forbidden(c, "deleting certified invoices requires the invoices:purge permission")
		return
	}

	invoiceIDs := make([]uuid.UUID, 0, len(req.InvoiceIDs))
	for _, raw := range req.InvoiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "invalid invoice ID: "+raw)
			return
		}
		invoiceIDs = append(invoiceIDs, id)
	}

	report, err := h.maintenanceService.DeleteInvoices(c.Request.Context(), billingapp.DeleteInvoicesRequest{
		ClientID:          clientID,
		InvoiceIDs:        invoiceIDs,
		CertifiedOverride: req.CertifiedOverride,
		RequestedBy:       operatorUsername(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}
