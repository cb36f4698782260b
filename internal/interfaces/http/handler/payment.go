package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CheckDetailRequest carries check-specific payment data
// @Description Check details, required when method is cheque
type CheckDetailRequest struct {
	Bank        string `json:"bank" binding:"required,min=1,max=100" example:"Banrural"`
	CheckNumber string `json:"check_number" binding:"required,min=1,max=50" example:"0012345"`
}

// RegisterPaymentRequest represents a request to register a payment
// @Description Request body for registering a payment against an invoice
type RegisterPaymentRequest struct {
	InvoiceID       string              `json:"invoice_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440003"`
	OriginalAmount  float64             `json:"original_amount" binding:"gte=0" example:"65.63"`
	MoraAmount      float64             `json:"mora_amount" binding:"gte=0" example:"3.94"`
	ReconnectionFee float64             `json:"reconnection_fee" binding:"gte=0" example:"0"`
	Total           float64             `json:"total" binding:"required,gt=0" example:"69.57"`
	Method          string              `json:"method" binding:"required,oneof=efectivo cheque transferencia tarjeta" example:"efectivo"`
	Reference       string              `json:"reference" binding:"max=100" example:"DEP-778812"`
	Check           *CheckDetailRequest `json:"check,omitempty"`
	PaidAt          time.Time           `json:"paid_at" example:"2026-08-20T10:15:00Z"`
}

// CancelPaymentRequest represents a request to cancel a payment
// @Description Request body for cancelling a payment
type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"check bounced"`
}

// RetryCertificationsRequest represents a request to retry failed certifications
// @Description Request body for re-running failed certification attempts
type RetryCertificationsRequest struct {
	MaxAttempts int `json:"max_attempts" binding:"omitempty,min=1,max=20" example:"5"`
	Limit       int `json:"limit" binding:"omitempty,min=1,max=500" example:"50"`
}

// RetryCertificationsResponse reports how many documents were re-certified
// @Description Result of a certification retry run
type RetryCertificationsResponse struct {
	Certified int `json:"certified" example:"12"`
}

// Register godoc
// @ID           registerPayment
// @Summary      Register a payment
// @Description  Register a payment covering an invoice in full; the component split must add up to the total
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for safe retries"
// @Param        request body RegisterPaymentRequest true "Payment registration request"
// @Success      201 {object} dto.Response{data=PaymentResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/payments [post]
func (h *PaymentHandler) Register(c *gin.Context) {
	var req RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		h.BadRequest(c, "invalid invoice ID")
		return
	}

	appReq := billingapp.RegisterPaymentRequest{
		InvoiceID: invoiceID,
		Amounts: billing.PaymentAmounts{
			Original:        decimal.NewFromFloat(req.OriginalAmount),
			Mora:            decimal.NewFromFloat(req.MoraAmount),
			ReconnectionFee: decimal.NewFromFloat(req.ReconnectionFee),
		},
		Total:      decimal.NewFromFloat(req.Total),
		Method:     billing.PaymentMethod(req.Method),
		Reference:  req.Reference,
		ReceivedBy: operatorUsername(c),
		PaidAt:     req.PaidAt,
	}
	if req.Check != nil {
		appReq.Check = &billing.CheckDetail{
			Bank:        req.Check.Bank,
			CheckNumber: req.Check.CheckNumber,
		}
	}

	payment, err := h.paymentService.RegisterPayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toPaymentResponse(payment))
}

// GetByID godoc
// @ID           getPaymentById
// @Summary      Get payment by ID
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=PaymentResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// ConfirmCheck godoc
// @ID           confirmCheckPayment
// @Summary      Confirm a check payment
// @Description  Mark a check payment as cleared once the bank confirms it
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=PaymentResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/payments/{id}/confirm [post]
func (h *PaymentHandler) ConfirmCheck(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid payment ID")
		return
	}

	payment, err := h.paymentService.ConfirmCheckPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// Cancel godoc
// @ID           cancelPayment
// @Summary      Cancel a payment
// @Description  Cancel a processed payment and revert its invoice to pending
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body CancelPaymentRequest true "Cancellation request"
// @Success      200 {object} dto.Response{data=PaymentResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/payments/{id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid payment ID")
		return
	}

	var req CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.CancelPayment(c.Request.Context(), paymentID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// RetryCertifications godoc
// @ID           retryCertifications
// @Summary      Retry failed certifications
// @Description  Re-run certification for documents whose electronic invoicing attempt failed
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body RetryCertificationsRequest false "Retry parameters"
// @Success      200 {object} dto.Response{data=RetryCertificationsResponse}
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/certifications/retry [post]
func (h *PaymentHandler) RetryCertifications(c *gin.Context) {
	req := RetryCertificationsRequest{MaxAttempts: 5, Limit: 50}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		if req.MaxAttempts == 0 {
			req.MaxAttempts = 5
		}
		if req.Limit == 0 {
			req.Limit = 50
		}
	}

	certified, err := h.paymentService.RetryCertifications(c.Request.Context(), req.MaxAttempts, req.Limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, RetryCertificationsResponse{Certified: certified})
}
