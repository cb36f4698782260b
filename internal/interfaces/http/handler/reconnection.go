package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
)

// ReconnectionHandler handles service reconnection API endpoints
type ReconnectionHandler struct {
	BaseHandler
	reconnectionService *billingapp.ReconnectionService
}

// NewReconnectionHandler creates a new ReconnectionHandler
func NewReconnectionHandler(reconnectionService *billingapp.ReconnectionService) *ReconnectionHandler {
	return &ReconnectionHandler{
		reconnectionService: reconnectionService,
	}
}

// ReconnectionCheckResponse reports whether a client needs reconnection
// @Description Reconnection requirement check result
type ReconnectionCheckResponse struct {
	RequiresReconnection bool  `json:"requires_reconnection" example:"true"`
	OverdueInvoices      int64 `json:"overdue_invoices" example:"3"`
}

// ProcessReconnectionRequest represents a request to process a reconnection
// @Description Request body for atomically processing a reconnection payment
type ProcessReconnectionRequest struct {
	ClientID       string              `json:"client_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	Option         string              `json:"option" binding:"required,oneof=parcial total emergencia" example:"parcial"`
	AmountTendered float64             `json:"amount_tendered" binding:"required,gt=0" example:"385.00"`
	Method         string              `json:"method" binding:"required,oneof=efectivo cheque transferencia tarjeta" example:"efectivo"`
	Reference      string              `json:"reference" binding:"max=100"`
	Check          *CheckDetailRequest `json:"check,omitempty"`
	ProcessedAt    time.Time           `json:"processed_at" example:"2026-08-20T10:15:00Z"`
}

// ProcessReconnectionResponse bundles everything a reconnection produced
// @Description Result of a processed reconnection
type ProcessReconnectionResponse struct {
	Reconnection        ReconnectionResponse       `json:"reconnection"`
	ConsolidatedInvoice InvoiceResponse            `json:"consolidated_invoice"`
	Payment             PaymentResponse            `json:"payment"`
	Quote               *billing.ReconnectionQuote `json:"quote"`
}

// Check godoc
// @ID           checkReconnection
// @Summary      Check whether a client requires reconnection
// @Description  A client with enough overdue pending invoices must pay through the reconnection flow
// @Tags         reconnections
// @Produce      json
// @Param        clientId path string true "Client ID" format(uuid)
// @Param        as_of query string false "Evaluation date (RFC 3339)" format(date-time)
// @Success      200 {object} dto.Response{data=ReconnectionCheckResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/clients/{clientId}/reconnection/check [get]
func (h *ReconnectionHandler) Check(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	asOf, ok := h.asOfQuery(c)
	if !ok {
		return
	}

	required, overdue, err := h.reconnectionService.RequiresReconnection(c.Request.Context(), clientID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ReconnectionCheckResponse{
		RequiresReconnection: required,
		OverdueInvoices:      overdue,
	})
}

// Quote godoc
// @ID           quoteReconnection
// @Summary      Quote reconnection payoff options
// @Description  Price the client's pending debt and produce the partial and total payoff options; nothing is mutated
// @Tags         reconnections
// @Produce      json
// @Param        clientId path string true "Client ID" format(uuid)
// @Param        as_of query string false "Quote date (RFC 3339)" format(date-time)
// @Success      200 {object} dto.Response{data=billing.ReconnectionQuote}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/clients/{clientId}/reconnection/quote [get]
func (h *ReconnectionHandler) Quote(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	asOf, ok := h.asOfQuery(c)
	if !ok {
		return
	}

	quote, err := h.reconnectionService.CalculateOptions(c.Request.Context(), clientID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// Process godoc
// @ID           processReconnection
// @Summary      Process a reconnection
// @Description  Atomically consolidate covered invoices, record the payment and restore service; fails whole on any mismatch
// @Tags         reconnections
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for safe retries"
// @Param        request body ProcessReconnectionRequest true "Reconnection processing request"
// @Success      201 {object} dto.Response{data=ProcessReconnectionResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/reconnections [post]
func (h *ReconnectionHandler) Process(c *gin.Context) {
	var req ProcessReconnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	appReq := billingapp.ProcessReconnectionRequest{
		ClientID:       clientID,
		Option:         billing.ReconnectionOption(req.Option),
		AmountTendered: decimal.NewFromFloat(req.AmountTendered),
		Method:         billing.PaymentMethod(req.Method),
		Reference:      req.Reference,
		Operator:       operatorUsername(c),
		ProcessedAt:    req.ProcessedAt,
	}
	if req.Check != nil {
		appReq.Check = &billing.CheckDetail{
			Bank:        req.Check.Bank,
			CheckNumber: req.Check.CheckNumber,
		}
	}

	result, err := h.reconnectionService.Process(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ProcessReconnectionResponse{
		Reconnection:        toReconnectionResponse(result.Reconnection),
		ConsolidatedInvoice: toInvoiceResponse(result.ConsolidatedInvoice),
		Payment:             toPaymentResponse(result.Payment),
		Quote:               result.Quote,
	})
}

// History godoc
// @ID           reconnectionHistory
// @Summary      List a client's reconnection history
// @Tags         reconnections
// @Produce      json
// @Param        clientId path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]ReconnectionResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /billing/clients/{clientId}/reconnections [get]
func (h *ReconnectionHandler) History(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	history, err := h.reconnectionService.History(c.Request.Context(), clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toReconnectionResponses(history))
}

func (h *ReconnectionHandler) asOfQuery(c *gin.Context) (time.Time, bool) {
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be an RFC 3339 timestamp")
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Now(), true
}
