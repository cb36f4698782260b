package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	meteringapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/metering"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/dto"
)

// ReadingHandler handles meter reading API endpoints
type ReadingHandler struct {
	BaseHandler
	readingService *meteringapp.ReadingService
}

// NewReadingHandler creates a new ReadingHandler
func NewReadingHandler(readingService *meteringapp.ReadingService) *ReadingHandler {
	return &ReadingHandler{
		readingService: readingService,
	}
}

// CaptureReadingRequest represents a request to capture a meter reading
// @Description Request body for capturing a meter reading
type CaptureReadingRequest struct {
	ClientID      string    `json:"client_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	CurrentLiters float64   `json:"current_liters" binding:"required,gte=0" example:"18300.0"`
	PeriodStart   time.Time `json:"period_start" binding:"required" example:"2026-07-01T00:00:00Z"`
	PeriodEnd     time.Time `json:"period_end" binding:"required" example:"2026-07-31T00:00:00Z"`
	ReadAt        time.Time `json:"read_at" example:"2026-08-01T09:30:00Z"`
	Estimated     bool      `json:"estimated" example:"false"`
}

// CorrectReadingRequest represents a request to correct a reading
// @Description Request body for marking a reading as corrected
type CorrectReadingRequest struct {
	Notes string `json:"notes" binding:"required,min=1,max=500" example:"misread dial, re-captured"`
}

// Capture godoc
// @ID           captureReading
// @Summary      Capture a meter reading
// @Description  Record a meter reading for a client; consumption is derived from the previous billed reading
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        request body CaptureReadingRequest true "Reading capture request"
// @Success      201 {object} dto.Response{data=ReadingResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /metering/readings [post]
func (h *ReadingHandler) Capture(c *gin.Context) {
	var req CaptureReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	reading, err := h.readingService.CaptureReading(c.Request.Context(), meteringapp.CaptureReadingRequest{
		ClientID:      clientID,
		CurrentLiters: decimal.NewFromFloat(req.CurrentLiters),
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		ReadAt:        req.ReadAt,
		Estimated:     req.Estimated,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toReadingResponse(reading))
}

// GetByID godoc
// @ID           getReadingById
// @Summary      Get reading by ID
// @Tags         readings
// @Produce      json
// @Param        id path string true "Reading ID" format(uuid)
// @Success      200 {object} dto.Response{data=ReadingResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /metering/readings/{id} [get]
func (h *ReadingHandler) GetByID(c *gin.Context) {
	readingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid reading ID")
		return
	}

	reading, err := h.readingService.GetReading(c.Request.Context(), readingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toReadingResponse(reading))
}

// ListByClient godoc
// @ID           listClientReadings
// @Summary      List readings for a client
// @Tags         readings
// @Produce      json
// @Param        clientId path string true "Client ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]ReadingResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /metering/clients/{clientId}/readings [get]
func (h *ReadingHandler) ListByClient(c *gin.Context) {
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

	readings, err := h.readingService.ListReadingsByClient(c.Request.Context(), clientID, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toReadingResponses(readings))
}

// Process godoc
// @ID           processReading
// @Summary      Process a pending reading
// @Description  Validate a pending reading and mark it ready for billing
// @Tags         readings
// @Produce      json
// @Param        id path string true "Reading ID" format(uuid)
// @Success      200 {object} dto.Response{data=ReadingResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /metering/readings/{id}/process [post]
func (h *ReadingHandler) Process(c *gin.Context) {
	readingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid reading ID")
		return
	}

	reading, err := h.readingService.ProcessReading(c.Request.Context(), readingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toReadingResponse(reading))
}

// Correct godoc
// @ID           correctReading
// @Summary      Mark a reading as corrected
// @Description  Supersede a reading that was captured wrong; billed readings cannot be corrected
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        id path string true "Reading ID" format(uuid)
// @Param        request body CorrectReadingRequest true "Correction request"
// @Success      200 {object} dto.Response{data=ReadingResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /metering/readings/{id}/correct [post]
func (h *ReadingHandler) Correct(c *gin.Context) {
	readingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid reading ID")
		return
	}

	var req CorrectReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	reading, err := h.readingService.CorrectReading(c.Request.Context(), readingID, req.Notes)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toReadingResponse(reading))
}
