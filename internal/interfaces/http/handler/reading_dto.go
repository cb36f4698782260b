package handler

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/metering"
)

// ReadingResponse represents a meter reading in API responses
// @Description Meter reading details returned by the API
type ReadingResponse struct {
	ID             string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClientID       string    `json:"client_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	PreviousLiters string    `json:"previous_liters" example:"12500.0000"`
	CurrentLiters  string    `json:"current_liters" example:"18300.0000"`
	Consumption    string    `json:"consumption" example:"5800.0000"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	ReadAt         time.Time `json:"read_at"`
	Status         string    `json:"status" example:"pending" enums:"pending,processed,billed,corrected"`
	Estimated      bool      `json:"estimated" example:"false"`
	Notes          string    `json:"notes,omitempty"`
	InvoiceID      *string   `json:"invoice_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version" example:"1"`
}

func toReadingResponse(reading *metering.Reading) ReadingResponse {
	resp := ReadingResponse{
		ID:             reading.ID.String(),
		ClientID:       reading.ClientID.String(),
		PreviousLiters: reading.PreviousLiters.StringFixed(4),
		CurrentLiters:  reading.CurrentLiters.StringFixed(4),
		Consumption:    reading.Consumption.StringFixed(4),
		PeriodStart:    reading.PeriodStart,
		PeriodEnd:      reading.PeriodEnd,
		ReadAt:         reading.ReadAt,
		Status:         string(reading.Status),
		Estimated:      reading.Estimated,
		Notes:          reading.Notes,
		CreatedAt:      reading.CreatedAt,
		UpdatedAt:      reading.UpdatedAt,
		Version:        reading.Version,
	}
	if reading.InvoiceID != nil {
		id := reading.InvoiceID.String()
		resp.InvoiceID = &id
	}
	return resp
}

func toReadingResponses(readings []metering.Reading) []ReadingResponse {
	responses := make([]ReadingResponse, 0, len(readings))
	for i := range readings {
		responses = append(responses, toReadingResponse(&readings[i]))
	}
	return responses
}
