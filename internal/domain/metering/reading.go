package metering

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReadingStatus represents the lifecycle status of a meter reading
type ReadingStatus string

const (
	ReadingStatusPending   ReadingStatus = "pending"   // Captured, not yet validated
	ReadingStatusProcessed ReadingStatus = "processed" // Validated, ready for billing
	ReadingStatusBilled    ReadingStatus = "billed"    // An invoice was generated from it
	ReadingStatusCorrected ReadingStatus = "corrected" // Superseded by a correction
)

// IsValid checks if the status is a valid ReadingStatus
func (s ReadingStatus) IsValid() bool {
	switch s {
	case ReadingStatusPending, ReadingStatusProcessed, ReadingStatusBilled, ReadingStatusCorrected:
		return true
	}
	return false
}

// String returns the string representation of ReadingStatus
func (s ReadingStatus) String() string {
	return string(s)
}

// Reading represents one meter reading event for a client.
// Consumption is derived from the meter deltas and must be non-negative
// unless the reading is flagged as estimated (meter rollover or replacement).
type Reading struct {
	shared.BaseAggregateRoot
	ClientID       uuid.UUID
	PreviousLiters decimal.Decimal
	CurrentLiters  decimal.Decimal
	Consumption    decimal.Decimal // CurrentLiters - PreviousLiters
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ReadAt         time.Time
	Status         ReadingStatus
	Estimated      bool
	Notes          string
	InvoiceID      *uuid.UUID // Back-reference to the invoice it produced
}

// NewReading creates a new reading with derived consumption
func NewReading(clientID uuid.UUID, previousLiters, currentLiters decimal.Decimal, periodStart, periodEnd, readAt time.Time, estimated bool) (*Reading, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if previousLiters.IsNegative() || currentLiters.IsNegative() {
		return nil, shared.NewDomainError("INVALID_READING", "Meter values cannot be negative")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}

	consumption := currentLiters.Sub(previousLiters)
	if consumption.IsNegative() && !estimated {
		return nil, shared.NewDomainError("READING_BELOW_PREVIOUS", "Current reading is below the previous reading")
	}
	if consumption.IsNegative() {
		// Estimated readings from meter rollover bill zero consumption
		consumption = decimal.Zero
	}

	return &Reading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		PreviousLiters:    previousLiters,
		CurrentLiters:     currentLiters,
		Consumption:       consumption,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		ReadAt:            readAt,
		Status:            ReadingStatusPending,
		Estimated:         estimated,
	}, nil
}

// Process validates the reading and marks it ready for billing
func (r *Reading) Process() error {
	if r.Status != ReadingStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending readings can be processed")
	}
	r.Status = ReadingStatusProcessed
	r.touch()
	return nil
}

// AttachInvoice links the reading to the invoice generated from it
func (r *Reading) AttachInvoice(invoiceID uuid.UUID) error {
	if r.Status != ReadingStatusProcessed {
		return shared.NewDomainError("INVALID_STATE", "Only processed readings can be billed")
	}
	if r.InvoiceID != nil {
		return shared.NewDomainError("ALREADY_BILLED", "Reading already produced an invoice")
	}
	r.InvoiceID = &invoiceID
	r.Status = ReadingStatusBilled
	r.touch()
	return nil
}

// DetachInvoice clears the invoice back-reference and reverts the reading to
// processed. Called when the linked invoice is deleted through the cascade.
func (r *Reading) DetachInvoice() {
	r.InvoiceID = nil
	r.Status = ReadingStatusProcessed
	r.touch()
}

// Correct supersedes the reading. A corrected reading is kept for audit but
// can no longer be billed.
func (r *Reading) Correct(notes string) error {
	if r.Status == ReadingStatusBilled {
		return shared.NewDomainError("READING_BILLED", "Billed readings cannot be corrected; delete the invoice first")
	}
	if r.Status == ReadingStatusCorrected {
		return shared.NewDomainError("ALREADY_CORRECTED", "Reading is already corrected")
	}
	r.Status = ReadingStatusCorrected
	r.Notes = notes
	r.touch()
	return nil
}

func (r *Reading) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
