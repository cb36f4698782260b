package models

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/metering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReadingModel is the persistence model for the Reading aggregate root.
type ReadingModel struct {
	AggregateModel
	ClientID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	PreviousLiters decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	CurrentLiters  decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Consumption    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PeriodStart    time.Time               `gorm:"not null;index"`
	PeriodEnd      time.Time               `gorm:"not null"`
	ReadAt         time.Time               `gorm:"not null"`
	Status         metering.ReadingStatus  `gorm:"type:varchar(20);not null;default:'pending';index"`
	Estimated      bool                    `gorm:"not null;default:false"`
	Notes          string                  `gorm:"type:varchar(500)"`
	InvoiceID      *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ReadingModel) TableName() string {
	return "readings"
}

// ToDomain converts the persistence model to a domain Reading entity.
func (m *ReadingModel) ToDomain() *metering.Reading {
	return &metering.Reading{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ClientID:          m.ClientID,
		PreviousLiters:    m.PreviousLiters,
		CurrentLiters:     m.CurrentLiters,
		Consumption:       m.Consumption,
		PeriodStart:       m.PeriodStart,
		PeriodEnd:         m.PeriodEnd,
		ReadAt:            m.ReadAt,
		Status:            m.Status,
		Estimated:         m.Estimated,
		Notes:             m.Notes,
		InvoiceID:         m.InvoiceID,
	}
}

// FromDomain populates the persistence model from a domain Reading entity.
func (m *ReadingModel) FromDomain(r *metering.Reading) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ClientID = r.ClientID
	m.PreviousLiters = r.PreviousLiters
	m.CurrentLiters = r.CurrentLiters
	m.Consumption = r.Consumption
	m.PeriodStart = r.PeriodStart
	m.PeriodEnd = r.PeriodEnd
	m.ReadAt = r.ReadAt
	m.Status = r.Status
	m.Estimated = r.Estimated
	m.Notes = r.Notes
	m.InvoiceID = r.InvoiceID
}

// ReadingModelFromDomain creates a new persistence model from a domain Reading entity.
func ReadingModelFromDomain(r *metering.Reading) *ReadingModel {
	m := &ReadingModel{}
	m.FromDomain(r)
	return m
}
