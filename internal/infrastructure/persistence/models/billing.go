package models

import (
	"encoding/json"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Kind-specific details and the certification annotation are stored as
// jsonb documents; every kind shares the same header columns.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_number"`
	Kind          billing.DocumentKind `gorm:"type:varchar(20);not null;default:'normal';index"`
	ClientID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	ClientName    string               `gorm:"type:varchar(200);not null"`
	ReadingID     *uuid.UUID           `gorm:"type:uuid;index"`
	IssueDate     time.Time            `gorm:"not null;index"`
	DueDate       time.Time            `gorm:"not null;index"`
	PeriodStart   time.Time            `gorm:"not null"`
	PeriodEnd     time.Time            `gorm:"not null"`
	Consumption   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	BaseFee       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	OverageLiters decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	OverageCost   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'pendiente';index"`

	PaymentMethod    billing.PaymentMethod `gorm:"type:varchar(20)"`
	PaymentReference string                `gorm:"type:varchar(100)"`
	PaidAt           *time.Time

	VoidedAt   *time.Time
	VoidReason string `gorm:"type:varchar(500)"`

	ConsolidatedIntoID  *uuid.UUID                  `gorm:"type:uuid;index"`
	ConsolidationStatus billing.ConsolidationStatus `gorm:"type:varchar(20);not null;default:'none'"`

	ReconnectionDetail string `gorm:"type:jsonb"`
	NoteDetail         string `gorm:"type:jsonb"`
	Certification      string `gorm:"type:jsonb;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		Kind:                m.Kind,
		ClientID:            m.ClientID,
		ClientName:          m.ClientName,
		ReadingID:           m.ReadingID,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		PeriodStart:         m.PeriodStart,
		PeriodEnd:           m.PeriodEnd,
		Consumption:         m.Consumption,
		BaseFee:             m.BaseFee,
		OverageLiters:       m.OverageLiters,
		OverageCost:         m.OverageCost,
		Subtotal:            m.Subtotal,
		Total:               m.Total,
		Status:              m.Status,
		PaymentMethod:       m.PaymentMethod,
		PaymentReference:    m.PaymentReference,
		PaidAt:              m.PaidAt,
		VoidedAt:            m.VoidedAt,
		VoidReason:          m.VoidReason,
		ConsolidatedIntoID:  m.ConsolidatedIntoID,
		ConsolidationStatus: m.ConsolidationStatus,
	}
	if m.ReconnectionDetail != "" {
		var detail billing.ReconnectionDetail
		if err := json.Unmarshal([]byte(m.ReconnectionDetail), &detail); err == nil {
			inv.Reconnection = &detail
		}
	}
	if m.NoteDetail != "" {
		var detail billing.NoteDetail
		if err := json.Unmarshal([]byte(m.NoteDetail), &detail); err == nil {
			inv.Note = &detail
		}
	}
	if m.Certification != "" {
		_ = json.Unmarshal([]byte(m.Certification), &inv.Certification)
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.Kind = inv.Kind
	m.ClientID = inv.ClientID
	m.ClientName = inv.ClientName
	m.ReadingID = inv.ReadingID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PeriodStart = inv.PeriodStart
	m.PeriodEnd = inv.PeriodEnd
	m.Consumption = inv.Consumption
	m.BaseFee = inv.BaseFee
	m.OverageLiters = inv.OverageLiters
	m.OverageCost = inv.OverageCost
	m.Subtotal = inv.Subtotal
	m.Total = inv.Total
	m.Status = inv.Status
	m.PaymentMethod = inv.PaymentMethod
	m.PaymentReference = inv.PaymentReference
	m.PaidAt = inv.PaidAt
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
	m.ConsolidatedIntoID = inv.ConsolidatedIntoID
	m.ConsolidationStatus = inv.ConsolidationStatus

	m.ReconnectionDetail = ""
	if inv.Reconnection != nil {
		if raw, err := json.Marshal(inv.Reconnection); err == nil {
			m.ReconnectionDetail = string(raw)
		}
	}
	m.NoteDetail = ""
	if inv.Note != nil {
		if raw, err := json.Marshal(inv.Note); err == nil {
			m.NoteDetail = string(raw)
		}
	}
	if raw, err := json.Marshal(inv.Certification); err == nil {
		m.Certification = string(raw)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
// The component split is stored in dedicated columns so reports can
// aggregate mora and fee income without unpacking documents.
type PaymentModel struct {
	AggregateModel
	InvoiceID       uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_payments_active_invoice,where:status != 'cancelado'"`
	ClientID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	OriginalAmount  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	MoraAmount      decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ReconnectionFee decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method          billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference       string                `gorm:"type:varchar(100)"`
	CheckBank       string                `gorm:"type:varchar(100)"`
	CheckNumber     string                `gorm:"type:varchar(50)"`
	Status          billing.PaymentStatus `gorm:"type:varchar(30);not null;default:'procesado';index"`
	ReceivedBy      string                `gorm:"type:varchar(100)"`
	PaidAt          time.Time             `gorm:"not null;index"`
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
	Certification   string `gorm:"type:jsonb;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	p := &billing.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceID:         m.InvoiceID,
		ClientID:          m.ClientID,
		Amounts: billing.PaymentAmounts{
			Original:        m.OriginalAmount,
			Mora:            m.MoraAmount,
			ReconnectionFee: m.ReconnectionFee,
		},
		Total:        m.Total,
		Method:       m.Method,
		Reference:    m.Reference,
		Status:       m.Status,
		ReceivedBy:   m.ReceivedBy,
		PaidAt:       m.PaidAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
	if m.CheckNumber != "" {
		p.Check = &billing.CheckDetail{
			Bank:        m.CheckBank,
			CheckNumber: m.CheckNumber,
		}
	}
	if m.Certification != "" {
		_ = json.Unmarshal([]byte(m.Certification), &p.Certification)
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.InvoiceID = p.InvoiceID
	m.ClientID = p.ClientID
	m.OriginalAmount = p.Amounts.Original
	m.MoraAmount = p.Amounts.Mora
	m.ReconnectionFee = p.Amounts.ReconnectionFee
	m.Total = p.Total
	m.Method = p.Method
	m.Reference = p.Reference
	m.CheckBank = ""
	m.CheckNumber = ""
	if p.Check != nil {
		m.CheckBank = p.Check.Bank
		m.CheckNumber = p.Check.CheckNumber
	}
	m.Status = p.Status
	m.ReceivedBy = p.ReceivedBy
	m.PaidAt = p.PaidAt
	m.CancelledAt = p.CancelledAt
	m.CancelReason = p.CancelReason
	if raw, err := json.Marshal(p.Certification); err == nil {
		m.Certification = string(raw)
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// ReconnectionModel is the persistence model for the Reconnection audit record.
type ReconnectionModel struct {
	AggregateModel
	ClientID              uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Option                billing.ReconnectionOption `gorm:"type:varchar(20);not null"`
	TotalDebt             decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	ReconnectionFee       decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	AmountPaid            decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	RemainingBalance      decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	ConsolidatedInvoiceID uuid.UUID                  `gorm:"type:uuid;not null;index"`
	SourceInvoiceIDs      string                     `gorm:"type:jsonb;not null;default:'[]'"`
	Method                billing.PaymentMethod      `gorm:"type:varchar(20);not null"`
	Operator              string                     `gorm:"type:varchar(100)"`
	ProcessedAt           time.Time                  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ReconnectionModel) TableName() string {
	return "reconnections"
}

// ToDomain converts the persistence model to a domain Reconnection entity.
func (m *ReconnectionModel) ToDomain() *billing.Reconnection {
	rec := &billing.Reconnection{
		BaseAggregateRoot:     m.ToDomainAggregateRoot(),
		ClientID:              m.ClientID,
		Option:                m.Option,
		TotalDebt:             m.TotalDebt,
		ReconnectionFee:       m.ReconnectionFee,
		AmountPaid:            m.AmountPaid,
		RemainingBalance:      m.RemainingBalance,
		ConsolidatedInvoiceID: m.ConsolidatedInvoiceID,
		Method:                m.Method,
		Operator:              m.Operator,
		ProcessedAt:           m.ProcessedAt,
	}
	if m.SourceInvoiceIDs != "" {
		_ = json.Unmarshal([]byte(m.SourceInvoiceIDs), &rec.SourceInvoiceIDs)
	}
	return rec
}

// FromDomain populates the persistence model from a domain Reconnection entity.
func (m *ReconnectionModel) FromDomain(rec *billing.Reconnection) {
	m.FromDomainAggregateRoot(rec.BaseAggregateRoot)
	m.ClientID = rec.ClientID
	m.Option = rec.Option
	m.TotalDebt = rec.TotalDebt
	m.ReconnectionFee = rec.ReconnectionFee
	m.AmountPaid = rec.AmountPaid
	m.RemainingBalance = rec.RemainingBalance
	m.ConsolidatedInvoiceID = rec.ConsolidatedInvoiceID
	m.Method = rec.Method
	m.Operator = rec.Operator
	m.ProcessedAt = rec.ProcessedAt
	if raw, err := json.Marshal(rec.SourceInvoiceIDs); err == nil {
		m.SourceInvoiceIDs = string(raw)
	}
}

// ReconnectionModelFromDomain creates a new persistence model from a domain Reconnection entity.
func ReconnectionModelFromDomain(rec *billing.Reconnection) *ReconnectionModel {
	m := &ReconnectionModel{}
	m.FromDomain(rec)
	return m
}

// DocumentSequenceModel backs the per-bucket monotonic document counters.
type DocumentSequenceModel struct {
	BucketKey string    `gorm:"type:varchar(20);primary_key"`
	Value     int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
