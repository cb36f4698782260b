package billing

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the stored status of an invoice.
// "vencida" (overdue) is derived from the due date, never stored.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pendiente"
	InvoiceStatusPaid    InvoiceStatus = "pagada"
	InvoiceStatusVoided  InvoiceStatus = "anulada"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusVoided:
		return true
	}
	return false
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusVoided
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// DocumentKind is the tagged variant discriminator for billing documents.
// Each kind carries a fixed detail set instead of one schema of nullable fields.
type DocumentKind string

const (
	DocumentKindInvoice      DocumentKind = "normal"
	DocumentKindReconnection DocumentKind = "reconexion"
	DocumentKindCreditNote   DocumentKind = "nota-credito"
	DocumentKindDebitNote    DocumentKind = "nota-debito"
)

// IsValid checks if the kind is a valid DocumentKind
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindInvoice, DocumentKindReconnection, DocumentKindCreditNote, DocumentKindDebitNote:
		return true
	}
	return false
}

// IsNote returns true for credit and debit notes
func (k DocumentKind) IsNote() bool {
	return k == DocumentKindCreditNote || k == DocumentKindDebitNote
}

// ConsolidationStatus tracks whether a normal invoice was folded into a
// reconnection consolidation
type ConsolidationStatus string

const (
	ConsolidationNone    ConsolidationStatus = "none"
	ConsolidationPartial ConsolidationStatus = "partial"
	ConsolidationFull    ConsolidationStatus = "consolidated"
)

// PaymentMethod identifies how an invoice was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "efectivo"
	PaymentMethodCheck    PaymentMethod = "cheque"
	PaymentMethodTransfer PaymentMethod = "transferencia"
	PaymentMethodCard     PaymentMethod = "tarjeta"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodTransfer, PaymentMethodCard:
		return true
	}
	return false
}

// ConsolidatedInvoiceSnapshot captures the state of a source invoice at the
// moment it was folded into a reconnection invoice
type ConsolidatedInvoiceSnapshot struct {
	SourceInvoiceID     uuid.UUID       `json:"source_invoice_id"`
	SourceNumber        string          `json:"source_number"`
	MonthLabel          string          `json:"month_label"` // e.g. "2026-05"
	PeriodStart         time.Time       `json:"period_start"`
	PeriodEnd           time.Time       `json:"period_end"`
	OriginalAmount      decimal.Decimal `json:"original_amount"`
	MoraAtConsolidation decimal.Decimal `json:"mora_at_consolidation"`
	Subtotal            decimal.Decimal `json:"subtotal"` // original + mora
	FullyCovered        bool            `json:"fully_covered"`
}

// ReconnectionDetail is the kind-specific detail set for reconexion invoices
type ReconnectionDetail struct {
	BaseAmount           decimal.Decimal               `json:"base_amount"` // debt portion covered
	ReconnectionFee      decimal.Decimal               `json:"reconnection_fee"`
	ConsolidatedInvoices []ConsolidatedInvoiceSnapshot `json:"consolidated_invoices"`
}

// NoteDetail is the kind-specific detail set for credit and debit notes
type NoteDetail struct {
	OriginalInvoiceID uuid.UUID `json:"original_invoice_id"`
	OriginalNumber    string    `json:"original_number"`
	Reason            string    `json:"reason"`
}

// Certification tracks the electronic-invoicing (FEL) side channel. It is a
// retriable annotation: certification never blocks or rolls back the local
// financial transaction.
type Certification struct {
	Certified         bool       `json:"certified"`
	ExternalID        string     `json:"external_id,omitempty"`
	AuthorizationCode string     `json:"authorization_code,omitempty"`
	CertifiedAt       *time.Time `json:"certified_at,omitempty"`
	LastError         string     `json:"last_error,omitempty"`
	FailedAttempts    int        `json:"failed_attempts"`
}

// Invoice is the central billing document aggregate root
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	Kind          DocumentKind
	ClientID      uuid.UUID
	ClientName    string
	ReadingID     *uuid.UUID // originating reading, normal invoices only
	IssueDate     time.Time
	DueDate       time.Time
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Consumption   decimal.Decimal
	BaseFee       decimal.Decimal
	OverageLiters decimal.Decimal
	OverageCost   decimal.Decimal
	Subtotal      decimal.Decimal
	Total         decimal.Decimal
	Status        InvoiceStatus

	// Payment fields, set only by Pay
	PaymentMethod    PaymentMethod
	PaymentReference string
	PaidAt           *time.Time

	// Void fields
	VoidedAt   *time.Time
	VoidReason string

	// Consolidation back-reference for invoices folded into a reconnection
	ConsolidatedIntoID  *uuid.UUID
	ConsolidationStatus ConsolidationStatus

	// Kind-specific details
	Reconnection *ReconnectionDetail
	Note         *NoteDetail

	Certification Certification
}

// NewInvoice creates a normal invoice from a priced reading
func NewInvoice(number string, clientID uuid.UUID, clientName string, readingID uuid.UUID, breakdown TariffBreakdown, consumption decimal.Decimal, issueDate, dueDate, periodStart, periodEnd time.Time) (*Invoice, error) {
	if err := validateDocumentHeader(number, clientID, issueDate, dueDate, periodStart, periodEnd); err != nil {
		return nil, err
	}
	if readingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_READING", "Reading ID cannot be empty")
	}

	return &Invoice{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		InvoiceNumber:       number,
		Kind:                DocumentKindInvoice,
		ClientID:            clientID,
		ClientName:          clientName,
		ReadingID:           &readingID,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		Consumption:         consumption,
		BaseFee:             breakdown.BaseFee,
		OverageLiters:       breakdown.OverageLiters,
		OverageCost:         breakdown.OverageCost,
		Subtotal:            breakdown.Subtotal,
		Total:               breakdown.Total,
		Status:              InvoiceStatusPending,
		ConsolidationStatus: ConsolidationNone,
	}, nil
}

// NewReconnectionInvoice creates the single consolidated invoice produced by a
// reconnection transaction. Its total equals the chosen option's amount to pay
// and its snapshots record each folded source invoice.
func NewReconnectionInvoice(number string, clientID uuid.UUID, clientName string, baseAmount, reconnectionFee decimal.Decimal, snapshots []ConsolidatedInvoiceSnapshot, issueDate, dueDate time.Time) (*Invoice, error) {
	if err := validateDocumentHeader(number, clientID, issueDate, dueDate, issueDate, dueDate); err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, shared.NewDomainError("EMPTY_CONSOLIDATION", "A reconnection invoice must consolidate at least one invoice")
	}
	if baseAmount.IsNegative() || reconnectionFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
	}

	total := baseAmount.Add(reconnectionFee)
	return &Invoice{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		InvoiceNumber:       number,
		Kind:                DocumentKindReconnection,
		ClientID:            clientID,
		ClientName:          clientName,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		PeriodStart:         issueDate,
		PeriodEnd:           dueDate,
		Subtotal:            total,
		Total:               total,
		Status:              InvoiceStatusPending,
		ConsolidationStatus: ConsolidationNone,
		Reconnection: &ReconnectionDetail{
			BaseAmount:           baseAmount,
			ReconnectionFee:      reconnectionFee,
			ConsolidatedInvoices: snapshots,
		},
	}, nil
}

// NewNote creates a credit or debit note referencing an original invoice.
// Notes never reference other notes, and a credit note cannot exceed the
// original invoice's total.
func NewNote(kind DocumentKind, number string, original *Invoice, amount decimal.Decimal, reason string, issueDate, dueDate time.Time) (*Invoice, error) {
	if !kind.IsNote() {
		return nil, shared.NewDomainError("INVALID_KIND", "Note kind must be nota-credito or nota-debito")
	}
	if original == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Original invoice cannot be nil")
	}
	if original.Kind.IsNote() {
		return nil, shared.NewDomainError("NOTE_CHAIN", "A note cannot reference another note")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Note amount must be positive")
	}
	if kind == DocumentKindCreditNote && amount.GreaterThan(original.Total) {
		return nil, shared.NewDomainError("CREDIT_EXCEEDS_ORIGINAL", "Credit note amount cannot exceed the original invoice total")
	}
	if err := validateDocumentHeader(number, original.ClientID, issueDate, dueDate, issueDate, dueDate); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Note reason cannot be empty")
	}

	return &Invoice{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		InvoiceNumber:       number,
		Kind:                kind,
		ClientID:            original.ClientID,
		ClientName:          original.ClientName,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		PeriodStart:         original.PeriodStart,
		PeriodEnd:           original.PeriodEnd,
		Subtotal:            amount,
		Total:               amount,
		Status:              InvoiceStatusPending,
		ConsolidationStatus: ConsolidationNone,
		Note: &NoteDetail{
			OriginalInvoiceID: original.ID,
			OriginalNumber:    original.InvoiceNumber,
			Reason:            reason,
		},
	}, nil
}

func validateDocumentHeader(number string, clientID uuid.UUID, issueDate, dueDate, periodStart, periodEnd time.Time) error {
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if clientID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !dueDate.After(issueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date must be after issue date")
	}
	if periodEnd.Before(periodStart) {
		return shared.NewDomainError("INVALID_PERIOD", "Period end must not be before period start")
	}
	return nil
}

// IsOverdue reports the derived "vencida" state
func (i *Invoice) IsOverdue(asOf time.Time) bool {
	return i.Status == InvoiceStatusPending && asOf.After(i.DueDate)
}

// DerivedStatus returns the user-facing status including the derived
// "vencida" state for overdue pending invoices
func (i *Invoice) DerivedStatus(asOf time.Time) string {
	if i.IsOverdue(asOf) {
		return "vencida"
	}
	return i.Status.String()
}

// MonthLabel returns the billing month label of the invoice period
func (i *Invoice) MonthLabel() string {
	return i.PeriodStart.Format("2006-01")
}

// Pay transitions the invoice from pending to paid.
// Rejects terminal states and future payment dates.
func (i *Invoice) Pay(method PaymentMethod, reference string, paidAt, now time.Time) error {
	switch i.Status {
	case InvoiceStatusPaid:
		return shared.NewDomainError("ALREADY_PAID", "Invoice is already paid")
	case InvoiceStatusVoided:
		return shared.NewDomainError("INVOICE_VOIDED", "Voided invoices cannot be paid")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if paidAt.After(now) {
		return shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date cannot be in the future")
	}

	i.Status = InvoiceStatusPaid
	i.PaymentMethod = method
	i.PaymentReference = reference
	i.PaidAt = &paidAt
	i.touch()
	return nil
}

// RevertToPending rolls a paid invoice back to pending. Used when the active
// payment against it is cancelled.
func (i *Invoice) RevertToPending() error {
	if i.Status != InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Only paid invoices can revert to pending")
	}
	i.Status = InvoiceStatusPending
	i.PaymentMethod = ""
	i.PaymentReference = ""
	i.PaidAt = nil
	i.touch()
	return nil
}

// Void annuls a pending invoice. Paid invoices must go through the
// annul-certified flow (credit note) instead.
func (i *Invoice) Void(reason string) error {
	switch i.Status {
	case InvoiceStatusPaid:
		return shared.NewDomainError("INVOICE_PAID", "Paid invoices cannot be voided directly; issue a credit note")
	case InvoiceStatusVoided:
		return shared.NewDomainError("ALREADY_VOIDED", "Invoice is already voided")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason cannot be empty")
	}

	now := time.Now()
	i.Status = InvoiceStatusVoided
	i.VoidedAt = &now
	i.VoidReason = reason
	i.touch()
	return nil
}

// MarkConsolidated records that this invoice was fully covered by a
// reconnection consolidation and marks it paid
func (i *Invoice) MarkConsolidated(intoID uuid.UUID, method PaymentMethod, at time.Time) error {
	if i.Status != InvoiceStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending invoices can be consolidated")
	}
	i.ConsolidatedIntoID = &intoID
	i.ConsolidationStatus = ConsolidationFull
	i.Status = InvoiceStatusPaid
	i.PaymentMethod = method
	i.PaymentReference = "reconexion"
	i.PaidAt = &at
	i.touch()
	return nil
}

// AnnotatePartialConsolidation records that this invoice was partially covered
// by a reconnection allocation; the invoice stays pending for a future cycle.
func (i *Invoice) AnnotatePartialConsolidation(intoID uuid.UUID) error {
	if i.Status != InvoiceStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending invoices can carry a partial consolidation")
	}
	i.ConsolidatedIntoID = &intoID
	i.ConsolidationStatus = ConsolidationPartial
	i.touch()
	return nil
}

// ClearConsolidationRef removes the consolidation back-reference. Called by
// the cascade when the consolidated invoice is deleted.
func (i *Invoice) ClearConsolidationRef() {
	i.ConsolidatedIntoID = nil
	i.ConsolidationStatus = ConsolidationNone
	i.touch()
}

// RemoveSnapshot drops the embedded snapshot entry pointing at the given
// source invoice. Called by the cascade when a folded invoice is deleted.
func (i *Invoice) RemoveSnapshot(sourceInvoiceID uuid.UUID) bool {
	if i.Reconnection == nil {
		return false
	}
	kept := i.Reconnection.ConsolidatedInvoices[:0]
	removed := false
	for _, s := range i.Reconnection.ConsolidatedInvoices {
		if s.SourceInvoiceID == sourceInvoiceID {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	if removed {
		i.Reconnection.ConsolidatedInvoices = kept
		i.touch()
	}
	return removed
}

// CanDelete reports whether hard deletion is allowed. Certified fiscal
// documents are refused unless the explicit override is set; they must go
// through the credit-note annulment flow to preserve regulatory integrity.
func (i *Invoice) CanDelete(certifiedOverride bool) error {
	if i.Certification.Certified && !certifiedOverride {
		return shared.ErrCertifiedDocument
	}
	return nil
}

// MarkCertified records a successful FEL certification
func (i *Invoice) MarkCertified(externalID, authorizationCode string, at time.Time) {
	i.Certification.Certified = true
	i.Certification.ExternalID = externalID
	i.Certification.AuthorizationCode = authorizationCode
	i.Certification.CertifiedAt = &at
	i.Certification.LastError = ""
	i.touch()
}

// RecordCertificationFailure records a failed FEL attempt for later retry
func (i *Invoice) RecordCertificationFailure(errMsg string) {
	i.Certification.LastError = errMsg
	i.Certification.FailedAttempts++
	i.touch()
}

func (i *Invoice) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
