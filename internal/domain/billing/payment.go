package billing

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle status of a payment
type PaymentStatus string

const (
	PaymentStatusProcessed           PaymentStatus = "procesado"
	PaymentStatusCancelled           PaymentStatus = "cancelado"
	PaymentStatusPendingConfirmation PaymentStatus = "pendiente_confirmacion" // checks awaiting clearance
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusProcessed, PaymentStatusCancelled, PaymentStatusPendingConfirmation:
		return true
	}
	return false
}

// IsActive returns true for payments that count against the
// one-active-payment-per-invoice rule
func (s PaymentStatus) IsActive() bool {
	return s != PaymentStatusCancelled
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// amountTolerance is the acceptable drift between the component sum and the
// total paid amount
var amountTolerance = decimal.NewFromFloat(0.01)

// PaymentAmounts splits the money received into its components.
// The components must sum to the total within tolerance.
type PaymentAmounts struct {
	Original        decimal.Decimal `json:"original"`
	Mora            decimal.Decimal `json:"mora"`
	ReconnectionFee decimal.Decimal `json:"reconnection_fee"`
}

// Sum returns the total of all components
func (a PaymentAmounts) Sum() decimal.Decimal {
	return a.Original.Add(a.Mora).Add(a.ReconnectionFee)
}

// CheckDetail carries the check-specific fields for check payments
type CheckDetail struct {
	Bank        string `json:"bank"`
	CheckNumber string `json:"check_number"`
}

// Payment records money received against exactly one invoice
type Payment struct {
	shared.BaseAggregateRoot
	InvoiceID     uuid.UUID
	ClientID      uuid.UUID
	Amounts       PaymentAmounts
	Total         decimal.Decimal
	Method        PaymentMethod
	Reference     string
	Check         *CheckDetail // set only for check payments
	Status        PaymentStatus
	ReceivedBy    string
	PaidAt        time.Time
	CancelledAt   *time.Time
	CancelReason  string
	Certification Certification
}

// NewPayment creates a payment after validating the component split
func NewPayment(invoiceID, clientID uuid.UUID, amounts PaymentAmounts, total decimal.Decimal, method PaymentMethod, reference string, check *CheckDetail, receivedBy string, paidAt time.Time) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment total must be positive")
	}
	if amounts.Original.IsNegative() || amounts.Mora.IsNegative() || amounts.ReconnectionFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment components cannot be negative")
	}
	if amounts.Sum().Sub(total).Abs().GreaterThan(amountTolerance) {
		return nil, shared.NewDomainError("AMOUNT_MISMATCH", "Payment components do not sum to the total paid")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if method == PaymentMethodCheck && (check == nil || check.CheckNumber == "") {
		return nil, shared.NewDomainError("MISSING_CHECK_DETAIL", "Check payments require bank and check number")
	}
	if method != PaymentMethodCheck && check != nil {
		return nil, shared.NewDomainError("UNEXPECTED_CHECK_DETAIL", "Check detail is only valid for check payments")
	}

	status := PaymentStatusProcessed
	if method == PaymentMethodCheck {
		status = PaymentStatusPendingConfirmation
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceID:         invoiceID,
		ClientID:          clientID,
		Amounts:           amounts,
		Total:             total,
		Method:            method,
		Reference:         reference,
		Check:             check,
		Status:            status,
		ReceivedBy:        receivedBy,
		PaidAt:            paidAt,
	}, nil
}

// Confirm moves a check payment from pending confirmation to processed
func (p *Payment) Confirm() error {
	if p.Status != PaymentStatusPendingConfirmation {
		return shared.NewDomainError("INVALID_STATE", "Only payments pending confirmation can be confirmed")
	}
	p.Status = PaymentStatusProcessed
	p.touch()
	return nil
}

// Cancel deactivates the payment. The caller is responsible for rolling the
// invoice back to pending in the same transaction.
func (p *Payment) Cancel(reason string) error {
	if p.Status == PaymentStatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Payment is already cancelled")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason cannot be empty")
	}
	now := time.Now()
	p.Status = PaymentStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.touch()
	return nil
}

// IsActive returns true if the payment counts against the invoice
func (p *Payment) IsActive() bool {
	return p.Status.IsActive()
}

// MarkCertified records a successful FEL certification of the payment receipt
func (p *Payment) MarkCertified(externalID, authorizationCode string, at time.Time) {
	p.Certification.Certified = true
	p.Certification.ExternalID = externalID
	p.Certification.AuthorizationCode = authorizationCode
	p.Certification.CertifiedAt = &at
	p.Certification.LastError = ""
	p.touch()
}

// RecordCertificationFailure records a failed FEL attempt for later retry
func (p *Payment) RecordCertificationFailure(errMsg string) {
	p.Certification.LastError = errMsg
	p.Certification.FailedAttempts++
	p.touch()
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
