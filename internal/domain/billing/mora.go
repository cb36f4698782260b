package billing

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MoraPolicy holds the late-fee accrual constants
type MoraPolicy struct {
	MonthlyRate decimal.Decimal // e.g. 0.07 for 7% per complete month
}

// DefaultMoraPolicy returns the standard 7% monthly late-fee policy
func DefaultMoraPolicy() MoraPolicy {
	return MoraPolicy{MonthlyRate: decimal.NewFromFloat(0.07)}
}

// Validate checks the policy constants are usable
func (p MoraPolicy) Validate() error {
	if p.MonthlyRate.IsNegative() {
		return shared.NewDomainError("INVALID_MORA_RATE", "Monthly rate cannot be negative")
	}
	return nil
}

// MoraAssessment is the result of a late-fee calculation as of a given date
type MoraAssessment struct {
	DaysOverdue    int             `json:"days_overdue"`
	MonthsComplete int             `json:"months_complete"`
	Fee            decimal.Decimal `json:"fee"`
}

// Assess computes the late fee accrued by an invoice as of the given date.
// Deterministic, idempotent and stateless: the fee is always recomputed from
// (total, due date, asOf), never read from a stored running balance, so
// concurrent callers need no coordination. Paid and voided invoices, and
// invoices not yet past due, accrue nothing.
func (p MoraPolicy) Assess(invoice *Invoice, asOf time.Time) (MoraAssessment, error) {
	if err := p.Validate(); err != nil {
		return MoraAssessment{}, err
	}
	if invoice == nil {
		return MoraAssessment{}, shared.NewDomainError("INVALID_INVOICE", "Invoice cannot be nil")
	}

	if invoice.Status == InvoiceStatusPaid || invoice.Status == InvoiceStatusVoided {
		return MoraAssessment{Fee: decimal.Zero}, nil
	}
	if !asOf.After(invoice.DueDate) {
		return MoraAssessment{Fee: decimal.Zero}, nil
	}

	daysOverdue := int(asOf.Sub(invoice.DueDate).Hours() / 24)
	monthsComplete := daysOverdue / 30
	fee := invoice.Total.
		Mul(p.MonthlyRate).
		Mul(decimal.NewFromInt(int64(monthsComplete))).
		Round(2)

	return MoraAssessment{
		DaysOverdue:    daysOverdue,
		MonthsComplete: monthsComplete,
		Fee:            fee,
	}, nil
}
