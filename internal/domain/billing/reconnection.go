package billing

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconnectionOption identifies the payoff option chosen by the client
type ReconnectionOption string

const (
	ReconnectionOptionPartial   ReconnectionOption = "parcial"    // 80% of debt
	ReconnectionOptionTotal     ReconnectionOption = "total"      // 100% of debt
	ReconnectionOptionEmergency ReconnectionOption = "emergencia" // operator-registered, outside the quote flow
)

// IsValid checks if the option is a valid ReconnectionOption
func (o ReconnectionOption) IsValid() bool {
	switch o {
	case ReconnectionOptionPartial, ReconnectionOptionTotal, ReconnectionOptionEmergency:
		return true
	}
	return false
}

// String returns the string representation of ReconnectionOption
func (o ReconnectionOption) String() string {
	return string(o)
}

// partialPayoffRate is the debt fraction due under the partial option
var partialPayoffRate = decimal.NewFromFloat(0.80)

// liquidationDiscountRate is the optional discount shown for full payoff
var liquidationDiscountRate = decimal.NewFromFloat(0.05)

// DebtLine is one pending invoice priced with its accrued mora as of the
// quote date, oldest first
type DebtLine struct {
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	MonthLabel     string          `json:"month_label"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Mora           decimal.Decimal `json:"mora"`
	Subtotal       decimal.Decimal `json:"subtotal"` // original + mora
	FullyCovered   bool            `json:"fully_covered"`
	Allocated      decimal.Decimal `json:"allocated"`
}

// OptionQuote is the amount breakdown for one payoff option
type OptionQuote struct {
	Option              ReconnectionOption `json:"option"`
	PayNow              decimal.Decimal    `json:"pay_now"`
	TotalToPay          decimal.Decimal    `json:"total_to_pay"` // pay now + reconnection fee
	RemainingBalance    decimal.Decimal    `json:"remaining_balance"`
	LiquidationDiscount decimal.Decimal    `json:"liquidation_discount,omitempty"` // total option only, informational
}

// ReconnectionQuote aggregates a client's debt and the payoff options.
// Quotes are cheap and idempotent: mora is recomputed on every call, so a
// rejected process attempt can always re-quote and retry.
type ReconnectionQuote struct {
	ClientID        uuid.UUID       `json:"client_id"`
	AsOf            time.Time       `json:"as_of"`
	Lines           []DebtLine      `json:"lines"` // oldest first
	TotalDebt       decimal.Decimal `json:"total_debt"`
	ReconnectionFee decimal.Decimal `json:"reconnection_fee"`
	Partial         OptionQuote     `json:"partial"`
	Total           OptionQuote     `json:"total"`
}

// OptionFor returns the quote for the requested option
func (q *ReconnectionQuote) OptionFor(option ReconnectionOption) (OptionQuote, error) {
	switch option {
	case ReconnectionOptionPartial:
		return q.Partial, nil
	case ReconnectionOptionTotal:
		return q.Total, nil
	default:
		return OptionQuote{}, shared.NewDomainError("INVALID_OPTION", "Option must be parcial or total")
	}
}

// BuildQuote prices a client's pending invoices (given oldest first) and
// produces the partial and total payoff options. The FIFO line coverage in
// the result is informational; nothing is mutated at quote time.
func BuildQuote(clientID uuid.UUID, invoices []*Invoice, policy MoraPolicy, reconnectionFee decimal.Decimal, asOf time.Time) (*ReconnectionQuote, error) {
	if len(invoices) == 0 {
		return nil, shared.NewDomainError("NO_PENDING_DEBT", "Client has no pending invoices")
	}
	if reconnectionFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Reconnection fee cannot be negative")
	}

	lines := make([]DebtLine, 0, len(invoices))
	totalDebt := decimal.Zero
	for _, inv := range invoices {
		if inv.Status != InvoiceStatusPending {
			return nil, shared.NewDomainError("INVALID_STATE", "Quote input must contain only pending invoices")
		}
		mora, err := policy.Assess(inv, asOf)
		if err != nil {
			return nil, err
		}
		subtotal := inv.Total.Add(mora.Fee)
		lines = append(lines, DebtLine{
			InvoiceID:      inv.ID,
			InvoiceNumber:  inv.InvoiceNumber,
			MonthLabel:     inv.MonthLabel(),
			PeriodStart:    inv.PeriodStart,
			PeriodEnd:      inv.PeriodEnd,
			OriginalAmount: inv.Total,
			Mora:           mora.Fee,
			Subtotal:       subtotal,
		})
		totalDebt = totalDebt.Add(subtotal)
	}

	payNowPartial := totalDebt.Mul(partialPayoffRate).Round(2)
	partial := OptionQuote{
		Option:           ReconnectionOptionPartial,
		PayNow:           payNowPartial,
		TotalToPay:       payNowPartial.Add(reconnectionFee),
		RemainingBalance: totalDebt.Sub(payNowPartial),
	}
	total := OptionQuote{
		Option:              ReconnectionOptionTotal,
		PayNow:              totalDebt,
		TotalToPay:          totalDebt.Add(reconnectionFee),
		RemainingBalance:    decimal.Zero,
		LiquidationDiscount: totalDebt.Mul(liquidationDiscountRate).Round(2),
	}

	quote := &ReconnectionQuote{
		ClientID:        clientID,
		AsOf:            asOf,
		Lines:           AllocateOldestFirst(lines, payNowPartial),
		TotalDebt:       totalDebt,
		ReconnectionFee: reconnectionFee,
		Partial:         partial,
		Total:           total,
	}
	return quote, nil
}

// AllocateOldestFirst distributes the available amount across debt lines in
// order. A line whose subtotal fits entirely within the remaining amount is
// fully covered; the first line that cannot be fully covered receives the
// remainder and allocation stops. A line whose subtotal exactly exhausts the
// remainder counts as fully covered.
func AllocateOldestFirst(lines []DebtLine, available decimal.Decimal) []DebtLine {
	remaining := available
	out := make([]DebtLine, len(lines))
	copy(out, lines)
	for idx := range out {
		if !remaining.IsPositive() {
			out[idx].FullyCovered = false
			out[idx].Allocated = decimal.Zero
			continue
		}
		if out[idx].Subtotal.LessThanOrEqual(remaining) {
			out[idx].FullyCovered = true
			out[idx].Allocated = out[idx].Subtotal
			remaining = remaining.Sub(out[idx].Subtotal)
			continue
		}
		out[idx].FullyCovered = false
		out[idx].Allocated = remaining
		remaining = decimal.Zero
	}
	return out
}

// Reconnection is the append-only audit record of one reconnection
// transaction. Immutable after creation.
type Reconnection struct {
	shared.BaseAggregateRoot
	ClientID              uuid.UUID
	Option                ReconnectionOption
	TotalDebt             decimal.Decimal
	ReconnectionFee       decimal.Decimal
	AmountPaid            decimal.Decimal
	RemainingBalance      decimal.Decimal
	ConsolidatedInvoiceID uuid.UUID
	SourceInvoiceIDs      []uuid.UUID
	Method                PaymentMethod
	Operator              string
	ProcessedAt           time.Time
}

// NewReconnection creates an immutable reconnection record
func NewReconnection(clientID uuid.UUID, option ReconnectionOption, totalDebt, reconnectionFee, amountPaid, remainingBalance decimal.Decimal, consolidatedInvoiceID uuid.UUID, sourceInvoiceIDs []uuid.UUID, method PaymentMethod, operator string, processedAt time.Time) (*Reconnection, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !option.IsValid() {
		return nil, shared.NewDomainError("INVALID_OPTION", "Unknown reconnection option")
	}
	if consolidatedInvoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Consolidated invoice ID cannot be empty")
	}
	if len(sourceInvoiceIDs) == 0 {
		return nil, shared.NewDomainError("EMPTY_CONSOLIDATION", "A reconnection must reference at least one source invoice")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	return &Reconnection{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		ClientID:              clientID,
		Option:                option,
		TotalDebt:             totalDebt,
		ReconnectionFee:       reconnectionFee,
		AmountPaid:            amountPaid,
		RemainingBalance:      remainingBalance,
		ConsolidatedInvoiceID: consolidatedInvoiceID,
		SourceInvoiceIDs:      sourceInvoiceIDs,
		Method:                method,
		Operator:              operator,
		ProcessedAt:           processedAt,
	}, nil
}
