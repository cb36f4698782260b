package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// overdueInvoice builds a pending invoice with the given total, overdue by
// the given number of days as of asOf
func overdueInvoice(t *testing.T, number string, total decimal.Decimal, daysOverdue int, asOf time.Time) *Invoice {
	t.Helper()
	due := asOf.AddDate(0, 0, -daysOverdue)
	issue := due.AddDate(0, 0, -15)
	breakdown := TariffBreakdown{BaseFee: total, Subtotal: total, Total: total}
	inv, err := NewInvoice(number, uuid.New(), "Cliente Moroso", uuid.New(), breakdown,
		decimal.NewFromInt(20000), issue, due, issue.AddDate(0, -1, 0), issue)
	require.NoError(t, err)
	return inv
}

func TestBuildQuote(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	fee := decimal.NewFromInt(125)

	t.Run("spec scenario: three invoices 40 days overdue", func(t *testing.T) {
		invoices := []*Invoice{
			overdueInvoice(t, "FAC-202605-0001", decimal.NewFromInt(100), 40, asOf),
			overdueInvoice(t, "FAC-202606-0001", decimal.NewFromInt(150), 40, asOf),
			overdueInvoice(t, "FAC-202607-0001", decimal.NewFromInt(200), 40, asOf),
		}

		quote, err := BuildQuote(clientID, invoices, DefaultMoraPolicy(), fee, asOf)
		require.NoError(t, err)

		// Mora at 7% for one complete month each: Q7, Q10.50, Q14
		assert.True(t, quote.Lines[0].Mora.Equal(decimal.NewFromInt(7)))
		assert.True(t, quote.Lines[1].Mora.Equal(decimal.NewFromFloat(10.5)))
		assert.True(t, quote.Lines[2].Mora.Equal(decimal.NewFromInt(14)))
		assert.True(t, quote.TotalDebt.Equal(decimal.NewFromFloat(481.5)), "total debt = %s", quote.TotalDebt)

		// Partial: 80% of 481.50 = 385.20, plus the Q125 fee
		assert.True(t, quote.Partial.PayNow.Equal(decimal.NewFromFloat(385.2)), "pay now = %s", quote.Partial.PayNow)
		assert.True(t, quote.Partial.TotalToPay.Equal(decimal.NewFromFloat(510.2)), "total to pay = %s", quote.Partial.TotalToPay)
		assert.True(t, quote.Partial.RemainingBalance.Equal(decimal.NewFromFloat(96.3)), "remaining = %s", quote.Partial.RemainingBalance)

		// Total: full debt plus fee, nothing remaining
		assert.True(t, quote.Total.TotalToPay.Equal(decimal.NewFromFloat(606.5)))
		assert.True(t, quote.Total.RemainingBalance.IsZero())
		assert.True(t, quote.Total.LiquidationDiscount.Equal(decimal.NewFromFloat(24.08)), "discount = %s", quote.Total.LiquidationDiscount)

		// FIFO coverage of the partial option: invoice 1 (107) and invoice 2
		// (160.50) fully covered, invoice 3 partially with 117.70 of 214
		assert.True(t, quote.Lines[0].FullyCovered)
		assert.True(t, quote.Lines[1].FullyCovered)
		assert.False(t, quote.Lines[2].FullyCovered)
		assert.True(t, quote.Lines[2].Allocated.Equal(decimal.NewFromFloat(117.7)), "allocated = %s", quote.Lines[2].Allocated)
	})

	t.Run("no pending invoices rejected", func(t *testing.T) {
		_, err := BuildQuote(clientID, nil, DefaultMoraPolicy(), fee, asOf)
		require.Error(t, err)
	})

	t.Run("non-pending invoice in input rejected", func(t *testing.T) {
		inv := overdueInvoice(t, "FAC-202605-0002", decimal.NewFromInt(100), 40, asOf)
		require.NoError(t, inv.Pay(PaymentMethodCash, "r", asOf, asOf))
		_, err := BuildQuote(clientID, []*Invoice{inv}, DefaultMoraPolicy(), fee, asOf)
		require.Error(t, err)
	})

	t.Run("quotes are idempotent", func(t *testing.T) {
		invoices := []*Invoice{
			overdueInvoice(t, "FAC-202605-0003", decimal.NewFromInt(100), 40, asOf),
			overdueInvoice(t, "FAC-202606-0003", decimal.NewFromInt(150), 40, asOf),
		}
		first, err := BuildQuote(clientID, invoices, DefaultMoraPolicy(), fee, asOf)
		require.NoError(t, err)
		second, err := BuildQuote(clientID, invoices, DefaultMoraPolicy(), fee, asOf)
		require.NoError(t, err)
		assert.True(t, first.TotalDebt.Equal(second.TotalDebt))
		assert.True(t, first.Partial.TotalToPay.Equal(second.Partial.TotalToPay))
	})
}

func TestAllocateOldestFirst(t *testing.T) {
	line := func(subtotal float64) DebtLine {
		return DebtLine{InvoiceID: uuid.New(), Subtotal: decimal.NewFromFloat(subtotal)}
	}

	t.Run("exact boundary counts as fully covered", func(t *testing.T) {
		lines := AllocateOldestFirst([]DebtLine{line(100), line(50)}, decimal.NewFromInt(100))
		assert.True(t, lines[0].FullyCovered)
		assert.False(t, lines[1].FullyCovered)
		assert.True(t, lines[1].Allocated.IsZero())
	})

	t.Run("allocation never exceeds available", func(t *testing.T) {
		amounts := []float64{107, 160.50, 214}
		for available := 0.0; available <= 500; available += 13.07 {
			lines := AllocateOldestFirst([]DebtLine{line(amounts[0]), line(amounts[1]), line(amounts[2])},
				decimal.NewFromFloat(available))
			sum := decimal.Zero
			for _, l := range lines {
				sum = sum.Add(l.Allocated)
				assert.True(t, l.Allocated.LessThanOrEqual(l.Subtotal), "line allocated more than its subtotal")
			}
			assert.True(t, sum.LessThanOrEqual(decimal.NewFromFloat(available).Add(decimal.NewFromFloat(0.001))),
				"allocated %s of available %f", sum, available)
		}
	})

	t.Run("allocation stops at first shortfall", func(t *testing.T) {
		lines := AllocateOldestFirst([]DebtLine{line(100), line(100), line(100)}, decimal.NewFromInt(150))
		assert.True(t, lines[0].FullyCovered)
		assert.False(t, lines[1].FullyCovered)
		assert.True(t, lines[1].Allocated.Equal(decimal.NewFromInt(50)))
		assert.True(t, lines[2].Allocated.IsZero())
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		in := []DebtLine{line(100)}
		_ = AllocateOldestFirst(in, decimal.NewFromInt(100))
		assert.False(t, in[0].FullyCovered)
	})
}

func TestNewReconnection(t *testing.T) {
	now := time.Now()

	t.Run("successful creation", func(t *testing.T) {
		rec, err := NewReconnection(uuid.New(), ReconnectionOptionPartial,
			decimal.NewFromFloat(481.5), decimal.NewFromInt(125), decimal.NewFromFloat(510.2),
			decimal.NewFromFloat(96.3), uuid.New(), []uuid.UUID{uuid.New(), uuid.New()},
			PaymentMethodCash, "operador1", now)
		require.NoError(t, err)
		assert.Equal(t, ReconnectionOptionPartial, rec.Option)
		assert.Len(t, rec.SourceInvoiceIDs, 2)
	})

	t.Run("empty source list rejected", func(t *testing.T) {
		_, err := NewReconnection(uuid.New(), ReconnectionOptionTotal,
			decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
			uuid.New(), nil, PaymentMethodCash, "op", now)
		require.Error(t, err)
	})

	t.Run("invalid option rejected", func(t *testing.T) {
		_, err := NewReconnection(uuid.New(), ReconnectionOption("gratis"),
			decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
			uuid.New(), []uuid.UUID{uuid.New()}, PaymentMethodCash, "op", now)
		require.Error(t, err)
	})
}
