package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var reconnectionTestFee = decimal.NewFromInt(125)

func suspendedClient(t *testing.T) *registry.Client {
	client, err := registry.NewClient("Pedro", "Ramirez", "3012456789012", "lot-0107", "107-A", ZoneForTest())
	require.NoError(t, err)
	require.NoError(t, client.Suspend())
	return client
}

// ZoneForTest returns a valid project zone for fixtures
func ZoneForTest() registry.ProjectZone {
	return registry.ZoneCabanas1
}

// overdueInvoice builds a pending invoice with the given total, due the given
// number of days before asOf
func overdueInvoice(client *registry.Client, number string, total float64, daysOverdue int, asOf time.Time) billing.Invoice {
	due := asOf.AddDate(0, 0, -daysOverdue)
	amount := decimal.NewFromFloat(total)
	return billing.Invoice{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		InvoiceNumber:       number,
		Kind:                billing.DocumentKindInvoice,
		ClientID:            client.ID,
		ClientName:          client.FullName(),
		IssueDate:           due.AddDate(0, -1, 0),
		DueDate:             due,
		PeriodStart:         due.AddDate(0, -2, 0),
		PeriodEnd:           due.AddDate(0, -1, 0),
		Subtotal:            amount,
		Total:               amount,
		Status:              billing.InvoiceStatusPending,
		ConsolidationStatus: billing.ConsolidationNone,
	}
}

func newReconnectionService(repos *testRepos, sequences *MockSequenceRepository) *ReconnectionService {
	numbers := NewNumberGenerator(sequences, repos.invoices, testLogger())
	return NewReconnectionService(repos.scope(), numbers, nil, billing.DefaultMoraPolicy(),
		reconnectionTestFee, 2, testLogger())
}

func TestRequiresReconnection(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("suspended client always requires reconnection", func(t *testing.T) {
		repos := newTestRepos()
		client := suspendedClient(t)
		repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		repos.invoices.On("CountPendingOverdue", ctx, client.ID, asOf).Return(int64(0), nil)

		svc := newReconnectionService(repos, new(MockSequenceRepository))
		required, overdue, err := svc.RequiresReconnection(ctx, client.ID, asOf)
		require.NoError(t, err)
		assert.True(t, required)
		assert.Zero(t, overdue)
	})

	t.Run("active client below threshold does not", func(t *testing.T) {
		repos := newTestRepos()
		client, err := registry.NewClient("Ana", "Perez", "1234567890123", "lot-0001", "1-A", ZoneForTest())
		require.NoError(t, err)
		repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		repos.invoices.On("CountPendingOverdue", ctx, client.ID, asOf).Return(int64(1), nil)

		svc := newReconnectionService(repos, new(MockSequenceRepository))
		required, overdue, err := svc.RequiresReconnection(ctx, client.ID, asOf)
		require.NoError(t, err)
		assert.False(t, required)
		assert.Equal(t, int64(1), overdue)
	})

	t.Run("active client at threshold does", func(t *testing.T) {
		repos := newTestRepos()
		client, err := registry.NewClient("Ana", "Perez", "1234567890123", "lot-0001", "1-A", ZoneForTest())
		require.NoError(t, err)
		repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		repos.invoices.On("CountPendingOverdue", ctx, client.ID, asOf).Return(int64(2), nil)

		svc := newReconnectionService(repos, new(MockSequenceRepository))
		required, _, err := svc.RequiresReconnection(ctx, client.ID, asOf)
		require.NoError(t, err)
		assert.True(t, required)
	})
}

func TestCalculateOptions(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	client := suspendedClient(t)

	repos := newTestRepos()
	pending := []billing.Invoice{
		overdueInvoice(client, "FAC-202605-0010", 100, 40, asOf),
		overdueInvoice(client, "FAC-202606-0011", 150, 40, asOf),
		overdueInvoice(client, "FAC-202607-0012", 200, 40, asOf),
	}
	repos.invoices.On("FindPendingByClient", ctx, client.ID).Return(pending, nil)

	svc := newReconnectionService(repos, new(MockSequenceRepository))
	quote, err := svc.CalculateOptions(ctx, client.ID, asOf)
	require.NoError(t, err)

	// 40 days overdue is one complete month, so each invoice accrues 7%
	assert.True(t, quote.TotalDebt.Equal(decimal.NewFromFloat(481.5)), "total debt %s", quote.TotalDebt)
	assert.True(t, quote.Lines[0].Mora.Equal(decimal.NewFromFloat(7)))
	assert.True(t, quote.Lines[1].Mora.Equal(decimal.NewFromFloat(10.5)))
	assert.True(t, quote.Lines[2].Mora.Equal(decimal.NewFromFloat(14)))

	assert.True(t, quote.Partial.PayNow.Equal(decimal.NewFromFloat(385.2)))
	assert.True(t, quote.Partial.TotalToPay.Equal(decimal.NewFromFloat(510.2)))
	assert.True(t, quote.Partial.RemainingBalance.Equal(decimal.NewFromFloat(96.3)))

	assert.True(t, quote.Total.PayNow.Equal(decimal.NewFromFloat(481.5)))
	assert.True(t, quote.Total.TotalToPay.Equal(decimal.NewFromFloat(606.5)))
	assert.True(t, quote.Total.RemainingBalance.IsZero())
	assert.True(t, quote.Total.LiquidationDiscount.Equal(decimal.NewFromFloat(24.08)))
}

func TestProcessReconnection(t *testing.T) {
	ctx := context.Background()
	processedAt := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*testRepos, *MockSequenceRepository, *registry.Client, []billing.Invoice) {
		repos := newTestRepos()
		sequences := new(MockSequenceRepository)
		client := suspendedClient(t)
		pending := []billing.Invoice{
			overdueInvoice(client, "FAC-202605-0010", 100, 40, processedAt),
			overdueInvoice(client, "FAC-202606-0011", 150, 40, processedAt),
			overdueInvoice(client, "FAC-202607-0012", 200, 40, processedAt),
		}
		repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		repos.invoices.On("FindPendingByClient", ctx, client.ID).Return(pending, nil)
		return repos, sequences, client, pending
	}

	t.Run("partial option consolidates oldest debt first", func(t *testing.T) {
		repos, sequences, client, _ := setup(t)
		sequences.On("Next", ctx, "REC-202608").Return(int64(1), nil)
		repos.invoices.On("ExistsByNumber", ctx, "REC-202608-0001").Return(false, nil)

		var consolidated *billing.Invoice
		repos.invoices.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).
			Run(func(args mock.Arguments) { consolidated = args.Get(1).(*billing.Invoice) }).
			Return(nil)
		repos.invoices.On("Update", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		var payment *billing.Payment
		repos.payments.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).
			Run(func(args mock.Arguments) { payment = args.Get(1).(*billing.Payment) }).
			Return(nil)
		repos.reconnections.On("Save", ctx, mock.AnythingOfType("*billing.Reconnection")).Return(nil)
		repos.clients.On("Update", ctx, client).Return(nil)

		svc := newReconnectionService(repos, sequences)
		result, err := svc.Process(ctx, ProcessReconnectionRequest{
			ClientID:       client.ID,
			Option:         billing.ReconnectionOptionPartial,
			AmountTendered: decimal.NewFromFloat(510.20),
			Method:         billing.PaymentMethodCash,
			Operator:       "ventanilla-1",
			ProcessedAt:    processedAt,
		})
		require.NoError(t, err)

		require.NotNil(t, consolidated)
		assert.Equal(t, "REC-202608-0001", consolidated.InvoiceNumber)
		assert.Equal(t, billing.DocumentKindReconnection, consolidated.Kind)
		assert.Equal(t, billing.InvoiceStatusPaid, consolidated.Status)
		assert.True(t, consolidated.Total.Equal(decimal.NewFromFloat(510.2)))

		require.NotNil(t, consolidated.Reconnection)
		snapshots := consolidated.Reconnection.ConsolidatedInvoices
		require.Len(t, snapshots, 3)
		assert.True(t, snapshots[0].FullyCovered)
		assert.True(t, snapshots[1].FullyCovered)
		assert.False(t, snapshots[2].FullyCovered, "newest invoice is only partially covered")
		assert.True(t, snapshots[2].MoraAtConsolidation.Equal(decimal.NewFromFloat(14)))

		require.NotNil(t, payment)
		assert.True(t, payment.Total.Equal(decimal.NewFromFloat(510.2)))
		assert.True(t, payment.Amounts.ReconnectionFee.Equal(reconnectionTestFee))

		require.NotNil(t, result.Reconnection)
		assert.Equal(t, billing.ReconnectionOptionPartial, result.Reconnection.Option)
		assert.True(t, result.Reconnection.RemainingBalance.Equal(decimal.NewFromFloat(96.3)))
		assert.Len(t, result.Reconnection.SourceInvoiceIDs, 3)

		assert.True(t, client.IsActive(), "service is restored")
		assert.Equal(t, 1, client.ReconnectionCount)
	})

	t.Run("total option covers every invoice in full", func(t *testing.T) {
		repos, sequences, client, _ := setup(t)
		sequences.On("Next", ctx, "REC-202608").Return(int64(2), nil)
		repos.invoices.On("ExistsByNumber", ctx, "REC-202608-0002").Return(false, nil)

		var consolidated *billing.Invoice
		repos.invoices.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).
			Run(func(args mock.Arguments) { consolidated = args.Get(1).(*billing.Invoice) }).
			Return(nil)
		repos.invoices.On("Update", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		repos.payments.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
		repos.reconnections.On("Save", ctx, mock.AnythingOfType("*billing.Reconnection")).Return(nil)
		repos.clients.On("Update", ctx, client).Return(nil)

		svc := newReconnectionService(repos, sequences)
		result, err := svc.Process(ctx, ProcessReconnectionRequest{
			ClientID:       client.ID,
			Option:         billing.ReconnectionOptionTotal,
			AmountTendered: decimal.NewFromFloat(606.50),
			Method:         billing.PaymentMethodTransfer,
			Reference:      "TX-991",
			Operator:       "ventanilla-2",
			ProcessedAt:    processedAt,
		})
		require.NoError(t, err)

		for _, snapshot := range consolidated.Reconnection.ConsolidatedInvoices {
			assert.True(t, snapshot.FullyCovered)
		}
		assert.True(t, result.Reconnection.RemainingBalance.IsZero())
	})

	t.Run("stale amount is rejected before anything is written", func(t *testing.T) {
		repos, sequences, client, _ := setup(t)
		sequences.On("Next", ctx, "REC-202608").Return(int64(3), nil)
		repos.invoices.On("ExistsByNumber", ctx, "REC-202608-0003").Return(false, nil)

		svc := newReconnectionService(repos, sequences)
		_, err := svc.Process(ctx, ProcessReconnectionRequest{
			ClientID:       client.ID,
			Option:         billing.ReconnectionOptionPartial,
			AmountTendered: decimal.NewFromFloat(500.00), // quote moved since this was shown
			Method:         billing.PaymentMethodCash,
			ProcessedAt:    processedAt,
		})
		require.ErrorIs(t, err, shared.ErrStaleQuote)
		repos.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		repos.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		repos.clients.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("emergencia is not a quotable option", func(t *testing.T) {
		repos, sequences, client, _ := setup(t)
		sequences.On("Next", ctx, "REC-202608").Return(int64(4), nil)
		repos.invoices.On("ExistsByNumber", ctx, "REC-202608-0004").Return(false, nil)

		svc := newReconnectionService(repos, sequences)
		_, err := svc.Process(ctx, ProcessReconnectionRequest{
			ClientID:       client.ID,
			Option:         billing.ReconnectionOptionEmergency,
			AmountTendered: decimal.NewFromFloat(125),
			Method:         billing.PaymentMethodCash,
			ProcessedAt:    processedAt,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parcial or total")
	})

	t.Run("mid-flight failure aborts the whole unit", func(t *testing.T) {
		repos, sequences, client, _ := setup(t)
		sequences.On("Next", ctx, "REC-202608").Return(int64(5), nil)
		repos.invoices.On("ExistsByNumber", ctx, "REC-202608-0005").Return(false, nil)
		repos.invoices.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		repos.invoices.On("Update", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		repos.payments.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).
			Return(errors.New("disk full"))

		svc := newReconnectionService(repos, sequences)
		_, err := svc.Process(ctx, ProcessReconnectionRequest{
			ClientID:       client.ID,
			Option:         billing.ReconnectionOptionPartial,
			AmountTendered: decimal.NewFromFloat(510.20),
			Method:         billing.PaymentMethodCash,
			ProcessedAt:    processedAt,
		})
		require.Error(t, err)
		repos.reconnections.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		repos.clients.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("no pending debt", func(t *testing.T) {
		repos := newTestRepos()
		sequences := new(MockSequenceRepository)
		client := suspendedClient(t)
		repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		repos.invoices.On("FindPendingByClient", ctx, client.ID).Return([]billing.Invoice{}, nil)
		sequences.On("Next", ctx, "REC-202608").Return(int64(6), nil)
		repos.invoices.On("ExistsByNumber", ctx, "REC-202608-0006").Return(false, nil)

		svc := newReconnectionService(repos, sequences)
		_, err := svc.Process(ctx, ProcessReconnectionRequest{
			ClientID:       client.ID,
			Option:         billing.ReconnectionOptionTotal,
			AmountTendered: decimal.NewFromFloat(125),
			Method:         billing.PaymentMethodCash,
			ProcessedAt:    processedAt,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no pending invoices")
	})
}
