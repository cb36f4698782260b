package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	t.Run("round-trips a normal invoice", func(t *testing.T) {
		clientID := uuid.New()
		issueDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
		inv := newPendingInvoice(t, clientID, "FAC-202608-0001", 50, issueDate)

		require.NoError(t, repo.Save(ctx, inv))

		found, err := repo.FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, inv.ID, found.ID)
		assert.Equal(t, "FAC-202608-0001", found.InvoiceNumber)
		assert.Equal(t, billing.DocumentKindInvoice, found.Kind)
		assert.Equal(t, billing.InvoiceStatusPending, found.Status)
		assert.True(t, found.Total.Equal(decimal.NewFromInt(50)))
		require.NotNil(t, found.ReadingID)
		assert.Equal(t, *inv.ReadingID, *found.ReadingID)
	})

	t.Run("round-trips a reconnection invoice with snapshots", func(t *testing.T) {
		clientID := uuid.New()
		issueDate := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
		sourceID := uuid.New()
		snapshots := []billing.ConsolidatedInvoiceSnapshot{
			{
				SourceInvoiceID:     sourceID,
				SourceNumber:        "FAC-202605-0003",
				MonthLabel:          "2026-05",
				PeriodStart:         time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
				PeriodEnd:           time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
				OriginalAmount:      decimal.NewFromInt(100),
				MoraAtConsolidation: decimal.NewFromInt(7),
				Subtotal:            decimal.NewFromInt(107),
				FullyCovered:        true,
			},
		}
		inv, err := billing.NewReconnectionInvoice(
			"REC-202608-0001",
			clientID,
			"Juan Morales",
			decimal.NewFromFloat(385.20),
			decimal.NewFromInt(125),
			snapshots,
			issueDate,
			issueDate.AddDate(0, 0, 1),
		)
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, inv))

		found, err := repo.FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.DocumentKindReconnection, found.Kind)
		require.NotNil(t, found.Reconnection)
		require.Len(t, found.Reconnection.ConsolidatedInvoices, 1)
		snap := found.Reconnection.ConsolidatedInvoices[0]
		assert.Equal(t, sourceID, snap.SourceInvoiceID)
		assert.Equal(t, "FAC-202605-0003", snap.SourceNumber)
		assert.True(t, snap.FullyCovered)
		assert.True(t, found.Reconnection.ReconnectionFee.Equal(decimal.NewFromInt(125)))
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		assert.Nil(t, found)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormInvoiceRepository_FindPendingByClient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	clientID := uuid.New()

	// Saved newest first on purpose; the query must return oldest first
	may := newPendingInvoice(t, clientID, "FAC-202605-0001", 100, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC))
	june := newPendingInvoice(t, clientID, "FAC-202606-0001", 150, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	july := newPendingInvoice(t, clientID, "FAC-202607-0001", 200, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, july))
	require.NoError(t, repo.Save(ctx, may))
	require.NoError(t, repo.Save(ctx, june))

	paid := newPendingInvoice(t, clientID, "FAC-202604-0001", 50, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, paid.Pay(billing.PaymentMethodCash, "", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), time.Now()))
	require.NoError(t, repo.Save(ctx, paid))

	pending, err := repo.FindPendingByClient(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "FAC-202605-0001", pending[0].InvoiceNumber)
	assert.Equal(t, "FAC-202606-0001", pending[1].InvoiceNumber)
	assert.Equal(t, "FAC-202607-0001", pending[2].InvoiceNumber)
}

func TestGormInvoiceRepository_CountPendingOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	clientID := uuid.New()

	overdue := newPendingInvoice(t, clientID, "FAC-202605-0002", 100, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC))
	current := newPendingInvoice(t, clientID, "FAC-202608-0002", 100, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, overdue))
	require.NoError(t, repo.Save(ctx, current))

	count, err := repo.CountPendingOverdue(ctx, clientID, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormInvoiceRepository_FindConsolidatedInto(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	clientID := uuid.New()
	consolidatedID := uuid.New()

	source := newPendingInvoice(t, clientID, "FAC-202605-0004", 100, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, source.MarkConsolidated(consolidatedID, billing.PaymentMethodCash, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.Save(ctx, source))

	unrelated := newPendingInvoice(t, clientID, "FAC-202606-0004", 100, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, unrelated))

	sources, err := repo.FindConsolidatedInto(ctx, consolidatedID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, source.ID, sources[0].ID)
	assert.Equal(t, billing.ConsolidationFull, sources[0].ConsolidationStatus)
}

func TestGormInvoiceRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	t.Run("persists state transitions", func(t *testing.T) {
		inv := newPendingInvoice(t, uuid.New(), "FAC-202608-0005", 50, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Save(ctx, inv))

		paidAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
		require.NoError(t, inv.Pay(billing.PaymentMethodCash, "", paidAt, time.Now()))
		require.NoError(t, repo.Update(ctx, inv))

		found, err := repo.FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, found.Status)
		assert.Equal(t, billing.PaymentMethodCash, found.PaymentMethod)
		require.NotNil(t, found.PaidAt)
	})

	t.Run("rejects concurrent modification", func(t *testing.T) {
		inv := newPendingInvoice(t, uuid.New(), "FAC-202608-0006", 50, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Save(ctx, inv))

		stale, err := repo.FindByID(ctx, inv.ID)
		require.NoError(t, err)

		require.NoError(t, inv.Void("duplicate capture"))
		require.NoError(t, repo.Update(ctx, inv))

		require.NoError(t, stale.Void("operator error"))
		err = repo.Update(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormInvoiceRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newPendingInvoice(t, uuid.New(), "FAC-202608-0007", 50, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, inv))

	require.NoError(t, repo.Delete(ctx, inv.ID))

	_, err := repo.FindByID(ctx, inv.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, inv.ID), shared.ErrNotFound)
}
