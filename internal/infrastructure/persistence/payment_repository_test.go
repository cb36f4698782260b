package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCashPayment(t *testing.T, invoiceID, clientID uuid.UUID) *billing.Payment {
	t.Helper()
	payment, err := billing.NewPayment(
		invoiceID,
		clientID,
		billing.PaymentAmounts{Original: decimal.NewFromInt(100), Mora: decimal.NewFromInt(7)},
		decimal.NewFromInt(107),
		billing.PaymentMethodCash,
		"",
		nil,
		"operador1",
		time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return payment
}

func TestGormPaymentRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	t.Run("round-trips a cash payment with amount components", func(t *testing.T) {
		payment := newCashPayment(t, uuid.New(), uuid.New())
		require.NoError(t, repo.Save(ctx, payment))

		found, err := repo.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PaymentStatusProcessed, found.Status)
		assert.True(t, found.Amounts.Original.Equal(decimal.NewFromInt(100)))
		assert.True(t, found.Amounts.Mora.Equal(decimal.NewFromInt(7)))
		assert.True(t, found.Total.Equal(decimal.NewFromInt(107)))
		assert.Nil(t, found.Check)
	})

	t.Run("round-trips a check payment with check detail", func(t *testing.T) {
		payment, err := billing.NewPayment(
			uuid.New(),
			uuid.New(),
			billing.PaymentAmounts{Original: decimal.NewFromInt(50)},
			decimal.NewFromInt(50),
			billing.PaymentMethodCheck,
			"",
			&billing.CheckDetail{Bank: "Banrural", CheckNumber: "000451"},
			"operador1",
			time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, payment))

		found, err := repo.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PaymentStatusPendingConfirmation, found.Status)
		require.NotNil(t, found.Check)
		assert.Equal(t, "Banrural", found.Check.Bank)
		assert.Equal(t, "000451", found.Check.CheckNumber)
	})
}

func TestGormPaymentRepository_FindActiveByInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()
	invoiceID := uuid.New()

	t.Run("returns nil when the invoice has no payments", func(t *testing.T) {
		found, err := repo.FindActiveByInvoice(ctx, invoiceID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("ignores cancelled payments", func(t *testing.T) {
		cancelled := newCashPayment(t, invoiceID, uuid.New())
		require.NoError(t, cancelled.Cancel("cashier error"))
		require.NoError(t, repo.Save(ctx, cancelled))

		found, err := repo.FindActiveByInvoice(ctx, invoiceID)
		require.NoError(t, err)
		assert.Nil(t, found)

		active := newCashPayment(t, invoiceID, uuid.New())
		require.NoError(t, repo.Save(ctx, active))

		found, err = repo.FindActiveByInvoice(ctx, invoiceID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, active.ID, found.ID)
	})
}

func TestGormPaymentRepository_ActiveUniquePerInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()
	invoiceID := uuid.New()

	first := newCashPayment(t, invoiceID, uuid.New())
	require.NoError(t, repo.Save(ctx, first))

	t.Run("second active payment for the invoice is rejected", func(t *testing.T) {
		duplicate := newCashPayment(t, invoiceID, uuid.New())
		assert.Error(t, repo.Save(ctx, duplicate))
	})

	t.Run("a new payment is accepted once the first is cancelled", func(t *testing.T) {
		require.NoError(t, first.Cancel("cashier error"))
		require.NoError(t, repo.Update(ctx, first))

		replacement := newCashPayment(t, invoiceID, uuid.New())
		require.NoError(t, repo.Save(ctx, replacement))

		found, err := repo.FindActiveByInvoice(ctx, invoiceID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, replacement.ID, found.ID)
	})
}

func TestGormPaymentRepository_DeleteByInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()
	invoiceID := uuid.New()

	first := newCashPayment(t, invoiceID, uuid.New())
	require.NoError(t, first.Cancel("cashier error"))
	second := newCashPayment(t, invoiceID, uuid.New())
	other := newCashPayment(t, uuid.New(), uuid.New())
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, other))

	require.NoError(t, repo.DeleteByInvoice(ctx, invoiceID))

	remaining, err := repo.FindByInvoice(ctx, invoiceID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	kept, err := repo.FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, kept.ID)
}
