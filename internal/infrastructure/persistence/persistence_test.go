package persistence

import (
	"testing"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.ClientModel{},
		&models.ReadingModel{},
		&models.InvoiceModel{},
		&models.PaymentModel{},
		&models.ReconnectionModel{},
		&models.DocumentSequenceModel{},
	)
	require.NoError(t, err)

	return db
}

func newPendingInvoice(t *testing.T, clientID uuid.UUID, number string, total float64, issueDate time.Time) *billing.Invoice {
	t.Helper()
	breakdown := billing.TariffBreakdown{
		BaseFee:  decimal.NewFromFloat(total),
		Subtotal: decimal.NewFromFloat(total),
		Total:    decimal.NewFromFloat(total),
	}
	inv, err := billing.NewInvoice(
		number,
		clientID,
		"Juan Morales",
		uuid.New(),
		breakdown,
		decimal.NewFromInt(25000),
		issueDate,
		issueDate.AddDate(0, 0, 30),
		issueDate.AddDate(0, -1, 0),
		issueDate,
	)
	require.NoError(t, err)
	return inv
}

func newTestClient(t *testing.T, nationalID, meterCode string) *registry.Client {
	t.Helper()
	client, err := registry.NewClient("Juan", "Morales", nationalID, meterCode, "12-A", registry.ZoneSantaClara1)
	require.NoError(t, err)
	return client
}
