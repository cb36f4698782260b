package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/metering"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func processedReading(t *testing.T, client *registry.Client, liters int64) *metering.Reading {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	reading, err := metering.NewReading(client.ID, decimal.Zero, decimal.NewFromInt(liters), start, end, end, false)
	require.NoError(t, err)
	require.NoError(t, reading.Process())
	return reading
}

func activeClient(t *testing.T) *registry.Client {
	client, err := registry.NewClient("Lucia", "Morales", "2989152870101", "lot-0015", "15-C", registry.ZoneSantaClara1)
	require.NoError(t, err)
	return client
}

type invoiceServiceFixture struct {
	repos     *testRepos
	sequences *MockSequenceRepository
	certifier *MockCertifier
	svc       *InvoiceService
}

func newInvoiceServiceFixture(withCertifier bool) *invoiceServiceFixture {
	f := &invoiceServiceFixture{
		repos:     newTestRepos(),
		sequences: new(MockSequenceRepository),
	}
	var certifier billing.Certifier
	if withCertifier {
		f.certifier = new(MockCertifier)
		certifier = f.certifier
	}
	numbers := NewNumberGenerator(f.sequences, f.repos.invoices, testLogger())
	f.svc = NewInvoiceService(f.repos.invoices, f.repos.readings, f.repos.clients, numbers,
		certifier, billing.DefaultTariff(), billing.DefaultMoraPolicy(), 30, testLogger())
	return f
}

func TestGenerateInvoice(t *testing.T) {
	ctx := context.Background()
	issueDate := time.Date(2026, 8, 5, 8, 0, 0, 0, time.UTC)

	t.Run("bills a processed reading within the allowance", func(t *testing.T) {
		f := newInvoiceServiceFixture(false)
		client := activeClient(t)
		reading := processedReading(t, client, 25000)

		f.repos.readings.On("FindByID", ctx, reading.ID).Return(reading, nil)
		f.repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		f.sequences.On("Next", ctx, "FAC-202608").Return(int64(12), nil)
		f.repos.invoices.On("ExistsByNumber", ctx, "FAC-202608-0012").Return(false, nil)
		f.repos.invoices.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		f.repos.readings.On("Update", ctx, reading).Return(nil)

		invoice, err := f.svc.GenerateInvoice(ctx, GenerateInvoiceRequest{ReadingID: reading.ID, IssueDate: issueDate})
		require.NoError(t, err)

		assert.Equal(t, "FAC-202608-0012", invoice.InvoiceNumber)
		assert.True(t, invoice.Total.Equal(decimal.NewFromInt(50)), "base fee only, total %s", invoice.Total)
		assert.True(t, invoice.OverageLiters.IsZero())
		assert.Equal(t, issueDate.AddDate(0, 0, 30), invoice.DueDate)
		assert.Equal(t, billing.InvoiceStatusPending, invoice.Status)

		assert.Equal(t, metering.ReadingStatusBilled, reading.Status)
		require.NotNil(t, reading.InvoiceID)
		assert.Equal(t, invoice.ID, *reading.InvoiceID)
	})

	t.Run("prices overage with surcharge and quarter rounding", func(t *testing.T) {
		f := newInvoiceServiceFixture(false)
		client := activeClient(t)
		reading := processedReading(t, client, 36000)

		f.repos.readings.On("FindByID", ctx, reading.ID).Return(reading, nil)
		f.repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		f.sequences.On("Next", ctx, "FAC-202608").Return(int64(13), nil)
		f.repos.invoices.On("ExistsByNumber", ctx, "FAC-202608-0013").Return(false, nil)
		f.repos.invoices.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		f.repos.readings.On("Update", ctx, reading).Return(nil)

		invoice, err := f.svc.GenerateInvoice(ctx, GenerateInvoiceRequest{ReadingID: reading.ID, IssueDate: issueDate})
		require.NoError(t, err)

		assert.True(t, invoice.OverageLiters.Equal(decimal.NewFromInt(6000)))
		assert.True(t, invoice.Total.Equal(decimal.NewFromInt(61)), "total %s", invoice.Total)
	})

	t.Run("pending reading cannot be billed", func(t *testing.T) {
		f := newInvoiceServiceFixture(false)
		client := activeClient(t)
		reading, err := metering.NewReading(client.ID, decimal.Zero, decimal.NewFromInt(10000),
			time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), false)
		require.NoError(t, err)

		f.repos.readings.On("FindByID", ctx, reading.ID).Return(reading, nil)

		_, err = f.svc.GenerateInvoice(ctx, GenerateInvoiceRequest{ReadingID: reading.ID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "processed readings")
	})

	t.Run("inactive client cannot be billed", func(t *testing.T) {
		f := newInvoiceServiceFixture(false)
		client := activeClient(t)
		require.NoError(t, client.Deactivate())
		reading := processedReading(t, client, 20000)

		f.repos.readings.On("FindByID", ctx, reading.ID).Return(reading, nil)
		f.repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)

		_, err := f.svc.GenerateInvoice(ctx, GenerateInvoiceRequest{ReadingID: reading.ID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inactive client")
	})

	t.Run("counter outage falls back to a time-derived number", func(t *testing.T) {
		f := newInvoiceServiceFixture(false)
		client := activeClient(t)
		reading := processedReading(t, client, 25000)

		f.repos.readings.On("FindByID", ctx, reading.ID).Return(reading, nil)
		f.repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		f.sequences.On("Next", ctx, "FAC-202608").Return(int64(0), errors.New("store down"))
		f.repos.invoices.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		f.repos.readings.On("Update", ctx, reading).Return(nil)

		invoice, err := f.svc.GenerateInvoice(ctx, GenerateInvoiceRequest{ReadingID: reading.ID, IssueDate: issueDate})
		require.NoError(t, err)
		assert.Contains(t, invoice.InvoiceNumber, "FAC-202608-T")
	})

	t.Run("certification success is recorded on the invoice", func(t *testing.T) {
		f := newInvoiceServiceFixture(true)
		client := activeClient(t)
		reading := processedReading(t, client, 25000)

		f.repos.readings.On("FindByID", ctx, reading.ID).Return(reading, nil)
		f.repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		f.sequences.On("Next", ctx, "FAC-202608").Return(int64(14), nil)
		f.repos.invoices.On("ExistsByNumber", ctx, "FAC-202608-0014").Return(false, nil)
		f.repos.invoices.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		f.repos.invoices.On("Update", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		f.repos.readings.On("Update", ctx, reading).Return(nil)
		f.certifier.On("Certify", ctx, billing.DocumentKindInvoice, mock.AnythingOfType("*billing.Invoice")).
			Return(&billing.CertificationResult{
				Success:           true,
				ExternalID:        "FEL-123",
				AuthorizationCode: "AUTH-456",
				CertifiedAt:       issueDate,
			}, nil)

		invoice, err := f.svc.GenerateInvoice(ctx, GenerateInvoiceRequest{ReadingID: reading.ID, IssueDate: issueDate})
		require.NoError(t, err)
		assert.True(t, invoice.Certification.Certified)
		assert.Equal(t, "FEL-123", invoice.Certification.ExternalID)
	})

	t.Run("certification outage never fails the generation", func(t *testing.T) {
		f := newInvoiceServiceFixture(true)
		client := activeClient(t)
		reading := processedReading(t, client, 25000)

		f.repos.readings.On("FindByID", ctx, reading.ID).Return(reading, nil)
		f.repos.clients.On("FindByID", ctx, client.ID).Return(client, nil)
		f.sequences.On("Next", ctx, "FAC-202608").Return(int64(15), nil)
		f.repos.invoices.On("ExistsByNumber", ctx, "FAC-202608-0015").Return(false, nil)
		f.repos.invoices.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		f.repos.invoices.On("Update", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		f.repos.readings.On("Update", ctx, reading).Return(nil)
		f.certifier.On("Certify", ctx, billing.DocumentKindInvoice, mock.AnythingOfType("*billing.Invoice")).
			Return(nil, errors.New("authority timeout"))

		invoice, err := f.svc.GenerateInvoice(ctx, GenerateInvoiceRequest{ReadingID: reading.ID, IssueDate: issueDate})
		require.NoError(t, err)
		assert.False(t, invoice.Certification.Certified)
		assert.Equal(t, 1, invoice.Certification.FailedAttempts)
		assert.Equal(t, "authority timeout", invoice.Certification.LastError)
	})
}

func TestVoidInvoice(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture(false)
	client := activeClient(t)
	invoice := overdueInvoice(client, "FAC-202607-0099", 75, 10, time.Now())

	f.repos.invoices.On("FindByID", ctx, invoice.ID).Return(&invoice, nil)
	f.repos.invoices.On("Update", ctx, &invoice).Return(nil)

	voided, err := f.svc.VoidInvoice(ctx, invoice.ID, "duplicado por error de captura")
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusVoided, voided.Status)
	assert.Equal(t, "duplicado por error de captura", voided.VoidReason)
}
