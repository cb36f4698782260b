package billing

import (
	"context"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/metering"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindPendingByClient(ctx context.Context, clientID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountPendingOverdue(ctx context.Context, clientID uuid.UUID, asOf time.Time) (int64, error) {
	args := m.Called(ctx, clientID, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, clientID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindConsolidatedInto(ctx context.Context, consolidatedInvoiceID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, consolidatedInvoiceID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	args := m.Called(ctx, clientID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindUncertified(ctx context.Context, maxAttempts int, limit int) ([]billing.Payment, error) {
	args := m.Called(ctx, maxAttempts, limit)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

// MockReconnectionRepository is a mock implementation of billing.ReconnectionRepository
type MockReconnectionRepository struct {
	mock.Mock
}

func (m *MockReconnectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Reconnection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Reconnection), args.Error(1)
}

func (m *MockReconnectionRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]billing.Reconnection, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]billing.Reconnection), args.Error(1)
}

func (m *MockReconnectionRepository) FindByConsolidatedInvoice(ctx context.Context, invoiceID uuid.UUID) (*billing.Reconnection, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Reconnection), args.Error(1)
}

func (m *MockReconnectionRepository) Save(ctx context.Context, reconnection *billing.Reconnection) error {
	args := m.Called(ctx, reconnection)
	return args.Error(0)
}

func (m *MockReconnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockClientRepository is a mock implementation of registry.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Client), args.Error(1)
}

func (m *MockClientRepository) FindByNationalID(ctx context.Context, nationalID string) (*registry.Client, error) {
	args := m.Called(ctx, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Client), args.Error(1)
}

func (m *MockClientRepository) FindByMeterCode(ctx context.Context, meterCode string) (*registry.Client, error) {
	args := m.Called(ctx, meterCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]registry.Client, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]registry.Client), args.Error(1)
}

func (m *MockClientRepository) ExistsByNationalID(ctx context.Context, nationalID string) (bool, error) {
	args := m.Called(ctx, nationalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) ExistsByMeterCode(ctx context.Context, meterCode string) (bool, error) {
	args := m.Called(ctx, meterCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *registry.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, client *registry.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockReadingRepository is a mock implementation of metering.ReadingRepository
type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.Reading, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]metering.Reading, error) {
	args := m.Called(ctx, clientID, filter)
	return args.Get(0).([]metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) FindLatestByClient(ctx context.Context, clientID uuid.UUID) (*metering.Reading, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) (*metering.Reading, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) Save(ctx context.Context, reading *metering.Reading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockReadingRepository) Update(ctx context.Context, reading *metering.Reading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

// MockSequenceRepository is a mock implementation of billing.SequenceRepository
type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) Next(ctx context.Context, bucketKey string) (int64, error) {
	args := m.Called(ctx, bucketKey)
	return args.Get(0).(int64), args.Error(1)
}

// MockCertifier is a mock implementation of billing.Certifier
type MockCertifier struct {
	mock.Mock
}

func (m *MockCertifier) Certify(ctx context.Context, kind billing.DocumentKind, invoice *billing.Invoice) (*billing.CertificationResult, error) {
	args := m.Called(ctx, kind, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CertificationResult), args.Error(1)
}

func (m *MockCertifier) CertifyPayment(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) (*billing.CertificationResult, error) {
	args := m.Called(ctx, payment, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CertificationResult), args.Error(1)
}

func (m *MockCertifier) Void(ctx context.Context, externalID, authorizationCode, reason string) (*billing.VoidResult, error) {
	args := m.Called(ctx, externalID, authorizationCode, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.VoidResult), args.Error(1)
}

// testRepos bundles the mocks behind a NoOpTransactionScope
type testRepos struct {
	invoices      *MockInvoiceRepository
	payments      *MockPaymentRepository
	reconnections *MockReconnectionRepository
	clients       *MockClientRepository
	readings      *MockReadingRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		invoices:      new(MockInvoiceRepository),
		payments:      new(MockPaymentRepository),
		reconnections: new(MockReconnectionRepository),
		clients:       new(MockClientRepository),
		readings:      new(MockReadingRepository),
	}
}

func (r *testRepos) scope() TransactionScope {
	return NewNoOpTransactionScope(r.invoices, r.payments, r.reconnections, r.clients, r.readings)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
