package billing

import (
	"context"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/metering"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
)

// TransactionScope provides transactional access to the billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll back
// atomically. Reconnection consolidation and cascade deletion depend on this:
// either every write in the unit lands, or none do.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
	// ReconnectionRepo returns the reconnection repository scoped to the current transaction
	ReconnectionRepo() billing.ReconnectionRepository
	// ClientRepo returns the client repository scoped to the current transaction
	ClientRepo() registry.ClientRepository
	// ReadingRepo returns the reading repository scoped to the current transaction
	ReadingRepo() metering.ReadingRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	invoiceRepo      billing.InvoiceRepository
	paymentRepo      billing.PaymentRepository
	reconnectionRepo billing.ReconnectionRepository
	clientRepo       registry.ClientRepository
	readingRepo      metering.ReadingRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	reconnectionRepo billing.ReconnectionRepository,
	clientRepo registry.ClientRepository,
	readingRepo metering.ReadingRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:      invoiceRepo,
		paymentRepo:      paymentRepo,
		reconnectionRepo: reconnectionRepo,
		clientRepo:       clientRepo,
		readingRepo:      readingRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// ReconnectionRepo returns the reconnection repository.
func (s *NoOpTransactionScope) ReconnectionRepo() billing.ReconnectionRepository {
	return s.reconnectionRepo
}

// ClientRepo returns the client repository.
func (s *NoOpTransactionScope) ClientRepo() registry.ClientRepository {
	return s.clientRepo
}

// ReadingRepo returns the reading repository.
func (s *NoOpTransactionScope) ReadingRepo() metering.ReadingRepository {
	return s.readingRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
