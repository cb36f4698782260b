package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/metering"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService handles invoice generation and lifecycle operations
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	readingRepo metering.ReadingRepository
	clientRepo  registry.ClientRepository
	numbers     *NumberGenerator
	certifier   billing.Certifier // nil when certification is disabled
	tariff      billing.Tariff
	moraPolicy  billing.MoraPolicy
	dueInDays   int
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	readingRepo metering.ReadingRepository,
	clientRepo registry.ClientRepository,
	numbers *NumberGenerator,
	certifier billing.Certifier,
	tariff billing.Tariff,
	moraPolicy billing.MoraPolicy,
	dueInDays int,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		readingRepo: readingRepo,
		clientRepo:  clientRepo,
		numbers:     numbers,
		certifier:   certifier,
		tariff:      tariff,
		moraPolicy:  moraPolicy,
		dueInDays:   dueInDays,
		logger:      logger,
	}
}

// GenerateInvoiceRequest represents a request to bill a processed reading
type GenerateInvoiceRequest struct {
	ReadingID uuid.UUID
	IssueDate time.Time // zero value means now
}

// GenerateInvoice prices a processed reading and produces a normal invoice.
// The reading is marked billed and linked back to the invoice.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, req GenerateInvoiceRequest) (*billing.Invoice, error) {
	reading, err := s.readingRepo.FindByID(ctx, req.ReadingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	if reading == nil {
		return nil, shared.NewDomainError("READING_NOT_FOUND", "Reading not found")
	}
	if reading.Status != metering.ReadingStatusProcessed {
		return nil, shared.NewDomainError("INVALID_STATE", "Only processed readings can be billed")
	}

	client, err := s.clientRepo.FindByID(ctx, reading.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
	}
	if client.Status == registry.ClientStatusInactive {
		return nil, shared.NewDomainError("CLIENT_INACTIVE", "Cannot bill an inactive client")
	}

	breakdown, err := s.tariff.Price(reading.Consumption)
	if err != nil {
		return nil, err
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	dueDate := issueDate.AddDate(0, 0, s.dueInDays)

	number, err := s.numbers.Next(ctx, billing.DocumentKindInvoice, issueDate)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(number, client.ID, client.FullName(), reading.ID,
		breakdown, reading.Consumption, issueDate, dueDate, reading.PeriodStart, reading.PeriodEnd)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	if err := reading.AttachInvoice(invoice.ID); err != nil {
		return nil, err
	}
	if err := s.readingRepo.Update(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to update reading: %w", err)
	}

	s.logger.Info("Invoice generated",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("client_id", client.ID.String()),
		zap.String("total", invoice.Total.String()),
	)

	s.certifyInvoice(ctx, invoice)
	return invoice, nil
}

// certifyInvoice runs the electronic certification side channel. Failures are
// recorded on the invoice for later retry and never fail the calling operation.
func (s *InvoiceService) certifyInvoice(ctx context.Context, invoice *billing.Invoice) {
	if s.certifier == nil {
		return
	}

	result, err := s.certifier.Certify(ctx, invoice.Kind, invoice)
	switch {
	case err != nil:
		invoice.RecordCertificationFailure(err.Error())
		s.logger.Warn("Invoice certification failed",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err),
		)
	case !result.Success:
		invoice.RecordCertificationFailure(result.Error)
		s.logger.Warn("Invoice certification rejected",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("reason", result.Error),
		)
	default:
		invoice.MarkCertified(result.ExternalID, result.AuthorizationCode, result.CertifiedAt)
		s.logger.Info("Invoice certified",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("external_id", result.ExternalID),
		)
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		s.logger.Error("Failed to store certification state",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err),
		)
	}
}

// GetInvoice returns an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}
	return invoice, nil
}

// ListInvoicesByClient returns a client's invoices with the given filter
func (s *InvoiceService) ListInvoicesByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	invoices, err := s.invoiceRepo.FindByClient(ctx, clientID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// VoidInvoice annuls a pending invoice with a reason
func (s *InvoiceService) VoidInvoice(ctx context.Context, id uuid.UUID, reason string) (*billing.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.Void(reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logger.Info("Invoice voided",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("reason", reason),
	)
	return invoice, nil
}

// AssessMora computes the late fee accrued by an invoice as of the given date
func (s *InvoiceService) AssessMora(ctx context.Context, id uuid.UUID, asOf time.Time) (billing.MoraAssessment, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return billing.MoraAssessment{}, err
	}
	return s.moraPolicy.Assess(invoice, asOf)
}
