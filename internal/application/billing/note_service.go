package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NoteService issues credit and debit notes against invoices. Certified
// fiscal documents are never deleted or edited; corrections go through notes.
type NoteService struct {
	invoiceRepo billing.InvoiceRepository
	numbers     *NumberGenerator
	certifier   billing.Certifier // nil when certification is disabled
	logger      *zap.Logger
}

// NewNoteService creates a new NoteService
func NewNoteService(
	invoiceRepo billing.InvoiceRepository,
	numbers *NumberGenerator,
	certifier billing.Certifier,
	logger *zap.Logger,
) *NoteService {
	return &NoteService{
		invoiceRepo: invoiceRepo,
		numbers:     numbers,
		certifier:   certifier,
		logger:      logger,
	}
}

// IssueNoteRequest represents a request to issue a credit or debit note
type IssueNoteRequest struct {
	Kind              billing.DocumentKind
	OriginalInvoiceID uuid.UUID
	Amount            decimal.Decimal
	Reason            string
	IssueDate         time.Time // zero value means now
}

// IssueNote creates a credit or debit note referencing an original invoice
func (s *NoteService) IssueNote(ctx context.Context, req IssueNoteRequest) (*billing.Invoice, error) {
	// Checked before the sequence advances so a bad kind cannot burn a number
	if !req.Kind.IsNote() {
		return nil, shared.NewDomainError("INVALID_KIND", "Note kind must be nota-credito or nota-debito")
	}

	original, err := s.invoiceRepo.FindByID(ctx, req.OriginalInvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get original invoice: %w", err)
	}
	if original == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Original invoice not found")
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	number, err := s.numbers.Next(ctx, req.Kind, issueDate)
	if err != nil {
		return nil, err
	}

	note, err := billing.NewNote(req.Kind, number, original, req.Amount, req.Reason,
		issueDate, issueDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	s.logger.Info("Note issued",
		zap.String("note_number", note.InvoiceNumber),
		zap.String("kind", string(note.Kind)),
		zap.String("original_number", original.InvoiceNumber),
		zap.String("amount", req.Amount.String()),
	)

	s.certifyNote(ctx, note)
	return note, nil
}

// AnnulCertifiedInvoice annuls a certified invoice the only way the tax
// authority allows: a credit note for the full amount plus a void request
// against the authority. The local invoice record is kept intact.
func (s *NoteService) AnnulCertifiedInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) (*billing.Invoice, error) {
	original, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if original == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}
	if !original.Certification.Certified {
		return nil, shared.NewDomainError("NOT_CERTIFIED",
			"Invoice is not certified; void it directly instead")
	}

	note, err := s.IssueNote(ctx, IssueNoteRequest{
		Kind:              billing.DocumentKindCreditNote,
		OriginalInvoiceID: invoiceID,
		Amount:            original.Total,
		Reason:            reason,
	})
	if err != nil {
		return nil, err
	}

	if s.certifier != nil {
		result, err := s.certifier.Void(ctx, original.Certification.ExternalID,
			original.Certification.AuthorizationCode, reason)
		if err != nil || !result.Success {
			s.logger.Warn("Authority void request failed, credit note stands",
				zap.String("invoice_number", original.InvoiceNumber),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Certified invoice annulled via credit note",
		zap.String("invoice_number", original.InvoiceNumber),
		zap.String("note_number", note.InvoiceNumber),
	)
	return note, nil
}

func (s *NoteService) certifyNote(ctx context.Context, note *billing.Invoice) {
	if s.certifier == nil {
		return
	}

	result, err := s.certifier.Certify(ctx, note.Kind, note)
	switch {
	case err != nil:
		note.RecordCertificationFailure(err.Error())
		s.logger.Warn("Note certification failed",
			zap.String("note_number", note.InvoiceNumber),
			zap.Error(err),
		)
	case !result.Success:
		note.RecordCertificationFailure(result.Error)
	default:
		note.MarkCertified(result.ExternalID, result.AuthorizationCode, result.CertifiedAt)
	}

	if err := s.invoiceRepo.Update(ctx, note); err != nil {
		s.logger.Error("Failed to store certification state",
			zap.String("note_number", note.InvoiceNumber),
			zap.Error(err),
		)
	}
}
