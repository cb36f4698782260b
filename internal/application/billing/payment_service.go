package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// paymentTolerance is the acceptable drift when verifying submitted amounts
// against the computed debt
var paymentTolerance = decimal.NewFromFloat(0.01)

// PaymentService handles payment registration against invoices
type PaymentService struct {
	txScope    TransactionScope
	clientRepo registry.ClientRepository
	certifier  billing.Certifier          // nil when certification is disabled
	renderer   billing.TicketRenderer     // nil when ticket rendering is disabled
	notifier   billing.NotificationSender // nil when notifications are disabled
	moraPolicy billing.MoraPolicy
	logger     *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	txScope TransactionScope,
	clientRepo registry.ClientRepository,
	certifier billing.Certifier,
	renderer billing.TicketRenderer,
	notifier billing.NotificationSender,
	moraPolicy billing.MoraPolicy,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		txScope:    txScope,
		clientRepo: clientRepo,
		certifier:  certifier,
		renderer:   renderer,
		notifier:   notifier,
		moraPolicy: moraPolicy,
		logger:     logger,
	}
}

// RegisterPaymentRequest represents a request to register money received
// against one invoice
type RegisterPaymentRequest struct {
	InvoiceID  uuid.UUID
	Amounts    billing.PaymentAmounts
	Total      decimal.Decimal
	Method     billing.PaymentMethod
	Reference  string
	Check      *billing.CheckDetail
	ReceivedBy string
	PaidAt     time.Time // zero value means now
}

// RegisterPayment records a payment and marks the invoice paid in one
// transaction. The submitted original amount must match the invoice total and
// the submitted mora must match the accrued late fee, both within tolerance.
// An invoice can carry at most one active payment.
func (s *PaymentService) RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*billing.Payment, error) {
	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	var payment *billing.Payment
	var invoice *billing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, req.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}
		if invoice == nil {
			return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}

		active, err := repos.PaymentRepo().FindActiveByInvoice(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing payments: %w", err)
		}
		if active != nil {
			return shared.ErrDuplicatePayment
		}

		if err := s.verifyAmounts(invoice, req.Amounts, paidAt); err != nil {
			return err
		}

		payment, err = billing.NewPayment(invoice.ID, invoice.ClientID, req.Amounts, req.Total,
			req.Method, req.Reference, req.Check, req.ReceivedBy, paidAt)
		if err != nil {
			return err
		}

		if err := invoice.Pay(req.Method, req.Reference, paidAt, time.Now()); err != nil {
			return err
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := repos.InvoiceRepo().Update(ctx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment registered",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total", payment.Total.String()),
		zap.String("method", string(payment.Method)),
	)

	s.certifyPayment(ctx, payment, invoice)
	s.deliverTicket(ctx, payment, invoice)
	return payment, nil
}

// verifyAmounts checks the submitted component amounts against the invoice
// total and the accrued mora as of the payment date
func (s *PaymentService) verifyAmounts(invoice *billing.Invoice, amounts billing.PaymentAmounts, paidAt time.Time) error {
	ok, err := valueobject.NewMoneyGTQ(amounts.Original).
		WithinTolerance(valueobject.NewMoneyGTQ(invoice.Total), paymentTolerance)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("AMOUNT_MISMATCH",
			fmt.Sprintf("Original amount %s does not match invoice total %s",
				amounts.Original.StringFixed(2), invoice.Total.StringFixed(2)))
	}

	mora, err := s.moraPolicy.Assess(invoice, paidAt)
	if err != nil {
		return err
	}
	ok, err = valueobject.NewMoneyGTQ(amounts.Mora).
		WithinTolerance(valueobject.NewMoneyGTQ(mora.Fee), paymentTolerance)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("MORA_MISMATCH",
			fmt.Sprintf("Submitted mora %s does not match accrued mora %s",
				amounts.Mora.StringFixed(2), mora.Fee.StringFixed(2)))
	}
	return nil
}

// certifyPayment runs the receipt certification side channel. Failures are
// recorded on the payment for later retry and never fail the registration.
func (s *PaymentService) certifyPayment(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) {
	if s.certifier == nil {
		return
	}

	result, err := s.certifier.CertifyPayment(ctx, payment, invoice)
	switch {
	case err != nil:
		payment.RecordCertificationFailure(err.Error())
		s.logger.Warn("Payment certification failed",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	case !result.Success:
		payment.RecordCertificationFailure(result.Error)
		s.logger.Warn("Payment certification rejected",
			zap.String("payment_id", payment.ID.String()),
			zap.String("reason", result.Error),
		)
	default:
		payment.MarkCertified(result.ExternalID, result.AuthorizationCode, result.CertifiedAt)
	}

	if err := s.updatePayment(ctx, payment); err != nil {
		s.logger.Error("Failed to store payment certification state",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	}
}

// deliverTicket renders the payment ticket and emails it to the client.
// Best effort: failures are logged and never fail the registration.
func (s *PaymentService) deliverTicket(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) {
	if s.renderer == nil {
		return
	}

	ticket, err := s.renderer.RenderPayment(ctx, payment, invoice)
	if err != nil {
		s.logger.Warn("Failed to render payment ticket",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}

	if s.notifier == nil {
		return
	}
	client, err := s.clientRepo.FindByID(ctx, payment.ClientID)
	if err != nil || client == nil || client.Email == "" {
		return
	}
	subject := fmt.Sprintf("Comprobante de pago %s", invoice.InvoiceNumber)
	body := fmt.Sprintf("Estimado(a) %s, adjuntamos el comprobante de su pago por Q%s.",
		client.FullName(), payment.Total.StringFixed(2))
	if err := s.notifier.Notify(ctx, client, subject, body, ticket.Path); err != nil {
		s.logger.Warn("Failed to send payment notification",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *PaymentService) updatePayment(ctx context.Context, payment *billing.Payment) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.PaymentRepo().Update(ctx, payment)
	})
}

// GetPayment returns a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var payment *billing.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

// ConfirmCheckPayment moves a check payment from pending confirmation to
// processed once the check clears
func (s *PaymentService) ConfirmCheckPayment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payment.Confirm(); err != nil {
		return nil, err
	}
	if err := s.updatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.logger.Info("Check payment confirmed", zap.String("payment_id", payment.ID.String()))
	return payment, nil
}

// CancelPayment deactivates a payment and rolls its invoice back to pending
// in one transaction
func (s *PaymentService) CancelPayment(ctx context.Context, id uuid.UUID, reason string) (*billing.Payment, error) {
	var payment *billing.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get payment: %w", err)
		}
		if payment == nil {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		}

		if err := payment.Cancel(reason); err != nil {
			return err
		}

		invoice, err := repos.InvoiceRepo().FindByID(ctx, payment.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}
		if invoice == nil {
			return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}
		if err := invoice.RevertToPending(); err != nil {
			return err
		}

		if err := repos.PaymentRepo().Update(ctx, payment); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if err := repos.InvoiceRepo().Update(ctx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment cancelled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reason", reason),
	)
	return payment, nil
}

// RetryCertifications re-attempts certification for payments whose previous
// attempts failed. Returns the number of payments certified.
func (s *PaymentService) RetryCertifications(ctx context.Context, maxAttempts, limit int) (int, error) {
	if s.certifier == nil {
		return 0, nil
	}

	var pending []billing.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pending, err = repos.PaymentRepo().FindUncertified(ctx, maxAttempts, limit)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list uncertified payments: %w", err)
	}

	certified := 0
	for idx := range pending {
		payment := &pending[idx]
		var invoice *billing.Invoice
		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			invoice, err = repos.InvoiceRepo().FindByID(ctx, payment.InvoiceID)
			return err
		})
		if err != nil || invoice == nil {
			continue
		}
		s.certifyPayment(ctx, payment, invoice)
		if payment.Certification.Certified {
			certified++
		}
	}
	return certified, nil
}
