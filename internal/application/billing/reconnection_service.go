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

// ReconnectionService quotes and processes service reconnections for
// delinquent clients. Processing consolidates the client's pending debt into
// a single reconnection invoice inside one transaction.
type ReconnectionService struct {
	txScope          TransactionScope
	numbers          *NumberGenerator
	certifier        billing.Certifier // nil when certification is disabled
	moraPolicy       billing.MoraPolicy
	reconnectionFee  decimal.Decimal
	overdueThreshold int64 // pending overdue invoices before reconnection is required
	logger           *zap.Logger
}

// NewReconnectionService creates a new ReconnectionService
func NewReconnectionService(
	txScope TransactionScope,
	numbers *NumberGenerator,
	certifier billing.Certifier,
	moraPolicy billing.MoraPolicy,
	reconnectionFee decimal.Decimal,
	overdueThreshold int64,
	logger *zap.Logger,
) *ReconnectionService {
	return &ReconnectionService{
		txScope:          txScope,
		numbers:          numbers,
		certifier:        certifier,
		moraPolicy:       moraPolicy,
		reconnectionFee:  reconnectionFee,
		overdueThreshold: overdueThreshold,
		logger:           logger,
	}
}

// RequiresReconnection reports whether the client must go through the
// reconnection flow before service resumes, along with the overdue count
func (s *ReconnectionService) RequiresReconnection(ctx context.Context, clientID uuid.UUID, asOf time.Time) (bool, int64, error) {
	var client *registry.Client
	var overdue int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		client, err = repos.ClientRepo().FindByID(ctx, clientID)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}
		if client == nil {
			return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
		overdue, err = repos.InvoiceRepo().CountPendingOverdue(ctx, clientID, asOf)
		if err != nil {
			return fmt.Errorf("failed to count overdue invoices: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return client.IsSuspended() || overdue >= s.overdueThreshold, overdue, nil
}

// CalculateOptions prices the client's pending debt as of the given date and
// returns the partial and total payoff options. Read only and idempotent.
func (s *ReconnectionService) CalculateOptions(ctx context.Context, clientID uuid.UUID, asOf time.Time) (*billing.ReconnectionQuote, error) {
	var quote *billing.ReconnectionQuote
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := s.pendingDebt(ctx, repos, clientID)
		if err != nil {
			return err
		}
		quote, err = billing.BuildQuote(clientID, invoices, s.moraPolicy, s.reconnectionFee, asOf)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// pendingDebt returns the client's consolidatable pending invoices oldest
// first. Notes and previous reconnection invoices never enter a consolidation.
func (s *ReconnectionService) pendingDebt(ctx context.Context, repos TransactionalRepositories, clientID uuid.UUID) ([]*billing.Invoice, error) {
	all, err := repos.InvoiceRepo().FindPendingByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invoices: %w", err)
	}
	debt := make([]*billing.Invoice, 0, len(all))
	for idx := range all {
		if all[idx].Kind == billing.DocumentKindInvoice {
			debt = append(debt, &all[idx])
		}
	}
	return debt, nil
}

// ProcessReconnectionRequest represents a request to execute a reconnection
type ProcessReconnectionRequest struct {
	ClientID       uuid.UUID
	Option         billing.ReconnectionOption
	AmountTendered decimal.Decimal // what the client is paying, verified against the quote
	Method         billing.PaymentMethod
	Reference      string
	Check          *billing.CheckDetail
	Operator       string
	ProcessedAt    time.Time // zero value means now
}

// ReconnectionResult is the outcome of a processed reconnection
type ReconnectionResult struct {
	Reconnection        *billing.Reconnection
	ConsolidatedInvoice *billing.Invoice
	Payment             *billing.Payment
	Quote               *billing.ReconnectionQuote
}

// Process executes a reconnection atomically: the debt is re-quoted, the
// tendered amount is verified against the chosen option, covered invoices are
// folded into one consolidated reconnection invoice, the payment is recorded,
// and the client's service is restored. Every write happens in one
// transaction; a failure anywhere rolls everything back and the client can
// simply re-quote and retry.
func (s *ReconnectionService) Process(ctx context.Context, req ProcessReconnectionRequest) (*ReconnectionResult, error) {
	processedAt := req.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	number, err := s.numbers.Next(ctx, billing.DocumentKindReconnection, processedAt)
	if err != nil {
		return nil, err
	}

	result := &ReconnectionResult{}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		client, err := repos.ClientRepo().FindByID(ctx, req.ClientID)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}
		if client == nil {
			return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}

		invoices, err := s.pendingDebt(ctx, repos, req.ClientID)
		if err != nil {
			return err
		}
		quote, err := billing.BuildQuote(req.ClientID, invoices, s.moraPolicy, s.reconnectionFee, processedAt)
		if err != nil {
			return err
		}
		option, err := quote.OptionFor(req.Option)
		if err != nil {
			return err
		}

		// The amount the operator collected must match the freshly computed
		// quote. Mora accrues over time, so a quote shown yesterday can be
		// stale today; the client re-quotes and retries.
		ok, err := valueobject.NewMoneyGTQ(req.AmountTendered).
			WithinTolerance(valueobject.NewMoneyGTQ(option.TotalToPay), paymentTolerance)
		if err != nil {
			return err
		}
		if !ok {
			return shared.ErrStaleQuote
		}

		lines := billing.AllocateOldestFirst(quote.Lines, option.PayNow)
		snapshots := make([]billing.ConsolidatedInvoiceSnapshot, 0, len(lines))
		sourceIDs := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			if !line.Allocated.IsPositive() {
				continue
			}
			snapshots = append(snapshots, billing.ConsolidatedInvoiceSnapshot{
				SourceInvoiceID:     line.InvoiceID,
				SourceNumber:        line.InvoiceNumber,
				MonthLabel:          line.MonthLabel,
				PeriodStart:         line.PeriodStart,
				PeriodEnd:           line.PeriodEnd,
				OriginalAmount:      line.OriginalAmount,
				MoraAtConsolidation: line.Mora,
				Subtotal:            line.Subtotal,
				FullyCovered:        line.FullyCovered,
			})
			sourceIDs = append(sourceIDs, line.InvoiceID)
		}

		dueDate := processedAt.AddDate(0, 0, 1)
		consolidated, err := billing.NewReconnectionInvoice(number, client.ID, client.FullName(),
			option.PayNow, s.reconnectionFee, snapshots, processedAt, dueDate)
		if err != nil {
			return err
		}
		if err := consolidated.Pay(req.Method, req.Reference, processedAt, time.Now()); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, consolidated); err != nil {
			return fmt.Errorf("failed to save consolidated invoice: %w", err)
		}

		byID := make(map[uuid.UUID]*billing.Invoice, len(invoices))
		for _, inv := range invoices {
			byID[inv.ID] = inv
		}
		for _, line := range lines {
			if !line.Allocated.IsPositive() {
				continue
			}
			source := byID[line.InvoiceID]
			if source == nil {
				return shared.NewDomainError("INVOICE_NOT_FOUND", "Quoted invoice disappeared during processing")
			}
			if line.FullyCovered {
				err = source.MarkConsolidated(consolidated.ID, req.Method, processedAt)
			} else {
				err = source.AnnotatePartialConsolidation(consolidated.ID)
			}
			if err != nil {
				return err
			}
			if err := repos.InvoiceRepo().Update(ctx, source); err != nil {
				return fmt.Errorf("failed to update consolidated source invoice: %w", err)
			}
		}

		// The per-line mora breakdown lives in the snapshots; the payment
		// records the debt portion and the fee.
		payment, err := billing.NewPayment(consolidated.ID, client.ID,
			billing.PaymentAmounts{Original: option.PayNow, Mora: decimal.Zero, ReconnectionFee: s.reconnectionFee},
			option.TotalToPay, req.Method, req.Reference, req.Check, req.Operator, processedAt)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		record, err := billing.NewReconnection(client.ID, req.Option, quote.TotalDebt, s.reconnectionFee,
			option.TotalToPay, option.RemainingBalance, consolidated.ID, sourceIDs, req.Method, req.Operator, processedAt)
		if err != nil {
			return err
		}
		if err := repos.ReconnectionRepo().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save reconnection record: %w", err)
		}

		client.RegisterReconnection(processedAt)
		if err := repos.ClientRepo().Update(ctx, client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		result.Reconnection = record
		result.ConsolidatedInvoice = consolidated
		result.Payment = payment
		result.Quote = quote
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reconnection processed",
		zap.String("client_id", req.ClientID.String()),
		zap.String("option", req.Option.String()),
		zap.String("invoice_number", result.ConsolidatedInvoice.InvoiceNumber),
		zap.String("amount_paid", result.Reconnection.AmountPaid.String()),
		zap.String("remaining_balance", result.Reconnection.RemainingBalance.String()),
	)

	s.certifyConsolidated(ctx, result.ConsolidatedInvoice)
	return result, nil
}

// certifyConsolidated runs the certification side channel for the
// consolidated invoice after the transaction committed
func (s *ReconnectionService) certifyConsolidated(ctx context.Context, invoice *billing.Invoice) {
	if s.certifier == nil {
		return
	}

	result, err := s.certifier.Certify(ctx, invoice.Kind, invoice)
	switch {
	case err != nil:
		invoice.RecordCertificationFailure(err.Error())
		s.logger.Warn("Reconnection invoice certification failed",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err),
		)
	case !result.Success:
		invoice.RecordCertificationFailure(result.Error)
	default:
		invoice.MarkCertified(result.ExternalID, result.AuthorizationCode, result.CertifiedAt)
	}

	updateErr := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.InvoiceRepo().Update(ctx, invoice)
	})
	if updateErr != nil {
		s.logger.Error("Failed to store certification state",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(updateErr),
		)
	}
}

// History returns a client's reconnection records
func (s *ReconnectionService) History(ctx context.Context, clientID uuid.UUID) ([]billing.Reconnection, error) {
	var records []billing.Reconnection
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		records, err = repos.ReconnectionRepo().FindByClient(ctx, clientID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reconnections: %w", err)
	}
	return records, nil
}
