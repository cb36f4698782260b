package billing

import (
	"context"
	"fmt"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaintenanceService performs selective hard deletion of invoices with full
// cascade cleanup. Intended for back-office corrections of wrongly generated
// documents, not for regular operation.
type MaintenanceService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(txScope TransactionScope, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{txScope: txScope, logger: logger}
}

// DeleteInvoicesRequest represents a request to hard-delete a batch of
// invoices belonging to one client
type DeleteInvoicesRequest struct {
	ClientID          uuid.UUID
	InvoiceIDs        []uuid.UUID
	CertifiedOverride bool // allow deleting certified documents
	RequestedBy       string
}

// DeletionReport summarizes what the cascade removed or rewired
type DeletionReport struct {
	InvoicesDeleted     int `json:"invoices_deleted"`
	ReadingsDetached    int `json:"readings_detached"`
	ReconnectionsPruned int `json:"reconnections_pruned"`
	ReferencesCleared   int `json:"references_cleared"`
	SnapshotsRemoved    int `json:"snapshots_removed"`
}

// DeleteInvoices hard-deletes the requested invoices and cleans up every
// reference to them in one transaction. The whole batch is validated before
// anything is touched: every invoice must exist, belong to the given client,
// and be deletable. A single failure leaves the database untouched.
//
// Cascade per invoice: payments against it are removed, its originating
// reading reverts to processed, reconnection records pointing at it are
// pruned, invoices folded into it get their consolidation reference cleared,
// and any parent consolidation drops its snapshot of it.
func (s *MaintenanceService) DeleteInvoices(ctx context.Context, req DeleteInvoicesRequest) (*DeletionReport, error) {
	if len(req.InvoiceIDs) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "No invoices to delete")
	}
	if req.ClientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}

	report := &DeletionReport{}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := repos.InvoiceRepo().FindByIDs(ctx, req.InvoiceIDs)
		if err != nil {
			return fmt.Errorf("failed to load invoices: %w", err)
		}
		if len(invoices) != len(req.InvoiceIDs) {
			return shared.NewDomainError("INVOICE_NOT_FOUND",
				fmt.Sprintf("Found %d of %d requested invoices", len(invoices), len(req.InvoiceIDs)))
		}
		for idx := range invoices {
			if invoices[idx].ClientID != req.ClientID {
				return shared.NewDomainError("OWNERSHIP_MISMATCH",
					fmt.Sprintf("Invoice %s does not belong to the given client", invoices[idx].InvoiceNumber))
			}
			if err := invoices[idx].CanDelete(req.CertifiedOverride); err != nil {
				return err
			}
		}

		for idx := range invoices {
			if err := s.cascadeDelete(ctx, repos, &invoices[idx], report); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoices deleted with cascade",
		zap.String("client_id", req.ClientID.String()),
		zap.Int("invoices", report.InvoicesDeleted),
		zap.Int("readings_detached", report.ReadingsDetached),
		zap.String("requested_by", req.RequestedBy),
	)
	return report, nil
}

func (s *MaintenanceService) cascadeDelete(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, report *DeletionReport) error {
	if err := repos.PaymentRepo().DeleteByInvoice(ctx, invoice.ID); err != nil {
		return fmt.Errorf("failed to delete payments of %s: %w", invoice.InvoiceNumber, err)
	}

	reading, err := repos.ReadingRepo().FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to find reading of %s: %w", invoice.InvoiceNumber, err)
	}
	if reading != nil {
		reading.DetachInvoice()
		if err := repos.ReadingRepo().Update(ctx, reading); err != nil {
			return fmt.Errorf("failed to detach reading of %s: %w", invoice.InvoiceNumber, err)
		}
		report.ReadingsDetached++
	}

	if invoice.Kind == billing.DocumentKindReconnection {
		record, err := repos.ReconnectionRepo().FindByConsolidatedInvoice(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to find reconnection record of %s: %w", invoice.InvoiceNumber, err)
		}
		if record != nil {
			if err := repos.ReconnectionRepo().Delete(ctx, record.ID); err != nil {
				return fmt.Errorf("failed to delete reconnection record of %s: %w", invoice.InvoiceNumber, err)
			}
			report.ReconnectionsPruned++
		}

		sources, err := repos.InvoiceRepo().FindConsolidatedInto(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to find consolidated sources of %s: %w", invoice.InvoiceNumber, err)
		}
		for idx := range sources {
			sources[idx].ClearConsolidationRef()
			if err := repos.InvoiceRepo().Update(ctx, &sources[idx]); err != nil {
				return fmt.Errorf("failed to clear consolidation reference: %w", err)
			}
			report.ReferencesCleared++
		}
	}

	if invoice.ConsolidatedIntoID != nil {
		parent, err := repos.InvoiceRepo().FindByID(ctx, *invoice.ConsolidatedIntoID)
		if err != nil {
			return fmt.Errorf("failed to find parent consolidation of %s: %w", invoice.InvoiceNumber, err)
		}
		if parent != nil && parent.RemoveSnapshot(invoice.ID) {
			if err := repos.InvoiceRepo().Update(ctx, parent); err != nil {
				return fmt.Errorf("failed to update parent consolidation: %w", err)
			}
			report.SnapshotsRemoved++
		}
	}

	if err := repos.InvoiceRepo().Delete(ctx, invoice.ID); err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", invoice.InvoiceNumber, err)
	}
	report.InvoicesDeleted++
	return nil
}
