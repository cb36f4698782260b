package billing

import (
	"context"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines the persistence interface for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	// FindPendingByClient returns the client's pending invoices ordered by
	// issue date ascending (oldest first)
	FindPendingByClient(ctx context.Context, clientID uuid.UUID) ([]Invoice, error)
	CountPendingOverdue(ctx context.Context, clientID uuid.UUID, asOf time.Time) (int64, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	FindConsolidatedInto(ctx context.Context, consolidatedInvoiceID uuid.UUID) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the persistence interface for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindActiveByInvoice returns the non-cancelled payment against the
	// invoice, or nil if there is none
	FindActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Payment, error)
	FindUncertified(ctx context.Context, maxAttempts int, limit int) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// ReconnectionRepository defines the persistence interface for reconnection
// records. Records are append-only; there is no update.
type ReconnectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Reconnection, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Reconnection, error)
	FindByConsolidatedInvoice(ctx context.Context, invoiceID uuid.UUID) (*Reconnection, error)
	Save(ctx context.Context, reconnection *Reconnection) error
	Delete(ctx context.Context, id uuid.UUID) error
}
