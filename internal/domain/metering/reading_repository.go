package metering

import (
	"context"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// ReadingRepository defines the persistence interface for meter readings
type ReadingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Reading, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Reading, error)
	FindLatestByClient(ctx context.Context, clientID uuid.UUID) (*Reading, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) (*Reading, error)
	Save(ctx context.Context, reading *Reading) error
	Update(ctx context.Context, reading *Reading) error
}
