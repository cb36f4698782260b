package registry

import (
	"context"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the persistence interface for clients
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByNationalID(ctx context.Context, nationalID string) (*Client, error)
	FindByMeterCode(ctx context.Context, meterCode string) (*Client, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, error)
	ExistsByNationalID(ctx context.Context, nationalID string) (bool, error)
	ExistsByMeterCode(ctx context.Context, meterCode string) (bool, error)
	Save(ctx context.Context, client *Client) error
	Update(ctx context.Context, client *Client) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
