package registry

import (
	"context"
	"fmt"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles client registry operations
type ClientService struct {
	clientRepo registry.ClientRepository
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo registry.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, logger: logger}
}

// CreateClientRequest represents a request to register a new client
type CreateClientRequest struct {
	FirstName  string
	LastName   string
	NationalID string
	MeterCode  string
	Lot        string
	Zone       registry.ProjectZone
	Phone      string
	Email      string
}

// CreateClient registers a new client. National ID and meter code are
// globally unique.
func (s *ClientService) CreateClient(ctx context.Context, req CreateClientRequest) (*registry.Client, error) {
	client, err := registry.NewClient(req.FirstName, req.LastName, req.NationalID, req.MeterCode, req.Lot, req.Zone)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" || req.Email != "" {
		if err := client.SetContact(req.Phone, req.Email); err != nil {
			return nil, err
		}
	}

	exists, err := s.clientRepo.ExistsByNationalID(ctx, client.NationalID)
	if err != nil {
		return nil, fmt.Errorf("failed to check national ID: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_NATIONAL_ID", "A client with this national ID already exists")
	}
	exists, err = s.clientRepo.ExistsByMeterCode(ctx, client.MeterCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check meter code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_METER_CODE", "A client with this meter code already exists")
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	s.logger.Info("Client registered",
		zap.String("client_id", client.ID.String()),
		zap.String("meter_code", client.MeterCode),
		zap.String("zone", string(client.Zone)),
	)
	return client, nil
}

// GetClient returns a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*registry.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
	}
	return client, nil
}

// ListClients returns clients matching the filter
func (s *ClientService) ListClients(ctx context.Context, filter shared.Filter) (*shared.Paginated[registry.Client], error) {
	clients, err := s.clientRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	total, err := s.clientRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}
	result := shared.NewPaginated(clients, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateContact updates a client's contact information
func (s *ClientService) UpdateContact(ctx context.Context, id uuid.UUID, phone, email string) (*registry.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.SetContact(phone, email); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

// SuspendClient cuts a client's service for delinquency
func (s *ClientService) SuspendClient(ctx context.Context, id uuid.UUID) (*registry.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.Suspend(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.logger.Info("Client suspended", zap.String("client_id", client.ID.String()))
	return client, nil
}

// DeactivateClient soft-deletes a client. Client records are never hard
// deleted; history must stay queryable.
func (s *ClientService) DeactivateClient(ctx context.Context, id uuid.UUID) (*registry.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.logger.Info("Client deactivated", zap.String("client_id", client.ID.String()))
	return client, nil
}

// ActivateClient restores a client to active status
func (s *ClientService) ActivateClient(ctx context.Context, id uuid.UUID) (*registry.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.Activate(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}
