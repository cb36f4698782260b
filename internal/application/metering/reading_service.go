package metering

import (
	"context"
	"fmt"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/metering"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReadingService handles meter reading capture
type ReadingService struct {
	readingRepo metering.ReadingRepository
	clientRepo  registry.ClientRepository
	logger      *zap.Logger
}

// NewReadingService creates a new ReadingService
func NewReadingService(
	readingRepo metering.ReadingRepository,
	clientRepo registry.ClientRepository,
	logger *zap.Logger,
) *ReadingService {
	return &ReadingService{
		readingRepo: readingRepo,
		clientRepo:  clientRepo,
		logger:      logger,
	}
}

// CaptureReadingRequest represents a request to record a meter reading
type CaptureReadingRequest struct {
	ClientID      uuid.UUID
	CurrentLiters decimal.Decimal
	PeriodStart   time.Time
	PeriodEnd     time.Time
	ReadAt        time.Time // zero value means now
	Estimated     bool
}

// CaptureReading records a meter reading for a client. The previous meter
// value is taken from the client's latest reading, so consumption chains
// without gaps.
func (s *ReadingService) CaptureReading(ctx context.Context, req CaptureReadingRequest) (*metering.Reading, error) {
	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
	}

	previous := decimal.Zero
	latest, err := s.readingRepo.FindLatestByClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}
	if latest != nil {
		previous = latest.CurrentLiters
	}

	readAt := req.ReadAt
	if readAt.IsZero() {
		readAt = time.Now()
	}

	reading, err := metering.NewReading(req.ClientID, previous, req.CurrentLiters,
		req.PeriodStart, req.PeriodEnd, readAt, req.Estimated)
	if err != nil {
		return nil, err
	}
	if err := s.readingRepo.Save(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to save reading: %w", err)
	}

	s.logger.Info("Reading captured",
		zap.String("client_id", client.ID.String()),
		zap.String("consumption", reading.Consumption.String()),
		zap.Bool("estimated", reading.Estimated),
	)
	return reading, nil
}

// ProcessReading validates a pending reading and marks it ready for billing
func (s *ReadingService) ProcessReading(ctx context.Context, id uuid.UUID) (*metering.Reading, error) {
	reading, err := s.GetReading(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := reading.Process(); err != nil {
		return nil, err
	}
	if err := s.readingRepo.Update(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to update reading: %w", err)
	}
	return reading, nil
}

// CorrectReading supersedes a reading that was captured wrong
func (s *ReadingService) CorrectReading(ctx context.Context, id uuid.UUID, notes string) (*metering.Reading, error) {
	reading, err := s.GetReading(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := reading.Correct(notes); err != nil {
		return nil, err
	}
	if err := s.readingRepo.Update(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to update reading: %w", err)
	}

	s.logger.Info("Reading corrected",
		zap.String("reading_id", reading.ID.String()),
		zap.String("notes", notes),
	)
	return reading, nil
}

// GetReading returns a reading by ID
func (s *ReadingService) GetReading(ctx context.Context, id uuid.UUID) (*metering.Reading, error) {
	reading, err := s.readingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	if reading == nil {
		return nil, shared.NewDomainError("READING_NOT_FOUND", "Reading not found")
	}
	return reading, nil
}

// ListReadingsByClient returns a client's readings with the given filter
func (s *ReadingService) ListReadingsByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]metering.Reading, error) {
	readings, err := s.readingRepo.FindByClient(ctx, clientID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	return readings, nil
}
