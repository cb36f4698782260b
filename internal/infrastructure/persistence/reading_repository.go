package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/metering"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReadingRepository implements ReadingRepository using GORM
type GormReadingRepository struct {
	db *gorm.DB
}

// NewGormReadingRepository creates a new GormReadingRepository
func NewGormReadingRepository(db *gorm.DB) *GormReadingRepository {
	return &GormReadingRepository{db: db}
}

// FindByID finds a reading by its ID
func (r *GormReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.Reading, error) {
	var model models.ReadingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient finds readings for a client matching the filter
func (r *GormReadingRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]metering.Reading, error) {
	var readingModels []models.ReadingModel
	query := r.db.WithContext(ctx).Model(&models.ReadingModel{}).Where("client_id = ?", clientID)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "estimated":
			query = query.Where("estimated = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("period_start DESC")
	}

	if err := query.Find(&readingModels).Error; err != nil {
		return nil, err
	}

	readings := make([]metering.Reading, len(readingModels))
	for i, model := range readingModels {
		readings[i] = *model.ToDomain()
	}
	return readings, nil
}

// FindLatestByClient returns the client's most recent reading by period
func (r *GormReadingRepository) FindLatestByClient(ctx context.Context, clientID uuid.UUID) (*metering.Reading, error) {
	var model models.ReadingModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND status <> ?", clientID, metering.ReadingStatusCorrected).
		Order("period_end DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice finds the reading linked to an invoice
func (r *GormReadingRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) (*metering.Reading, error) {
	var model models.ReadingModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a reading
func (r *GormReadingRepository) Save(ctx context.Context, reading *metering.Reading) error {
	model := models.ReadingModelFromDomain(reading)
	return r.db.WithContext(ctx).Save(model).Error
}

// Update updates a reading with optimistic locking (version check)
func (r *GormReadingRepository) Update(ctx context.Context, reading *metering.Reading) error {
	model := models.ReadingModelFromDomain(reading)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Where("id = ? AND version = ?", reading.ID, reading.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormReadingRepository implements ReadingRepository
var _ metering.ReadingRepository = (*GormReadingRepository)(nil)
