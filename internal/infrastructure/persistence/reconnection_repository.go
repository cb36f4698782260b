package persistence

import (
	"context"
	"errors"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReconnectionRepository implements ReconnectionRepository using GORM.
// Reconnection records are append-only; there is no update path.
type GormReconnectionRepository struct {
	db *gorm.DB
}

// NewGormReconnectionRepository creates a new GormReconnectionRepository
func NewGormReconnectionRepository(db *gorm.DB) *GormReconnectionRepository {
	return &GormReconnectionRepository{db: db}
}

// FindByID finds a reconnection record by its ID
func (r *GormReconnectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Reconnection, error) {
	var model models.ReconnectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient finds a client's reconnection history, most recent first
func (r *GormReconnectionRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]billing.Reconnection, error) {
	var reconnectionModels []models.ReconnectionModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("processed_at DESC").
		Find(&reconnectionModels).Error; err != nil {
		return nil, err
	}

	reconnections := make([]billing.Reconnection, len(reconnectionModels))
	for i, model := range reconnectionModels {
		reconnections[i] = *model.ToDomain()
	}
	return reconnections, nil
}

// FindByConsolidatedInvoice finds the reconnection record that produced the
// given consolidated invoice
func (r *GormReconnectionRepository) FindByConsolidatedInvoice(ctx context.Context, invoiceID uuid.UUID) (*billing.Reconnection, error) {
	var model models.ReconnectionModel
	if err := r.db.WithContext(ctx).
		Where("consolidated_invoice_id = ?", invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates a reconnection record
func (r *GormReconnectionRepository) Save(ctx context.Context, reconnection *billing.Reconnection) error {
	model := models.ReconnectionModelFromDomain(reconnection)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete hard-deletes a reconnection record.
// Used only by the cascade when the consolidated invoice is deleted.
func (r *GormReconnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReconnectionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormReconnectionRepository implements ReconnectionRepository
var _ billing.ReconnectionRepository = (*GormReconnectionRepository)(nil)
