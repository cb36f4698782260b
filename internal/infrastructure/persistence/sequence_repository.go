package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"gorm.io/gorm"
)

// GormSequenceRepository implements SequenceRepository using a single-row
// upsert per bucket. The increment-and-return runs as one statement, so
// concurrent callers for the same bucket never observe the same value.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next atomically increments and returns the counter for the bucket key
func (r *GormSequenceRepository) Next(ctx context.Context, bucketKey string) (int64, error) {
	if bucketKey == "" {
		return 0, fmt.Errorf("bucket key cannot be empty")
	}

	now := time.Now()
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_sequences (bucket_key, value, created_at, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (bucket_key)
		DO UPDATE SET value = document_sequences.value + 1, updated_at = ?
		RETURNING value`,
		bucketKey, now, now, now,
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", bucketKey, err)
	}
	return value, nil
}

// Ensure GormSequenceRepository implements SequenceRepository
var _ billing.SequenceRepository = (*GormSequenceRepository)(nil)
