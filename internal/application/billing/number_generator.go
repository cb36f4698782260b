package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"go.uber.org/zap"
)

// NumberGenerator produces unique document numbers per kind and month.
// Numbers come from an atomic per-bucket counter; the counter resets each
// month because the bucket key embeds the year-month. When the counter store
// is unavailable the generator degrades to a time-derived fallback number so
// document creation never blocks on the sequence.
type NumberGenerator struct {
	sequenceRepo billing.SequenceRepository
	invoiceRepo  billing.InvoiceRepository
	logger       *zap.Logger
}

// NewNumberGenerator creates a NumberGenerator
func NewNumberGenerator(
	sequenceRepo billing.SequenceRepository,
	invoiceRepo billing.InvoiceRepository,
	logger *zap.Logger,
) *NumberGenerator {
	return &NumberGenerator{
		sequenceRepo: sequenceRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
	}
}

// Next returns the next document number for the kind at the given time.
// The number is double-checked against stored invoices before being handed
// out; a collision advances the counter and retries.
func (g *NumberGenerator) Next(ctx context.Context, kind billing.DocumentKind, now time.Time) (string, error) {
	prefix := kind.NumberPrefix()
	bucket := billing.SequenceBucketKey(prefix, now)

	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		seq, err := g.sequenceRepo.Next(ctx, bucket)
		if err != nil {
			fallback := billing.FallbackDocumentNumber(prefix, now)
			g.logger.Warn("Sequence store unavailable, using fallback document number",
				zap.String("bucket", bucket),
				zap.String("number", fallback),
				zap.Error(err),
			)
			return fallback, nil
		}

		number := billing.ComposeDocumentNumber(prefix, now, seq)
		exists, err := g.invoiceRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to verify document number uniqueness: %w", err)
		}
		if !exists {
			return number, nil
		}
		g.logger.Warn("Document number collision, advancing sequence",
			zap.String("number", number),
		)
	}
	return "", fmt.Errorf("could not obtain a unique document number for bucket %s after %d attempts", bucket, 3)
}
